package models

// Subject groups notes under a user-defined topic.
// Every subject belongs to exactly one user.
type Subject struct {
	ID     int    `json:"id" db:"id"`
	UserID int    `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
}

// SubjectWithNotes is one dashboard row
type SubjectWithNotes struct {
	Subject
	Notes []Note
}
