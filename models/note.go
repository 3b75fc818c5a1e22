package models

// Note is a titled text entry belonging to exactly one subject
type Note struct {
	ID        int    `json:"id" db:"id"`
	SubjectID int    `json:"subject_id" db:"subject_id"`
	Title     string `json:"title" db:"title"`
	Content   string `json:"content" db:"content"`
}
