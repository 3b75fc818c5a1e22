package models

// User represents a registered account
// Password is stored hashed (bcrypt); never rendered or logged
type User struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"` // Hashed; omitted from JSON
}

// RegisterForm is the submitted /register form
type RegisterForm struct {
	Name     string
	Email    string
	Password string // Plaintext; hashed in handler
}

// LoginForm is the submitted /login form
type LoginForm struct {
	Email    string
	Password string
}
