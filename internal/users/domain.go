package users

import (
	"strings"
	"time"
)

// User represents a user account for management.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Form carries the create-user input as submitted.
type Form struct {
	Username string `form:"username" validate:"required,max=50"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Password string `form:"password" validate:"required,min=8"`
	IsAdmin  bool   `form:"is_admin"`
}

// Normalize trims surrounding whitespace. The password is left as typed.
func (f *Form) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}
