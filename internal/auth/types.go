package auth

import (
	"net/mail"
	"time"
)

// User represents an account that can own households or hold
// memberships in them.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidEmail checks whether an address is a plausible email.
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
