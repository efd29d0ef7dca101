package domain

import "time"

// User is an account identity record. Accounts are immutable after
// registration; there is no password change or deletion flow.
type User struct {
	ID           string
	Username     string // unique, case-sensitive
	PasswordHash string // argon2id PHC encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
