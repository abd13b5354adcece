// Package model defines domain entities for the application.
package model

import "time"

// User represents an admin account. Exactly one is seeded at bootstrap and it
// is only ever mutated by the password-change operation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
