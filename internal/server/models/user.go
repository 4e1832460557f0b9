// Package models defines server-side data models.
package models

import "time"

// User is a registered account. All synced rows are scoped to exactly one
// user; there is no sharing between accounts.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
