// Package models defines server-side data models persisted in the database.
package models

import "time"

// Admin is a back-office account. The password is stored only as a bcrypt hash.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
