// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Accounts come into existence two ways: a classic email+password
// sign-up, or a first OAuth login. In the latter case PasswordHash is
// empty — the account is oauth-only and password sign-in is rejected
// for it. Email is unique case-insensitively; the service layer
// lowercases it before any write or lookup.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // empty for oauth-only accounts
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account supports password sign-in.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
