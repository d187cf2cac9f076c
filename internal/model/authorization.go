package model

import "time"

// Authorization links one external identity (provider + uid) to one
// local user. Rows are created only by the identity resolver and never
// mutated afterwards; (provider, uid) is unique across the table.
type Authorization struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Provider  string    `json:"provider"` // e.g. "github", "google"
	UID       string    `json:"uid"`      // provider-scoped user identifier
	CreatedAt time.Time `json:"createdAt"`
}
