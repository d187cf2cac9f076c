package model

import "time"

// Comment is attached to either a question or an answer via the
// Commentable target.
type Comment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Commentable Target    `json:"commentable"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthorID implements policy.Authored.
func (c *Comment) AuthorID() string { return c.UserID }
