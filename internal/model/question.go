package model

import "time"

// Question is a post users can answer, comment on, and subscribe to.
type Question struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthorID implements policy.Authored.
func (q *Question) AuthorID() string { return q.UserID }
