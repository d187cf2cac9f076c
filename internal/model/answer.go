package model

import "time"

// Answer is a reply to a question.
//
// Rating is derived — the sum of vote values for this answer — and is
// computed when the row is read, never stored. Accepted marks the
// question author's chosen answer; at most one answer per question may
// carry it at any time.
type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	UserID     string    `json:"userId"`
	Body       string    `json:"body"`
	Accepted   bool      `json:"accepted"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AuthorID implements policy.Authored.
func (a *Answer) AuthorID() string { return a.UserID }
