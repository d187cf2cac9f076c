package model

import "time"

// Vote value constants. A vote is always +1 or -1; the DB enforces the
// same with a CHECK constraint.
const (
	Upvote   = 1
	Downvote = -1
)

// Vote is one user's +1/-1 on a votable entity. At most one vote per
// (user, votable) pair exists, enforced by a unique index.
type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Votable   Target    `json:"votable"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}
