// Package repository declares the storage interfaces consumed by the
// service layer. The sqlite subpackage is the shipped implementation;
// tests may substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/study-and-research/QnA/internal/model"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// AnswerOrder selects the ordering of answers under a question.
// Ordering is an explicit parameter of retrieval, not an ambient
// default scope — callers must say what they want.
type AnswerOrder string

const (
	// OrderAcceptedFirst puts the accepted answer on top, then newest.
	OrderAcceptedFirst AnswerOrder = "accepted_first"
	// OrderNewestFirst is plain reverse-chronological.
	OrderNewestFirst AnswerOrder = "newest_first"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type AuthorizationRepository interface {
	// CreateAuthorization returns a Conflict error when (provider, uid)
	// is already linked.
	CreateAuthorization(ctx context.Context, a *model.Authorization) error
	GetAuthorization(ctx context.Context, provider, uid string) (*model.Authorization, error)
	ListAuthorizationsByUser(ctx context.Context, userID string) ([]model.Authorization, error)
	DeleteAuthorizationsByUser(ctx context.Context, userID string) error
}

type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q *model.Question) error
	GetQuestionByID(ctx context.Context, id string) (*model.Question, error)
	ListQuestions(ctx context.Context, opts ListOptions) ([]model.Question, error)
	ListQuestionsByUser(ctx context.Context, userID string) ([]model.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

type AnswerRepository interface {
	CreateAnswer(ctx context.Context, a *model.Answer) error
	// GetAnswerByID returns the answer with its derived rating.
	GetAnswerByID(ctx context.Context, id string) (*model.Answer, error)
	ListAnswersByQuestion(ctx context.Context, questionID string, order AnswerOrder) ([]model.Answer, error)
	ListAnswersByUser(ctx context.Context, userID string) ([]model.Answer, error)
	UpdateAnswerBody(ctx context.Context, id, body string) error
	// AcceptAnswer clears any previously accepted answer of the question
	// and marks the given one, both in a single transaction.
	AcceptAnswer(ctx context.Context, questionID, answerID string) error
	DeleteAnswer(ctx context.Context, id string) error
}

type VoteRepository interface {
	// CreateVote returns a Conflict error when the user already voted on
	// the votable.
	CreateVote(ctx context.Context, v *model.Vote) error
	GetVote(ctx context.Context, userID string, votable model.Target) (*model.Vote, error)
	DeleteVote(ctx context.Context, userID string, votable model.Target) error
	// Rating is the sum of vote values for the votable (0 when unvoted).
	Rating(ctx context.Context, votable model.Target) (int, error)
	DeleteVotesByVotable(ctx context.Context, votable model.Target) error
	DeleteVotesByUser(ctx context.Context, userID string) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListCommentsByCommentable(ctx context.Context, commentable model.Target) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByCommentable(ctx context.Context, commentable model.Target) error
	DeleteCommentsByUser(ctx context.Context, userID string) error
}

type SubscriptionRepository interface {
	// Subscribe is idempotent: subscribing twice has the effect of once.
	Subscribe(ctx context.Context, userID, questionID string) error
	Unsubscribe(ctx context.Context, userID, questionID string) error
	IsSubscribed(ctx context.Context, userID, questionID string) (bool, error)
	// ListSubscribers returns the users subscribed to the question.
	ListSubscribers(ctx context.Context, questionID string) ([]model.User, error)
	DeleteSubscriptionsByUser(ctx context.Context, userID string) error
	DeleteSubscriptionsByQuestion(ctx context.Context, questionID string) error
}

// Store bundles every repository; *sqlite.DB satisfies it.
type Store interface {
	UserRepository
	AuthorizationRepository
	QuestionRepository
	AnswerRepository
	VoteRepository
	CommentRepository
	SubscriptionRepository
}
