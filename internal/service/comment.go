package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/study-and-research/QnA/internal/apperror"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/policy"
	"github.com/study-and-research/QnA/internal/repository"
)

// CommentService attaches comments to questions and answers.
type CommentService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCommentService(store repository.Store, logger *slog.Logger) *CommentService {
	return &CommentService{
		store:  store,
		logger: logger,
	}
}

// Create posts a comment on the target question or answer.
func (s *CommentService) Create(ctx context.Context, userID string, commentable model.Target, body string) (*model.Comment, error) {
	if !policy.SignedIn(userID) {
		return nil, apperror.Unauthenticated()
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationFailed("body", "comment body is required")
	}
	if len(body) > MaxBodyLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("comment body must be %d characters or less", MaxBodyLength))
	}

	if err := s.checkTarget(ctx, commentable); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID:      userID,
		Commentable: commentable,
		Body:        body,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		slog.String("commentID", comment.ID),
		slog.String("kind", string(commentable.Kind)),
		slog.String("targetID", commentable.ID),
	)
	return comment, nil
}

// checkTarget confirms the commentable entity exists.
func (s *CommentService) checkTarget(ctx context.Context, t model.Target) error {
	switch t.Kind {
	case model.KindQuestion:
		_, err := s.store.GetQuestionByID(ctx, t.ID)
		return err
	case model.KindAnswer:
		_, err := s.store.GetAnswerByID(ctx, t.ID)
		return err
	default:
		return apperror.ValidationFailed("kind", fmt.Sprintf("unknown commentable kind %q", t.Kind))
	}
}

// Delete removes a comment. Author-only.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	if !policy.SignedIn(userID) {
		return apperror.Unauthenticated()
	}

	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !policy.IsAuthor(userID, comment) {
		return apperror.Forbidden("only the author can delete this comment")
	}

	return s.store.DeleteComment(ctx, commentID)
}

// ListByCommentable returns the comments under a question or answer,
// oldest first.
func (s *CommentService) ListByCommentable(ctx context.Context, commentable model.Target) ([]model.Comment, error) {
	if err := s.checkTarget(ctx, commentable); err != nil {
		return nil, err
	}
	return s.store.ListCommentsByCommentable(ctx, commentable)
}
