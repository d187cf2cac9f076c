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

const (
	MaxTitleLength   = 200
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// QuestionService owns questions and their subscriptions.
type QuestionService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewQuestionService(store repository.Store, logger *slog.Logger) *QuestionService {
	return &QuestionService{
		store:  store,
		logger: logger,
	}
}

// Ask posts a new question. The author is subscribed to their own
// question so they hear about answers.
func (s *QuestionService) Ask(ctx context.Context, userID, title, body string) (*model.Question, error) {
	if !policy.SignedIn(userID) {
		return nil, apperror.Unauthenticated()
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "question title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("question title must be %d characters or less", MaxTitleLength))
	}

	question := &model.Question{
		UserID: userID,
		Title:  title,
		Body:   strings.TrimSpace(body),
	}
	if err := s.store.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}

	if err := s.store.Subscribe(ctx, userID, question.ID); err != nil {
		s.logger.Error("failed to subscribe author to own question",
			slog.String("questionID", question.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("question created",
		slog.String("questionID", question.ID),
		slog.String("userID", userID),
	)
	return question, nil
}

func (s *QuestionService) GetByID(ctx context.Context, id string) (*model.Question, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "question ID is required")
	}
	return s.store.GetQuestionByID(ctx, id)
}

// List returns questions newest first, with the limit clamped to a
// sane range.
func (s *QuestionService) List(ctx context.Context, limit, offset int) ([]model.Question, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	questions, err := s.store.ListQuestions(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("service/question: listing questions: %w", err)
	}
	return questions, nil
}

// Delete removes a question and everything under it. Author-only.
func (s *QuestionService) Delete(ctx context.Context, userID, questionID string) error {
	if !policy.SignedIn(userID) {
		return apperror.Unauthenticated()
	}

	question, err := s.store.GetQuestionByID(ctx, questionID)
	if err != nil {
		return err
	}
	if !policy.IsAuthor(userID, question) {
		return apperror.Forbidden("only the author can delete this question")
	}

	if err := deleteQuestionCascade(ctx, s.store, questionID); err != nil {
		return err
	}

	s.logger.Info("question deleted", slog.String("questionID", questionID))
	return nil
}

// Subscribe adds the question to the user's subscribed set. The
// relation is set-like: subscribing twice has the effect of once.
func (s *QuestionService) Subscribe(ctx context.Context, userID, questionID string) error {
	if !policy.SignedIn(userID) {
		return apperror.Unauthenticated()
	}
	if _, err := s.store.GetQuestionByID(ctx, questionID); err != nil {
		return err
	}
	return s.store.Subscribe(ctx, userID, questionID)
}

// Unsubscribe removes the subscription; unsubscribing without one is a
// no-op.
func (s *QuestionService) Unsubscribe(ctx context.Context, userID, questionID string) error {
	if !policy.SignedIn(userID) {
		return apperror.Unauthenticated()
	}
	return s.store.Unsubscribe(ctx, userID, questionID)
}

// IsSubscribed is the membership test for the subscribed set.
func (s *QuestionService) IsSubscribed(ctx context.Context, userID, questionID string) (bool, error) {
	if !policy.SignedIn(userID) {
		return false, nil
	}
	return s.store.IsSubscribed(ctx, userID, questionID)
}
