package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/study-and-research/QnA/internal/apperror"
	"github.com/study-and-research/QnA/internal/mail"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/policy"
	"github.com/study-and-research/QnA/internal/repository"
)

// MaxBodyLength bounds answer and comment bodies.
const MaxBodyLength = 30000

// AnswerService owns the answer lifecycle including acceptance.
// Posting an answer notifies the question's subscribers through the
// mailer collaborator.
type AnswerService struct {
	store  repository.Store
	mailer mail.Mailer
	logger *slog.Logger
}

func NewAnswerService(store repository.Store, mailer mail.Mailer, logger *slog.Logger) *AnswerService {
	return &AnswerService{
		store:  store,
		mailer: mailer,
		logger: logger,
	}
}

// Create posts an answer to a question and notifies subscribers.
func (s *AnswerService) Create(ctx context.Context, userID, questionID, body string) (*model.Answer, error) {
	if !policy.SignedIn(userID) {
		return nil, apperror.Unauthenticated()
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationFailed("body", "answer body is required")
	}
	if len(body) > MaxBodyLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("answer body must be %d characters or less", MaxBodyLength))
	}

	// Confirm the parent question exists before writing.
	if _, err := s.store.GetQuestionByID(ctx, questionID); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		QuestionID: questionID,
		UserID:     userID,
		Body:       body,
	}
	if err := s.store.CreateAnswer(ctx, answer); err != nil {
		return nil, err
	}

	s.logger.Info("answer created",
		slog.String("answerID", answer.ID),
		slog.String("questionID", questionID),
		slog.String("userID", userID),
	)

	s.notifySubscribers(ctx, answer)
	return answer, nil
}

// notifySubscribers fans the new answer out to the question's
// subscribers, sequentially. Delivery failures are logged, not
// propagated — the answer is already posted. The author is skipped.
func (s *AnswerService) notifySubscribers(ctx context.Context, answer *model.Answer) {
	subscribers, err := s.store.ListSubscribers(ctx, answer.QuestionID)
	if err != nil {
		s.logger.Error("failed to list subscribers",
			slog.String("questionID", answer.QuestionID),
			slog.String("error", err.Error()),
		)
		return
	}

	for i := range subscribers {
		sub := &subscribers[i]
		if sub.ID == answer.UserID {
			continue
		}
		if err := s.mailer.NewAnswer(ctx, sub, answer); err != nil {
			s.logger.Error("new-answer notification failed",
				slog.String("userID", sub.ID),
				slog.String("answerID", answer.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Update edits an answer's body. Author-only.
func (s *AnswerService) Update(ctx context.Context, userID, answerID, body string) (*model.Answer, error) {
	if !policy.SignedIn(userID) {
		return nil, apperror.Unauthenticated()
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationFailed("body", "answer body is required")
	}
	if len(body) > MaxBodyLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("answer body must be %d characters or less", MaxBodyLength))
	}

	answer, err := s.store.GetAnswerByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAuthor(userID, answer) {
		return nil, apperror.Forbidden("only the author can edit this answer")
	}

	if err := s.store.UpdateAnswerBody(ctx, answerID, body); err != nil {
		return nil, err
	}
	answer.Body = body

	s.logger.Info("answer updated", slog.String("answerID", answerID))
	return answer, nil
}

// Delete removes an answer together with its votes and comments.
// Author-only.
func (s *AnswerService) Delete(ctx context.Context, userID, answerID string) error {
	if !policy.SignedIn(userID) {
		return apperror.Unauthenticated()
	}

	answer, err := s.store.GetAnswerByID(ctx, answerID)
	if err != nil {
		return err
	}
	if !policy.IsAuthor(userID, answer) {
		return apperror.Forbidden("only the author can delete this answer")
	}

	if err := deleteAnswerCascade(ctx, s.store, answerID); err != nil {
		return err
	}

	s.logger.Info("answer deleted", slog.String("answerID", answerID))
	return nil
}

// Accept marks an answer as the question's accepted one. Only the
// question's author may accept; any previously accepted answer of the
// same question is demoted in the same transaction, so exactly one
// answer per question carries the flag. There is no un-accept
// primitive — accepting a different answer moves the flag.
func (s *AnswerService) Accept(ctx context.Context, requesterID, questionID, answerID string) (*model.Answer, error) {
	if !policy.SignedIn(requesterID) {
		return nil, apperror.Unauthenticated()
	}

	question, err := s.store.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAuthor(requesterID, question) {
		return nil, apperror.Forbidden("only the question author can accept an answer")
	}

	answer, err := s.store.GetAnswerByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if answer.QuestionID != questionID {
		// Answers are addressed through their parent question's scope.
		return nil, apperror.NotFound("answer", answerID)
	}

	if err := s.store.AcceptAnswer(ctx, questionID, answerID); err != nil {
		return nil, err
	}
	answer.Accepted = true

	s.logger.Info("answer accepted",
		slog.String("questionID", questionID),
		slog.String("answerID", answerID),
	)
	return answer, nil
}

// GetByID returns one answer with its derived rating.
func (s *AnswerService) GetByID(ctx context.Context, answerID string) (*model.Answer, error) {
	return s.store.GetAnswerByID(ctx, answerID)
}

// ListByQuestion returns a question's answers in the requested order.
// The order is explicit; handlers default to accepted-first.
func (s *AnswerService) ListByQuestion(ctx context.Context, questionID string, order repository.AnswerOrder) ([]model.Answer, error) {
	if _, err := s.store.GetQuestionByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.store.ListAnswersByQuestion(ctx, questionID, order)
}
