package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/study-and-research/QnA/internal/apperror"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/policy"
	"github.com/study-and-research/QnA/internal/repository"
)

// VoteService arbitrates votes on answers: one vote per (user, answer),
// no self-votes, rating derived from the vote sum.
type VoteService struct {
	answers repository.AnswerRepository
	votes   repository.VoteRepository
	logger  *slog.Logger
}

func NewVoteService(
	answers repository.AnswerRepository,
	votes repository.VoteRepository,
	logger *slog.Logger,
) *VoteService {
	return &VoteService{
		answers: answers,
		votes:   votes,
		logger:  logger,
	}
}

// Upvote records a +1 by userID on the answer and returns the answer
// with its refreshed rating.
//
// Rejections, all without mutation: Unauthenticated for anonymous
// callers, Forbidden when the caller authored the answer, Conflict
// when the caller already has a vote on it (recall first).
func (s *VoteService) Upvote(ctx context.Context, userID, answerID string) (*model.Answer, error) {
	return s.vote(ctx, userID, answerID, model.Upvote)
}

// Downvote records a -1; preconditions mirror Upvote.
func (s *VoteService) Downvote(ctx context.Context, userID, answerID string) (*model.Answer, error) {
	return s.vote(ctx, userID, answerID, model.Downvote)
}

func (s *VoteService) vote(ctx context.Context, userID, answerID string, value int) (*model.Answer, error) {
	answer, err := s.guard(ctx, userID, answerID)
	if err != nil {
		return nil, err
	}

	// The unique index on (user, votable) is the arbiter under
	// concurrency: a duplicate insert surfaces as Conflict.
	err = s.votes.CreateVote(ctx, &model.Vote{
		UserID:  userID,
		Votable: model.AnswerTarget(answerID),
		Value:   value,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vote recorded",
		slog.String("userID", userID),
		slog.String("answerID", answerID),
		slog.Int("value", value),
	)

	return s.withRating(ctx, answer)
}

// RecallVote deletes the caller's existing vote on the answer.
// Recalling when no vote exists is a Conflict, never a negative count;
// the author check mirrors the vote preconditions for symmetry.
func (s *VoteService) RecallVote(ctx context.Context, userID, answerID string) (*model.Answer, error) {
	answer, err := s.guard(ctx, userID, answerID)
	if err != nil {
		return nil, err
	}

	err = s.votes.DeleteVote(ctx, userID, model.AnswerTarget(answerID))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Conflict("no vote to recall on this answer")
		}
		return nil, err
	}

	s.logger.Info("vote recalled",
		slog.String("userID", userID),
		slog.String("answerID", answerID),
	)

	return s.withRating(ctx, answer)
}

// guard loads the answer and checks the shared vote preconditions.
func (s *VoteService) guard(ctx context.Context, userID, answerID string) (*model.Answer, error) {
	if !policy.SignedIn(userID) {
		return nil, apperror.Unauthenticated()
	}

	answer, err := s.answers.GetAnswerByID(ctx, answerID)
	if err != nil {
		return nil, err
	}

	if policy.IsAuthor(userID, answer) {
		return nil, apperror.Forbidden("you cannot vote on your own answer")
	}
	return answer, nil
}

func (s *VoteService) withRating(ctx context.Context, answer *model.Answer) (*model.Answer, error) {
	rating, err := s.votes.Rating(ctx, model.AnswerTarget(answer.ID))
	if err != nil {
		return nil, fmt.Errorf("service/vote: refreshing rating for answer %s: %w", answer.ID, err)
	}
	answer.Rating = rating
	return answer, nil
}
