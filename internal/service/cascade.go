package service

import (
	"context"
	"fmt"

	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/repository"
)

// Cascading deletion is expressed as explicit cleanup routines invoked
// from the owning aggregate's delete path, not as storage-layer
// callbacks. These helpers are shared by question deletion and account
// deletion.

// deleteAnswerCascade removes an answer together with its votes and
// comments.
func deleteAnswerCascade(ctx context.Context, store repository.Store, answerID string) error {
	target := model.AnswerTarget(answerID)
	if err := store.DeleteVotesByVotable(ctx, target); err != nil {
		return fmt.Errorf("service: deleting votes of answer %s: %w", answerID, err)
	}
	if err := store.DeleteCommentsByCommentable(ctx, target); err != nil {
		return fmt.Errorf("service: deleting comments of answer %s: %w", answerID, err)
	}
	return store.DeleteAnswer(ctx, answerID)
}

// deleteQuestionCascade removes a question, its subscriptions, its
// comments, and every answer under it (each with the answer cascade).
func deleteQuestionCascade(ctx context.Context, store repository.Store, questionID string) error {
	answers, err := store.ListAnswersByQuestion(ctx, questionID, repository.OrderNewestFirst)
	if err != nil {
		return fmt.Errorf("service: listing answers of question %s: %w", questionID, err)
	}
	for i := range answers {
		if err := deleteAnswerCascade(ctx, store, answers[i].ID); err != nil {
			return err
		}
	}
	if err := store.DeleteCommentsByCommentable(ctx, model.QuestionTarget(questionID)); err != nil {
		return fmt.Errorf("service: deleting comments of question %s: %w", questionID, err)
	}
	if err := store.DeleteSubscriptionsByQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("service: deleting subscriptions of question %s: %w", questionID, err)
	}
	return store.DeleteQuestion(ctx, questionID)
}
