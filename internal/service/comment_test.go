package service

import (
	"context"
	"errors"
	"testing"

	"github.com/study-and-research/QnA/internal/apperror"
	"github.com/study-and-research/QnA/internal/model"
)

func TestCommentCreate_OnQuestionAndAnswer(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	questions := NewQuestionService(store, newTestLogger())
	answers := NewAnswerService(store, newFakeMailer(), newTestLogger())
	comments := NewCommentService(store, newTestLogger())
	ctx := context.Background()

	user := signUpTestUser(t, identity, "commenter@example.com")
	question := askTestQuestion(t, questions, user.ID, "q")
	answer, err := answers.Create(ctx, user.ID, question.ID, "a")
	if err != nil {
		t.Fatalf("Create answer: %v", err)
	}

	// The same comment operation serves both target kinds.
	for _, target := range []model.Target{
		model.QuestionTarget(question.ID),
		model.AnswerTarget(answer.ID),
	} {
		comment, err := comments.Create(ctx, user.ID, target, "a remark")
		if err != nil {
			t.Fatalf("Create(%s) error = %v", target.Kind, err)
		}
		if comment.Commentable != target {
			t.Errorf("Commentable = %+v, want %+v", comment.Commentable, target)
		}
	}

	onQuestion, err := comments.ListByCommentable(ctx, model.QuestionTarget(question.ID))
	if err != nil {
		t.Fatalf("ListByCommentable() error = %v", err)
	}
	if len(onQuestion) != 1 {
		t.Errorf("question has %d comments, want 1 (answer comments must not leak in)", len(onQuestion))
	}
}

func TestCommentCreate_UnknownTarget(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	comments := NewCommentService(store, newTestLogger())
	ctx := context.Background()

	user := signUpTestUser(t, identity, "commenter@example.com")

	if _, err := comments.Create(ctx, user.ID, model.QuestionTarget("missing"), "x"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing question error = %v, want ErrNotFound", err)
	}
	if _, err := comments.Create(ctx, user.ID, model.Target{Kind: "tag", ID: "1"}, "x"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("unknown kind error = %v, want ErrValidation", err)
	}
}

func TestCommentDelete_AuthorOnly(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	questions := NewQuestionService(store, newTestLogger())
	comments := NewCommentService(store, newTestLogger())
	ctx := context.Background()

	author := signUpTestUser(t, identity, "author@example.com")
	other := signUpTestUser(t, identity, "other@example.com")
	question := askTestQuestion(t, questions, author.ID, "q")

	comment, err := comments.Create(ctx, author.ID, model.QuestionTarget(question.ID), "mine")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := comments.Delete(ctx, other.ID, comment.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("non-author Delete() error = %v, want ErrForbidden", err)
	}
	if err := comments.Delete(ctx, author.ID, comment.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetCommentByID(ctx, comment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("comment should be gone")
	}
}
