package sqlite

import (
	"context"
	"testing"

	"github.com/study-and-research/QnA/internal/model"
)

// newTestDB returns a fresh in-memory database, destroyed when the
// test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Fixture helpers. Foreign keys are enforced, so tests build their
// object graphs through these.

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test User"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestQuestion(t *testing.T, db *DB, userID, title string) *model.Question {
	t.Helper()
	question := &model.Question{UserID: userID, Title: title, Body: "question body"}
	if err := db.CreateQuestion(context.Background(), question); err != nil {
		t.Fatalf("failed to create test question: %v", err)
	}
	return question
}

func createTestAnswer(t *testing.T, db *DB, questionID, userID, body string) *model.Answer {
	t.Helper()
	answer := &model.Answer{QuestionID: questionID, UserID: userID, Body: body}
	if err := db.CreateAnswer(context.Background(), answer); err != nil {
		t.Fatalf("failed to create test answer: %v", err)
	}
	return answer
}
