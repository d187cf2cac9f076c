package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/repository"
	"github.com/study-and-research/QnA/internal/repository/sqlite"
)

// Service tests run against a real in-memory SQLite store — the same
// schema production uses — with a discard logger and a fake mailer.

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeMailer records deliveries instead of sending anything.
type fakeMailer struct {
	mu         sync.Mutex
	digests    []string // user IDs that received a digest
	newAnswers []string // user IDs notified about a new answer
	failFor    map[string]error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: map[string]error{}}
}

func (m *fakeMailer) Digest(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[user.ID]; err != nil {
		return err
	}
	m.digests = append(m.digests, user.ID)
	return nil
}

func (m *fakeMailer) NewAnswer(ctx context.Context, user *model.User, answer *model.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[user.ID]; err != nil {
		return err
	}
	m.newAnswers = append(m.newAnswers, user.ID)
	return nil
}

// Fixture helpers. Fast bcrypt and a fixed JWT secret keep tests quick
// and deterministic.

func newTestIdentityService(t *testing.T, store repository.Store) *IdentityService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewIdentityService(store, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), newTestLogger())
}

func signUpTestUser(t *testing.T, identity *IdentityService, email string) *model.User {
	t.Helper()
	result, err := identity.SignUp(context.Background(), email, "Test User", "password123")
	if err != nil {
		t.Fatalf("SignUp(%s): %v", email, err)
	}
	return result.User
}

func askTestQuestion(t *testing.T, questions *QuestionService, userID, title string) *model.Question {
	t.Helper()
	question, err := questions.Ask(context.Background(), userID, title, "body")
	if err != nil {
		t.Fatalf("Ask(%s): %v", title, err)
	}
	return question
}
