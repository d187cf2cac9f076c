package service

import (
	"context"
	"errors"
	"testing"

	"github.com/study-and-research/QnA/internal/apperror"
	"github.com/study-and-research/QnA/internal/auth"
)

func TestNormalizeEmail(t *testing.T) {
	got := NormalizeEmail("  EMilY@GmaiL.COM ")
	if got != "emily@gmail.com" {
		t.Errorf("NormalizeEmail() = %q, want %q", got, "emily@gmail.com")
	}
}

// =========================================================================
// FindForOAuth — the four resolution branches
// =========================================================================

func TestFindForOAuth_KnownAuthorization(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	ctx := context.Background()

	assertion := &auth.Assertion{Provider: "github", UID: "123", Email: "known@example.com"}

	first, err := identity.FindForOAuth(ctx, assertion)
	if err != nil {
		t.Fatalf("first FindForOAuth() error = %v", err)
	}

	// A second resolution with the same (provider, uid) is read-only and
	// returns the same user, even with a different email in the assertion.
	second, err := identity.FindForOAuth(ctx, &auth.Assertion{
		Provider: "github", UID: "123", Email: "changed@example.com",
	})
	if err != nil {
		t.Fatalf("second FindForOAuth() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resolution is not stable: %q vs %q", second.ID, first.ID)
	}
	if second.Email != "known@example.com" {
		t.Errorf("email should be untouched on repeat resolution, got %q", second.Email)
	}
}

func TestFindForOAuth_LinksExistingUserByEmail(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	ctx := context.Background()

	existing := signUpTestUser(t, identity, "veteran@example.com")

	// First OAuth login with a matching email links, not duplicates.
	user, err := identity.FindForOAuth(ctx, &auth.Assertion{
		Provider: "google", UID: "sub-9", Email: "veteran@example.com",
	})
	if err != nil {
		t.Fatalf("FindForOAuth() error = %v", err)
	}
	if user.ID != existing.ID {
		t.Errorf("should resolve to the existing account, got %q want %q", user.ID, existing.ID)
	}

	authz, err := store.GetAuthorization(ctx, "google", "sub-9")
	if err != nil {
		t.Fatalf("authorization was not created: %v", err)
	}
	if authz.UserID != existing.ID {
		t.Errorf("authorization links to %q, want %q", authz.UserID, existing.ID)
	}
}

func TestFindForOAuth_EmailMatchIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)

	existing := signUpTestUser(t, identity, "emily@gmail.com")

	user, err := identity.FindForOAuth(context.Background(), &auth.Assertion{
		Provider: "github", UID: "777", Email: "EMilY@GmaiL.COM",
	})
	if err != nil {
		t.Fatalf("FindForOAuth() error = %v", err)
	}
	if user.ID != existing.ID {
		t.Error("case-variant email should resolve to the same account")
	}
}

func TestFindForOAuth_CreatesOAuthOnlyUser(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	ctx := context.Background()

	user, err := identity.FindForOAuth(ctx, &auth.Assertion{
		Provider: "github", UID: "42", Email: "Newcomer@Example.COM", Name: "New Comer",
	})
	if err != nil {
		t.Fatalf("FindForOAuth() error = %v", err)
	}
	if user == nil {
		t.Fatal("FindForOAuth() returned nil user for an email-carrying assertion")
	}
	if user.Email != "newcomer@example.com" {
		t.Errorf("stored email = %q, want lowercased", user.Email)
	}
	if user.HasPassword() {
		t.Error("oauth-created accounts must have no password")
	}

	// Password sign-in against the oauth-only account is rejected.
	_, err = identity.SignIn(ctx, "newcomer@example.com", "any-password")
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("SignIn() on oauth-only account error = %v, want ErrUnauthenticated", err)
	}
}

func TestFindForOAuth_NoEmailNoAuthorization_EmptyResult(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	ctx := context.Background()

	user, err := identity.FindForOAuth(ctx, &auth.Assertion{Provider: "github", UID: "999"})
	if err != nil {
		t.Fatalf("FindForOAuth() error = %v, want defined empty result", err)
	}
	if user != nil {
		t.Errorf("FindForOAuth() = %+v, want nil user", user)
	}

	// The empty result performs zero writes.
	if _, err := store.GetAuthorization(ctx, "github", "999"); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("no authorization row may exist after an empty result")
	}
	users, _ := store.ListUsers(ctx)
	if len(users) != 0 {
		t.Errorf("no user rows may exist after an empty result, got %d", len(users))
	}
}

func TestFindForOAuth_RejectsBlankAssertion(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)

	_, err := identity.FindForOAuth(context.Background(), &auth.Assertion{Provider: "", UID: ""})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCompleteOAuth_FinishesFallbackFlow(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	ctx := context.Background()

	// Callback produced an empty result; the user then supplies an email.
	user, err := identity.CompleteOAuth(ctx, "github", "999", "late@example.com")
	if err != nil {
		t.Fatalf("CompleteOAuth() error = %v", err)
	}
	if user.Email != "late@example.com" {
		t.Errorf("Email = %q", user.Email)
	}

	// The identity is now known; a plain resolution finds it.
	again, err := identity.FindForOAuth(ctx, &auth.Assertion{Provider: "github", UID: "999"})
	if err != nil {
		t.Fatalf("FindForOAuth() after CompleteOAuth error = %v", err)
	}
	if again == nil || again.ID != user.ID {
		t.Error("the completed identity should resolve without an email")
	}
}

func TestCompleteOAuth_RejectsInvalidEmail(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)

	for _, email := range []string{"", "not-an-email", "@nothing"} {
		_, err := identity.CompleteOAuth(context.Background(), "github", "1", email)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("CompleteOAuth(%q) error = %v, want ErrValidation", email, err)
		}
	}
}

// =========================================================================
// Password sign-up / sign-in
// =========================================================================

func TestSignUp_And_SignIn(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	ctx := context.Background()

	result, err := identity.SignUp(ctx, "Dana@Example.com", "Dana", "hunter2hunter2")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if result.Token == "" {
		t.Error("SignUp() should issue a session token")
	}
	if result.User.Email != "dana@example.com" {
		t.Errorf("stored email = %q, want lowercased", result.User.Email)
	}

	signedIn, err := identity.SignIn(ctx, "dana@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if signedIn.User.ID != result.User.ID {
		t.Error("SignIn() resolved a different user")
	}

	if _, err := identity.SignIn(ctx, "dana@example.com", "wrong-password"); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("SignIn() with wrong password error = %v, want ErrUnauthenticated", err)
	}
	if _, err := identity.SignIn(ctx, "nobody@example.com", "hunter2hunter2"); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("SignIn() for unknown email error = %v, want ErrUnauthenticated", err)
	}
}

func TestSignUp_DuplicateEmailConflicts(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	ctx := context.Background()

	signUpTestUser(t, identity, "dup@example.com")

	_, err := identity.SignUp(ctx, "DUP@example.com", "Other", "password123")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("SignUp() duplicate error = %v, want ErrConflict", err)
	}
}

func TestSignUp_ShortPassword(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)

	_, err := identity.SignUp(context.Background(), "short@example.com", "S", "short")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("SignUp() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// Account deletion
// =========================================================================

func TestDeleteAccount_RemovesOwnedContent(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)
	questions := NewQuestionService(store, newTestLogger())
	answers := NewAnswerService(store, newFakeMailer(), newTestLogger())
	votes := NewVoteService(store, store, newTestLogger())
	ctx := context.Background()

	leaver := signUpTestUser(t, identity, "leaver@example.com")
	other := signUpTestUser(t, identity, "other@example.com")

	// The leaver asks a question; the other user answers it and the
	// leaver votes on that answer.
	question := askTestQuestion(t, questions, leaver.ID, "leaver's question")
	otherQuestion := askTestQuestion(t, questions, other.ID, "other's question")
	otherAnswer, err := answers.Create(ctx, other.ID, otherQuestion.ID, "other's answer")
	if err != nil {
		t.Fatalf("Create answer: %v", err)
	}
	if _, err := votes.Upvote(ctx, leaver.ID, otherAnswer.ID); err != nil {
		t.Fatalf("Upvote: %v", err)
	}

	if err := identity.DeleteAccount(ctx, leaver.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	if _, err := store.GetUserByID(ctx, leaver.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("user row should be gone")
	}
	if _, err := store.GetQuestionByID(ctx, question.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("the leaver's question should be gone")
	}

	// The leaver's vote disappears with the account; the answer stays.
	refreshed, err := store.GetAnswerByID(ctx, otherAnswer.ID)
	if err != nil {
		t.Fatalf("other user's answer should survive: %v", err)
	}
	if refreshed.Rating != 0 {
		t.Errorf("Rating = %d after voter deletion, want 0", refreshed.Rating)
	}
}

func TestDeleteAccount_RequiresAuthentication(t *testing.T) {
	store := newTestStore(t)
	identity := newTestIdentityService(t, store)

	if err := identity.DeleteAccount(context.Background(), ""); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("DeleteAccount(\"\") error = %v, want ErrUnauthenticated", err)
	}
}
