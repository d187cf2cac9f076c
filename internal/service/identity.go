// Package service contains the business logic layer: identity
// resolution, the voting/acceptance engine, questions, comments, and
// the digest dispatcher. Handlers parse HTTP and delegate here;
// repositories only move rows. Authorization decisions happen in this
// layer, through the policy predicates, so they hold for every caller.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/study-and-research/QnA/internal/apperror"
	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/policy"
	"github.com/study-and-research/QnA/internal/repository"
)

// MaxEmailLength mirrors the users.email column contract.
const MaxEmailLength = 150

// validate is shared by the package; validator instances are safe for
// concurrent use and cache struct metadata.
var validate = validator.New()

// IdentityService reconciles external identities with local accounts
// and owns password sign-up/sign-in.
type IdentityService struct {
	store     repository.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewIdentityService(
	store repository.Store,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		store:     store,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the resolved user with an issued session token so
// the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// NormalizeEmail lowercases and trims an email address. Every write
// and lookup goes through this, which is what makes the email unique
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail enforces presence, RFC-like format, and length.
func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if err := validate.Var(email, fmt.Sprintf("required,email,max=%d", MaxEmailLength)); err != nil {
		return apperror.ValidationFailed("email", "email must be a valid address of at most 150 characters")
	}
	return nil
}

// FindForOAuth resolves an identity assertion to a local user.
//
//  1. A known (provider, uid) authorization short-circuits to its
//     owner. No writes.
//  2. Otherwise, an assertion carrying an email belonging to an
//     existing user links a new authorization to that user.
//  3. An assertion with a novel email creates an oauth-only user (no
//     password) plus the authorization.
//  4. No email and no known authorization: (nil, nil) — a defined
//     empty result, zero writes. The caller falls back to asking the
//     user for an email (CompleteOAuth).
//
// At most one user row and one authorization row are created per call.
// Once the authorization exists, repeated calls with the same
// (provider, uid) are read-only.
func (s *IdentityService) FindForOAuth(ctx context.Context, a *auth.Assertion) (*model.User, error) {
	if a == nil || a.Provider == "" || a.UID == "" {
		return nil, apperror.ValidationFailed("assertion", "identity assertion must carry provider and uid")
	}

	authz, err := s.store.GetAuthorization(ctx, a.Provider, a.UID)
	switch {
	case err == nil:
		return s.store.GetUserByID(ctx, authz.UserID)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/identity: looking up authorization %s/%s: %w", a.Provider, a.UID, err)
	}

	email := NormalizeEmail(a.Email)
	if email == "" {
		// Defined empty result, not an error: the caller must obtain an
		// email through the fallback flow before an account can exist.
		return nil, nil
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user = &model.User{Email: email, Name: a.Name}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("service/identity: creating oauth user: %w", err)
		}
		s.logger.Info("oauth user created",
			slog.String("userID", user.ID),
			slog.String("provider", a.Provider),
		)
	} else if err != nil {
		return nil, fmt.Errorf("service/identity: looking up user by email: %w", err)
	}

	if err := s.linkAuthorization(ctx, user.ID, a.Provider, a.UID); err != nil {
		return nil, err
	}
	return user, nil
}

// linkAuthorization creates the (provider, uid) → user link. When a
// concurrent call wins the unique-index race, the winning row is
// re-read: if it points at the same user the call is effectively
// idempotent, otherwise the conflict is surfaced.
func (s *IdentityService) linkAuthorization(ctx context.Context, userID, provider, uid string) error {
	err := s.store.CreateAuthorization(ctx, &model.Authorization{
		UserID:   userID,
		Provider: provider,
		UID:      uid,
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, apperror.ErrConflict) {
		winner, lookupErr := s.store.GetAuthorization(ctx, provider, uid)
		if lookupErr == nil && winner.UserID == userID {
			return nil
		}
		return err
	}
	return fmt.Errorf("service/identity: linking authorization %s/%s: %w", provider, uid, err)
}

// CompleteOAuth finishes the fallback flow for assertions without an
// email: the user supplied one, and resolution re-runs with it.
func (s *IdentityService) CompleteOAuth(ctx context.Context, provider, uid, email string) (*model.User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	user, err := s.FindForOAuth(ctx, &auth.Assertion{Provider: provider, UID: uid, Email: email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Unreachable with a validated email; guard anyway.
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	return user, nil
}

// SignUp registers a local email+password account.
func (s *IdentityService) SignUp(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/identity: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err // Conflict from the repo is already typed
	}

	s.logger.Info("user signed up", slog.String("userID", user.ID))
	return s.issueSession(user)
}

// SignIn authenticates an email+password pair. Accounts created via
// OAuth have no password hash and reject password sign-in outright.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthenticated()
	}
	if err != nil {
		return nil, fmt.Errorf("service/identity: looking up user for sign-in: %w", err)
	}

	if !user.HasPassword() || !s.passwords.Verify(user.PasswordHash, password) {
		return nil, apperror.Unauthenticated()
	}

	return s.issueSession(user)
}

// SessionFor issues a session token for an already-resolved user
// (OAuth callback path).
func (s *IdentityService) SessionFor(user *model.User) (*AuthResult, error) {
	return s.issueSession(user)
}

func (s *IdentityService) issueSession(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/identity: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// /api/me handler after the middleware validates the session.
func (s *IdentityService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.store.GetUserByID(ctx, id)
}

// DeleteAccount removes the user and everything they own. Cascades are
// explicit here rather than hidden in storage callbacks: questions go
// first (taking their answers, comments, votes, and subscriptions with
// them), then the user's own answers, comments, votes, authorizations,
// and subscriptions, and finally the user row.
func (s *IdentityService) DeleteAccount(ctx context.Context, userID string) error {
	if !policy.SignedIn(userID) {
		return apperror.Unauthenticated()
	}

	questions, err := s.store.ListQuestionsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("service/identity: listing questions for account deletion: %w", err)
	}
	for i := range questions {
		if err := deleteQuestionCascade(ctx, s.store, questions[i].ID); err != nil {
			return err
		}
	}

	answers, err := s.store.ListAnswersByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("service/identity: listing answers for account deletion: %w", err)
	}
	for i := range answers {
		if err := deleteAnswerCascade(ctx, s.store, answers[i].ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
	}

	if err := s.store.DeleteCommentsByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteVotesByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteAuthorizationsByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteSubscriptionsByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("userID", userID))
	return nil
}
