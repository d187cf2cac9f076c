package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/study-and-research/QnA/internal/mail"
	"github.com/study-and-research/QnA/internal/repository"
)

// DigestService dispatches the daily digest: one Mailer.Digest call
// per user, sequentially. Parallel fan-out is deliberately avoided —
// the job runs on a schedule, not in a request path, and sequential
// delivery keeps the mail collaborator's load predictable.
type DigestService struct {
	users  repository.UserRepository
	mailer mail.Mailer
	logger *slog.Logger
}

func NewDigestService(users repository.UserRepository, mailer mail.Mailer, logger *slog.Logger) *DigestService {
	return &DigestService{
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

// SendDailyDigest invokes the mailer once per current user. User IDs
// are deduplicated within the run, so a single run never digests the
// same user twice; retries of the whole job by the surrounding
// scheduler are its concern, not ours. Per-user delivery failures are
// logged and do not stop the run.
func (s *DigestService) SendDailyDigest(ctx context.Context) error {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("service/digest: listing users: %w", err)
	}

	seen := make(map[string]struct{}, len(users))
	sent := 0
	for i := range users {
		user := &users[i]
		if _, dup := seen[user.ID]; dup {
			continue
		}
		seen[user.ID] = struct{}{}

		if err := s.mailer.Digest(ctx, user); err != nil {
			s.logger.Error("digest delivery failed",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		sent++
	}

	s.logger.Info("daily digest dispatched", slog.Int("sent", sent), slog.Int("users", len(users)))
	return nil
}
