// Package mail defines the mail-delivery collaborator. Message content
// and transport are outside this service's scope; the engine only
// depends on the invocation contract below.
package mail

import (
	"context"
	"log/slog"

	"github.com/study-and-research/QnA/internal/model"
)

// Mailer is the delivery collaborator invoked by the notification
// paths: the daily digest job and the new-answer subscription fan-out.
type Mailer interface {
	// Digest sends the periodic aggregated notification to one user.
	Digest(ctx context.Context, user *model.User) error
	// NewAnswer tells a subscriber that a question they follow got a
	// new answer.
	NewAnswer(ctx context.Context, user *model.User, answer *model.Answer) error
}

// LogMailer is the shipped Mailer: it records deliveries in the log.
// Swap in an SMTP- or API-backed implementation at wiring time.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Digest(ctx context.Context, user *model.User) error {
	m.logger.Info("mail: daily digest",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)
	return nil
}

func (m *LogMailer) NewAnswer(ctx context.Context, user *model.User, answer *model.Answer) error {
	m.logger.Info("mail: new answer notification",
		slog.String("userID", user.ID),
		slog.String("questionID", answer.QuestionID),
		slog.String("answerID", answer.ID),
	)
	return nil
}
