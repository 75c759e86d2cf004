// Package notify contains implementations of service.Notifier.
package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
)

// LogNotifier only records the event. It is the default when no mail
// server is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify2FAEnabled(ctx context.Context, user domain.User) error {
	n.Logger.InfoContext(ctx, "two-factor authentication enabled", "user_id", user.ID, "email", user.Email)
	return nil
}
