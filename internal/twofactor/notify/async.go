package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/service"
)

// DefaultAsyncTimeout bounds a single background delivery.
const DefaultAsyncTimeout = 30 * time.Second

// Async hands notifications to Next on a background goroutine and returns
// immediately, so a slow mail server never holds up a verify request.
// Delivery errors are logged.
type Async struct {
	Next    service.Notifier
	Logger  *slog.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewAsync(next service.Notifier, logger *slog.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = DefaultAsyncTimeout
	}
	return &Async{Next: next, Logger: logger, Timeout: timeout}
}

func (a *Async) Notify2FAEnabled(ctx context.Context, user domain.User) error {
	// The request context is cancelled as soon as the handler returns.
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, a.Timeout)
		defer cancel()

		if err := a.Next.Notify2FAEnabled(ctx, user); err != nil {
			a.Logger.Error("failed to deliver 2fa enabled notification", "user_id", user.ID, "error", err)
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
