package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
	"github.com/aussiebroadwan/twofactor/pkg/slogx"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []*mail.Msg
	err  error
}

func (c *captureSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func TestEmailNotifierSendsMessage(t *testing.T) {
	sender := &captureSender{}
	n := &EmailNotifier{
		From:   "security@example.com",
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		sender: sender,
	}

	err := n.Notify2FAEnabled(context.Background(), domain.User{ID: "u1", Email: "alice@example.com"})
	require.NoError(t, err)
	require.Len(t, sender.msgs, 1)

	var raw bytes.Buffer
	_, err = sender.msgs[0].WriteTo(&raw)
	require.NoError(t, err)

	out := raw.String()
	require.Contains(t, out, "alice@example.com")
	require.Contains(t, out, "security@example.com")
	require.Contains(t, out, "Subject: "+enabledSubject)
}

func TestEmailNotifierErrors(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	n := &EmailNotifier{From: "security@example.com", Now: time.Now, sender: sender}

	err := n.Notify2FAEnabled(context.Background(), domain.User{ID: "u1"})
	require.ErrorIs(t, err, ErrNoRecipient)
	require.Empty(t, sender.msgs)

	err = n.Notify2FAEnabled(context.Background(), domain.User{ID: "u1", Email: "alice@example.com"})
	require.ErrorContains(t, err, "connection refused")

	n.From = "not an address"
	err = n.Notify2FAEnabled(context.Background(), domain.User{ID: "u1", Email: "alice@example.com"})
	require.Error(t, err)
}

func TestNewEmailNotifier(t *testing.T) {
	n, err := NewEmailNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587, TLS: true, From: "a@example.com"})
	require.NoError(t, err)
	require.NotNil(t, n.sender)

	_, err = NewEmailNotifier(SMTPConfig{Port: 25})
	require.Error(t, err, "host is required")
}

type blockingNotifier struct {
	release chan struct{}
	calls   chan domain.User
	err     error
}

func (b *blockingNotifier) Notify2FAEnabled(ctx context.Context, u domain.User) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.calls <- u
	return b.err
}

func TestAsyncReturnsImmediately(t *testing.T) {
	next := &blockingNotifier{release: make(chan struct{}), calls: make(chan domain.User, 1), err: errors.New("boom")}
	a := NewAsync(next, slogx.Discard(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Notify2FAEnabled(ctx, domain.User{ID: "u1"}))
	cancel()

	close(next.release)
	require.NoError(t, a.Wait(context.Background()))
	require.Equal(t, "u1", (<-next.calls).ID)
}

func TestAsyncWaitHonoursContext(t *testing.T) {
	next := &blockingNotifier{release: make(chan struct{}), calls: make(chan domain.User, 1)}
	a := NewAsync(next, slogx.Discard(), time.Minute)

	require.NoError(t, a.Notify2FAEnabled(context.Background(), domain.User{ID: "u1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, a.Wait(ctx), context.DeadlineExceeded)

	close(next.release)
	require.NoError(t, a.Wait(context.Background()))
}

func TestLogNotifier(t *testing.T) {
	require.NoError(t, NewLogNotifier(slogx.Discard()).Notify2FAEnabled(context.Background(), domain.User{ID: "u1"}))
}
