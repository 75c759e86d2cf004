package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
)

var ErrNoRecipient = errors.New("notify: user has no email address")

type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

const enabledSubject = "Two-factor authentication enabled"

var enabledBody = template.Must(template.New("enabled").Parse(`Hello,

Two-factor authentication was turned on for {{.Email}} at {{.At}}.

From now on you will be asked for a code from your authenticator app
when you sign in. Keep your backup codes somewhere safe; each one works
only once.

If you did not do this, contact support immediately.
`))

// mailSender is the part of *mail.Client we use.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailNotifier tells the user by email that 2FA was turned on.
type EmailNotifier struct {
	From   string
	Now    func() time.Time
	sender mailSender
}

func NewEmailNotifier(cfg SMTPConfig) (*EmailNotifier, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSConfig(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: create mail client: %w", err)
	}

	return &EmailNotifier{From: cfg.From, Now: time.Now, sender: client}, nil
}

func (n *EmailNotifier) Notify2FAEnabled(ctx context.Context, user domain.User) error {
	msg, err := n.message(user)
	if err != nil {
		return err
	}
	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}

func (n *EmailNotifier) message(user domain.User) (*mail.Msg, error) {
	if user.Email == "" {
		return nil, ErrNoRecipient
	}

	var body bytes.Buffer
	err := enabledBody.Execute(&body, struct {
		Email string
		At    string
	}{
		Email: user.Email,
		At:    n.Now().UTC().Format(time.RFC1123),
	})
	if err != nil {
		return nil, fmt.Errorf("notify: render body: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(n.From); err != nil {
		return nil, fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(user.Email); err != nil {
		return nil, fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject(enabledSubject)
	msg.SetBodyString(mail.TypeTextPlain, body.String())

	return msg, nil
}
