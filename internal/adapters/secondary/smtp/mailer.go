package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail/v2"

	"submission-review-service/internal/config"
	ports "submission-review-service/internal/core/ports/output"
)

type mailer struct {
	dialer  *mail.Dialer
	from    string
	enabled bool
}

// NewMailer creates an SMTP mailer adapter. When SMTP is not configured the
// returned mailer reports itself unavailable and Send is a no-op.
func NewMailer(cfg *config.SMTPConfig) ports.Mailer {
	if !cfg.Enabled() {
		return &mailer{enabled: false}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.Timeout = timeout
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}

	return &mailer{
		dialer:  d,
		from:    cfg.From,
		enabled: true,
	}
}

func (m *mailer) IsAvailable() bool {
	return m.enabled
}

func (m *mailer) Send(ctx context.Context, to []string, subject, html string) error {
	if !m.enabled || len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.from, to, subject, html)

	// DialAndSend has no context; run it aside so the caller's deadline holds.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, to []string, subject, html string) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return msg
}
