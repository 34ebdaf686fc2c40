package ports

import "context"

// Mailer delivers HTML email.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, html string) error

	// IsAvailable checks if SMTP delivery is configured
	IsAvailable() bool
}
