package services

import (
	"context"
	"fmt"
	"html"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// DispatchOptions bounds delivery work. Every attempt runs under Timeout;
// transient failures are retried up to MaxAttempts with exponential backoff
// starting at InitialBackoff. Fanout caps concurrent reviewer notices.
type DispatchOptions struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	Fanout         int
}

type Dispatcher struct {
	notifications ports.NotificationRepository
	submissions   ports.SubmissionRepository
	directory     ports.UserDirectory
	mailer        ports.Mailer
	opts          DispatchOptions
	now           func() time.Time
}

func NewDispatcher(
	notifications ports.NotificationRepository,
	submissions ports.SubmissionRepository,
	directory ports.UserDirectory,
	mailer ports.Mailer,
	opts DispatchOptions,
) *Dispatcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Fanout <= 0 {
		opts.Fanout = 1
	}
	return &Dispatcher{
		notifications: notifications,
		submissions:   submissions,
		directory:     directory,
		mailer:        mailer,
		opts:          opts,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Notify delivers the decision notice for event to the submitter. The
// (submission, to-status) dedupe key makes repeated calls return the
// notification stored by the first one.
func (d *Dispatcher) Notify(ctx context.Context, event *domain.ReviewEvent) (*domain.Notification, error) {
	var (
		stored  *domain.Notification
		created bool
	)

	attempts, err := d.withRetry(ctx, func(ctx context.Context) error {
		sub, err := d.submissions.GetByID(ctx, event.SubmissionID)
		if err != nil {
			return err
		}
		n, err := domain.BuildNotification(
			sub.SubmitterID, event.Kind, event.ToStatus, event.SubmissionID,
			sub.Title(), event.Reason,
			domain.DecisionDedupeKey(event.SubmissionID, event.ToStatus), d.now(),
		)
		if err != nil {
			return permanent(err)
		}
		stored, created, err = d.notifications.CreateIfAbsent(ctx, n)
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"submission_id": event.SubmissionID,
			"to_status":     event.ToStatus,
			"attempts":      attempts,
		}).WithError(err).Error("notification dispatch failed, manual reconciliation required")
		return nil, translateTimeout(unwrapPermanent(err))
	}

	if created {
		d.mail(ctx, stored)
	}
	return stored, nil
}

// NotifyNewSubmission tells every professor that sub awaits review. It
// returns the number of notifications created by this call; deliveries to
// different recipients do not cancel each other.
func (d *Dispatcher) NotifyNewSubmission(ctx context.Context, sub *domain.Submission) (int, error) {
	lookupCtx, cancel := bounded(ctx, d.opts.Timeout)
	reviewers, err := d.directory.ListByRole(lookupCtx, domain.RoleProfessor)
	cancel()
	if err != nil {
		return 0, translateTimeout(fmt.Errorf("list reviewers: %w", err))
	}

	var g errgroup.Group
	g.SetLimit(d.opts.Fanout)

	results := make([]bool, len(reviewers))
	for i, reviewer := range reviewers {
		g.Go(func() error {
			n, err := domain.BuildNotification(
				reviewer.ID, sub.Kind, domain.StatusPending, sub.ID, sub.Title(), nil,
				domain.SubmittedDedupeKey(sub.ID), d.now(),
			)
			if err != nil {
				return err
			}

			var (
				stored  *domain.Notification
				created bool
			)
			attempts, err := d.withRetry(ctx, func(ctx context.Context) error {
				var err error
				stored, created, err = d.notifications.CreateIfAbsent(ctx, n)
				return err
			})
			if err != nil {
				log.WithFields(log.Fields{
					"submission_id": sub.ID,
					"recipient_id":  reviewer.ID,
					"attempts":      attempts,
				}).WithError(err).Error("reviewer notification failed, manual reconciliation required")
				return translateTimeout(err)
			}
			if created {
				results[i] = true
				d.mail(ctx, stored)
			}
			return nil
		})
	}
	err = g.Wait()

	createdCount := 0
	for _, ok := range results {
		if ok {
			createdCount++
		}
	}
	return createdCount, err
}

// withRetry runs fn under the dispatch retry bounds.
func (d *Dispatcher) withRetry(ctx context.Context, fn func(context.Context) error) (int, error) {
	return RetryPolicy{
		Timeout:        d.opts.Timeout,
		MaxAttempts:    d.opts.MaxAttempts,
		InitialBackoff: d.opts.InitialBackoff,
	}.Do(ctx, fn)
}

func (d *Dispatcher) mail(ctx context.Context, n *domain.Notification) {
	if d.mailer == nil || !d.mailer.IsAvailable() {
		return
	}

	mailCtx, cancel := bounded(ctx, d.opts.Timeout)
	defer cancel()

	user, err := d.directory.GetUser(mailCtx, n.RecipientID)
	if err != nil {
		log.WithError(err).WithField("recipient_id", n.RecipientID).Warn("failed to resolve notification recipient email")
		return
	}
	if user.Email == "" {
		return
	}

	body := fmt.Sprintf("<p>%s</p><p>%s</p>", html.EscapeString(n.Title), html.EscapeString(n.Message))
	if err := d.mailer.Send(mailCtx, []string{user.Email}, n.Title, body); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"notification_id": n.ID,
			"recipient_id":    n.RecipientID,
		}).Warn("failed to email notification")
	}
}
