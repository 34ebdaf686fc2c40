package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// Notifier delivers the submitter notice for a committed transition.
type Notifier interface {
	Notify(ctx context.Context, event *domain.ReviewEvent) (*domain.Notification, error)
}

// ReviewService drives the pending → accepted | rejected state machine.
// The store compare-and-set is the only arbiter between racing reviewers;
// a lost race is reported and never retried.
type ReviewService struct {
	repo         ports.SubmissionRepository
	events       ports.ReviewEventRepository
	directory    ports.UserDirectory
	eligibility  *EligibilityResolver
	notifier     Notifier
	storeTimeout time.Duration
	eventRetry   RetryPolicy
	now          func() time.Time
}

func NewReviewService(
	repo ports.SubmissionRepository,
	events ports.ReviewEventRepository,
	directory ports.UserDirectory,
	eligibility *EligibilityResolver,
	notifier Notifier,
	storeTimeout time.Duration,
) *ReviewService {
	return &ReviewService{
		repo:         repo,
		events:       events,
		directory:    directory,
		eligibility:  eligibility,
		notifier:     notifier,
		storeTimeout: storeTimeout,
		eventRetry:   defaultEventRetry(storeTimeout),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func defaultEventRetry(storeTimeout time.Duration) RetryPolicy {
	return RetryPolicy{
		Timeout:        storeTimeout,
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
	}
}

// WithEventRetry replaces the bounds used when recording review events.
func (s *ReviewService) WithEventRetry(policy RetryPolicy) *ReviewService {
	s.eventRetry = policy
	return s
}

// Decide moves a pending submission to outcome on behalf of reviewer.
// Failures, in order: ErrSubmissionNotFound, ErrInvalidTransition,
// ErrForbidden, validation errors, ErrAlreadyDecided.
func (s *ReviewService) Decide(ctx context.Context, reviewer domain.Identity, id uuid.UUID, outcome domain.Status, reason string) (*domain.Submission, error) {
	if reviewer.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}
	if !s.eligibility.CanReview(reviewer, sub) {
		return nil, domain.ErrForbidden
	}

	// Validate before claiming so a malformed request never takes the assignment.
	transition, err := domain.Decide(sub, reviewer.ID, outcome, reason, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.assign(ctx, reviewer, sub); err != nil {
		return nil, err
	}

	casCtx, cancel := bounded(ctx, s.storeTimeout)
	err = s.repo.CompareAndSetStatus(casCtx, id, domain.StatusPending, transition.Decision)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.WithFields(log.Fields{
				"submission_id": id,
				"reviewer_id":   reviewer.ID,
				"outcome":       outcome,
			}).Info("decision lost to a concurrent reviewer")
			return nil, domain.ErrAlreadyDecided
		}
		return nil, translateTimeout(fmt.Errorf("compare-and-set status: %w", err))
	}

	transition.Decision.Apply(sub)

	// The decision is committed; the caller going away must not cut the
	// follow-up work short.
	s.afterCommit(context.WithoutCancel(ctx), sub, transition)

	return sub, nil
}

// Claim assigns a pending submission to reviewer without deciding it.
func (s *ReviewService) Claim(ctx context.Context, reviewer domain.Identity, id uuid.UUID) (*domain.Submission, error) {
	if reviewer.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.assign(ctx, reviewer, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// History returns the review events recorded for a submission.
func (s *ReviewService) History(ctx context.Context, id uuid.UUID) ([]*domain.ReviewEvent, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	events, err := s.events.ListBySubmission(ctx, id)
	if err != nil {
		return nil, translateTimeout(err)
	}
	return events, nil
}

func (s *ReviewService) load(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if id == uuid.Nil {
		return nil, domain.ErrInvalidSubmissionID
	}
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateTimeout(err)
	}
	return sub, nil
}

func (s *ReviewService) assign(ctx context.Context, reviewer domain.Identity, sub *domain.Submission) error {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.eligibility.Assign(ctx, reviewer, sub); err != nil {
		return translateTimeout(err)
	}
	return nil
}

// afterCommit records the event and runs the transition's side effects once.
// The event append is retried and a duplicate counts as recorded. Failures
// are logged; the committed decision stands regardless.
func (s *ReviewService) afterCommit(ctx context.Context, sub *domain.Submission, transition *domain.Transition) {
	event := transition.Event
	fields := log.Fields{
		"submission_id": sub.ID,
		"kind":          sub.Kind,
		"to_status":     event.ToStatus,
	}

	attempts, err := s.eventRetry.Do(ctx, func(ctx context.Context) error {
		err := s.events.Append(ctx, &event)
		if errors.Is(err, domain.ErrReviewEventRecorded) {
			return nil
		}
		return err
	})
	if err != nil {
		log.WithFields(fields).WithField("attempts", attempts).WithError(err).
			Error("failed to append review event, manual reconciliation required")
	}

	for _, effect := range transition.SideEffects {
		switch effect {
		case domain.SideEffectNotifySubmitter:
			if s.notifier == nil {
				continue
			}
			if _, err := s.notifier.Notify(ctx, &event); err != nil {
				log.WithFields(fields).WithError(err).Warn("failed to notify submitter")
			}
		case domain.SideEffectGrantCuratorRole:
			grantCtx, cancel := bounded(ctx, s.storeTimeout)
			if err := s.directory.GrantRole(grantCtx, sub.SubmitterID, domain.RoleCurator); err != nil {
				log.WithFields(fields).WithError(err).Error("failed to grant curator role")
			}
			cancel()
		}
	}

	log.WithFields(fields).WithField("reviewer_id", event.ReviewerID).Info("submission decided")
}
