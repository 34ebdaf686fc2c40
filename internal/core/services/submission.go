package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// ReviewerNotifier announces a new submission to its reviewers.
type ReviewerNotifier interface {
	NotifyNewSubmission(ctx context.Context, sub *domain.Submission) (int, error)
}

// SubmissionService is the intake side: it creates pending submissions
// and serves detail lookups.
type SubmissionService struct {
	repo         ports.SubmissionRepository
	notifier     ReviewerNotifier
	paging       Paging
	storeTimeout time.Duration
	now          func() time.Time
}

func NewSubmissionService(repo ports.SubmissionRepository, notifier ReviewerNotifier, paging Paging, storeTimeout time.Duration) *SubmissionService {
	return &SubmissionService{
		repo:         repo,
		notifier:     notifier,
		paging:       paging,
		storeTimeout: storeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *SubmissionService) SubmitArtifact(ctx context.Context, submitter domain.Identity, payload domain.ArtifactPayload) (*domain.Submission, error) {
	if submitter.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.CanSubmit(submitter.Role, domain.KindArtifact) {
		return nil, domain.ErrForbidden
	}

	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if payload.Images == nil {
		payload.Images = []string{}
	}
	if payload.Tags == nil {
		payload.Tags = []string{}
	}

	sub := s.newSubmission(submitter, domain.KindArtifact)
	sub.Artifact = &payload

	if err := s.create(ctx, sub); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if _, err := s.notifier.NotifyNewSubmission(context.WithoutCancel(ctx), sub); err != nil {
			log.WithError(err).WithField("submission_id", sub.ID).Warn("failed to notify reviewers of new artifact")
		}
	}

	return sub, nil
}

func (s *SubmissionService) SubmitCuratorApplication(ctx context.Context, submitter domain.Identity, payload domain.CuratorApplicationPayload) (*domain.Submission, error) {
	if submitter.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.CanSubmit(submitter.Role, domain.KindCuratorApplication) {
		return nil, domain.ErrForbidden
	}

	payload.FullName = strings.TrimSpace(payload.FullName)
	if payload.FullName == "" {
		return nil, domain.ErrInvalidFullName
	}

	storeCtx, cancel := bounded(ctx, s.storeTimeout)
	_, pending, err := s.repo.List(storeCtx, ports.SubmissionListFilter{
		Kind:        domain.KindCuratorApplication,
		Status:      domain.StatusPending,
		SubmitterID: submitter.ID,
		Limit:       1,
	})
	cancel()
	if err != nil {
		return nil, translateTimeout(err)
	}
	if pending > 0 {
		return nil, domain.ErrApplicationPending
	}

	sub := s.newSubmission(submitter, domain.KindCuratorApplication)
	sub.Application = &payload

	if err := s.create(ctx, sub); err != nil {
		// Two concurrent applications: the store's uniqueness rule wins.
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrApplicationPending
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
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

// ListMine pages through the caller's own submissions.
func (s *SubmissionService) ListMine(ctx context.Context, submitter domain.Identity, kind domain.Kind, status domain.Status, page, size int) ([]*domain.Submission, int, error) {
	if submitter.ID == "" {
		return nil, 0, domain.ErrUnauthenticated
	}
	limit, offset, _ := s.paging.window(page, size)

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	subs, total, err := s.repo.List(ctx, ports.SubmissionListFilter{
		Kind:        kind,
		Status:      status,
		SubmitterID: submitter.ID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, 0, translateTimeout(err)
	}
	return subs, total, nil
}

func (s *SubmissionService) newSubmission(submitter domain.Identity, kind domain.Kind) *domain.Submission {
	now := s.now()
	return &domain.Submission{
		ID:            uuid.New(),
		Kind:          kind,
		Status:        domain.StatusPending,
		SubmitterID:   submitter.ID,
		SubmittedAt:   now,
		UpdatedAt:     now,
		SubmitterName: submitter.Name,
	}
}

func (s *SubmissionService) create(ctx context.Context, sub *domain.Submission) error {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, sub); err != nil {
		return translateTimeout(fmt.Errorf("create submission: %w", err))
	}
	return nil
}
