package ports

import (
	"context"

	"github.com/google/uuid"

	"submission-review-service/internal/core/domain"
)

type SubmissionListFilter struct {
	Kind        domain.Kind
	Status      domain.Status
	SubmitterID string
	Search      string
	Limit       int
	Offset      int
}

type EventListFilter struct {
	Kind   domain.Kind
	Limit  int
	Offset int
}

// SubmissionRepository is the durable store for submissions.
//
// CompareAndSetStatus is the only status mutator. It returns
// domain.ErrConflict when the stored status differs from expected and
// domain.ErrSubmissionNotFound when the row is missing.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	List(ctx context.Context, filter SubmissionListFilter) ([]*domain.Submission, int, error)
	CountByStatus(ctx context.Context, kind domain.Kind, search string) (domain.StatusCounts, error)
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected domain.Status, decision domain.Decision) error

	// CompareAndSetAssignee binds reviewerID to a pending, unassigned
	// submission. It returns the assignee after the attempt, which differs
	// from reviewerID when another reviewer already holds the assignment.
	CompareAndSetAssignee(ctx context.Context, id uuid.UUID, reviewerID string) (string, error)
}

// ReviewEventRepository is the append-only review log.
type ReviewEventRepository interface {
	Append(ctx context.Context, event *domain.ReviewEvent) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.ReviewEvent, error)
	ListRecent(ctx context.Context, filter EventListFilter) ([]*domain.ReviewEvent, int, error)
}
