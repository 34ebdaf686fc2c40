package services

import (
	"context"
	"errors"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// AssignmentPolicy decides who holds a pending submission. Assign returns
// the assignee after the attempt, which may be someone other than reviewer.
type AssignmentPolicy interface {
	Assign(ctx context.Context, reviewer domain.Identity, sub *domain.Submission) (string, error)
}

// FirstOpenerPolicy assigns a submission to the first eligible reviewer who
// opens it for decision. The store's assignee compare-and-set settles races.
type FirstOpenerPolicy struct {
	repo ports.SubmissionRepository
}

func NewFirstOpenerPolicy(repo ports.SubmissionRepository) *FirstOpenerPolicy {
	return &FirstOpenerPolicy{repo: repo}
}

func (p *FirstOpenerPolicy) Assign(ctx context.Context, reviewer domain.Identity, sub *domain.Submission) (string, error) {
	if sub.AssignedReviewerID != nil {
		return *sub.AssignedReviewerID, nil
	}
	return p.repo.CompareAndSetAssignee(ctx, sub.ID, reviewer.ID)
}

type EligibilityResolver struct {
	policy AssignmentPolicy
}

func NewEligibilityResolver(policy AssignmentPolicy) *EligibilityResolver {
	return &EligibilityResolver{policy: policy}
}

// CanReview is a pure check against the submission as loaded: the role must
// have authority over the kind, the submission must still be pending, and it
// must be unassigned or assigned to the reviewer.
func (r *EligibilityResolver) CanReview(reviewer domain.Identity, sub *domain.Submission) bool {
	if reviewer.ID == "" || sub == nil {
		return false
	}
	if !domain.HasReviewAuthority(reviewer.Role, sub.Kind) {
		return false
	}
	if sub.Status != domain.StatusPending {
		return false
	}
	return sub.AssignedReviewerID == nil || sub.IsAssignedTo(reviewer.ID)
}

// Assign makes sure reviewer holds sub. On success sub.AssignedReviewerID
// is updated in place. Losing the assignment race yields ErrForbidden; a
// submission decided meanwhile yields ErrAlreadyDecided.
func (r *EligibilityResolver) Assign(ctx context.Context, reviewer domain.Identity, sub *domain.Submission) (string, error) {
	if !r.CanReview(reviewer, sub) {
		return "", domain.ErrForbidden
	}

	assignee, err := r.policy.Assign(ctx, reviewer, sub)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return "", domain.ErrAlreadyDecided
		}
		return "", err
	}
	if assignee != reviewer.ID {
		sub.AssignedReviewerID = &assignee
		return assignee, domain.ErrForbidden
	}

	sub.AssignedReviewerID = &assignee
	return assignee, nil
}
