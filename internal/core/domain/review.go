package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewEvent records one completed pending → terminal transition.
// Events are append-only.
type ReviewEvent struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Kind         Kind      `json:"kind"`
	FromStatus   Status    `json:"from_status"`
	ToStatus     Status    `json:"to_status"`
	ReviewerID   string    `json:"reviewer_id"`
	Reason       *string   `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// SideEffect names follow-up work owed after a committed transition.
type SideEffect string

const (
	SideEffectNotifySubmitter  SideEffect = "notify_submitter"
	SideEffectGrantCuratorRole SideEffect = "grant_curator_role"
)

// Transition is the outcome of a legal pending → terminal move.
type Transition struct {
	Decision    Decision
	Event       ReviewEvent
	SideEffects []SideEffect
}

// NormalizeReason trims the reason; an all-blank reason counts as absent.
func NormalizeReason(reason string) *string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ValidateOutcome checks the outcome/reason pairing on the raw reason.
// Rejections need a non-blank reason. Acceptances must not carry one at
// all, whitespace included.
func ValidateOutcome(outcome Status, reason string) error {
	switch outcome {
	case StatusRejected:
		if NormalizeReason(reason) == nil {
			return ErrRejectionReasonRequired
		}
	case StatusAccepted:
		if reason != "" {
			return ErrReasonNotAllowed
		}
	default:
		return ErrInvalidOutcome
	}
	return nil
}

// Decide computes the transition for sub. It does not mutate sub; the
// caller persists Decision with a compare-and-set against sub.Status.
func Decide(sub *Submission, reviewerID string, outcome Status, reason string, now time.Time) (*Transition, error) {
	if sub.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	if err := ValidateOutcome(outcome, reason); err != nil {
		return nil, err
	}
	normalized := NormalizeReason(reason)

	decision := Decision{
		Status:          outcome,
		DecidedAt:       now,
		DecidedBy:       reviewerID,
		RejectionReason: normalized,
	}

	effects := []SideEffect{SideEffectNotifySubmitter}
	if sub.Kind == KindCuratorApplication && outcome == StatusAccepted {
		effects = append(effects, SideEffectGrantCuratorRole)
	}

	return &Transition{
		Decision: decision,
		Event: ReviewEvent{
			ID:           uuid.New(),
			SubmissionID: sub.ID,
			Kind:         sub.Kind,
			FromStatus:   sub.Status,
			ToStatus:     outcome,
			ReviewerID:   reviewerID,
			Reason:       normalized,
			OccurredAt:   now,
		},
		SideEffects: effects,
	}, nil
}
