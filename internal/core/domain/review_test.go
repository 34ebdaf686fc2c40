package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingSubmission(kind Kind) *Submission {
	return &Submission{
		ID:          uuid.New(),
		Kind:        kind,
		Status:      StatusPending,
		SubmitterID: "cur-1",
		SubmittedAt: time.Now().Add(-time.Hour),
	}
}

func TestDecide(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		kind        Kind
		outcome     Status
		reason      string
		wantErr     error
		wantReason  *string
		wantEffects []SideEffect
	}{
		{
			name:        "accept artifact",
			kind:        KindArtifact,
			outcome:     StatusAccepted,
			wantEffects: []SideEffect{SideEffectNotifySubmitter},
		},
		{
			name:        "reject trims reason",
			kind:        KindArtifact,
			outcome:     StatusRejected,
			reason:      "  low quality ",
			wantReason:  strPtr("low quality"),
			wantEffects: []SideEffect{SideEffectNotifySubmitter},
		},
		{
			name:        "accept application grants curator role",
			kind:        KindCuratorApplication,
			outcome:     StatusAccepted,
			wantEffects: []SideEffect{SideEffectNotifySubmitter, SideEffectGrantCuratorRole},
		},
		{
			name:        "reject application",
			kind:        KindCuratorApplication,
			outcome:     StatusRejected,
			reason:      "incomplete",
			wantReason:  strPtr("incomplete"),
			wantEffects: []SideEffect{SideEffectNotifySubmitter},
		},
		{name: "reject without reason", kind: KindArtifact, outcome: StatusRejected, wantErr: ErrRejectionReasonRequired},
		{name: "reject with blank reason", kind: KindArtifact, outcome: StatusRejected, reason: " \t", wantErr: ErrRejectionReasonRequired},
		{name: "accept with reason", kind: KindArtifact, outcome: StatusAccepted, reason: "great", wantErr: ErrReasonNotAllowed},
		{name: "accept with blank reason", kind: KindArtifact, outcome: StatusAccepted, reason: "   ", wantErr: ErrReasonNotAllowed},
		{name: "pending is not an outcome", kind: KindArtifact, outcome: StatusPending, wantErr: ErrInvalidOutcome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := pendingSubmission(tt.kind)

			tr, err := Decide(sub, "prof-1", tt.outcome, tt.reason, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidation(err))
				assert.Nil(t, tr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, tr.Decision.Status)
			assert.True(t, tr.Decision.Status.Terminal())
			assert.Equal(t, now, tr.Decision.DecidedAt)
			assert.Equal(t, "prof-1", tr.Decision.DecidedBy)
			assert.Equal(t, tt.wantReason, tr.Decision.RejectionReason)
			assert.Equal(t, tt.wantEffects, tr.SideEffects)

			assert.Equal(t, sub.ID, tr.Event.SubmissionID)
			assert.Equal(t, StatusPending, tr.Event.FromStatus)
			assert.Equal(t, tt.outcome, tr.Event.ToStatus)
			assert.Equal(t, tt.wantReason, tr.Event.Reason)

			// Decide never touches the submission itself.
			assert.Equal(t, StatusPending, sub.Status)
			assert.Nil(t, sub.DecidedAt)
		})
	}
}

func TestDecide_TerminalSubmission(t *testing.T) {
	for _, status := range []Status{StatusAccepted, StatusRejected} {
		sub := pendingSubmission(KindArtifact)
		sub.Status = status

		_, err := Decide(sub, "prof-1", StatusAccepted, "", time.Now())
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestDecisionApply_SetsDecidedAtOnlyOnTerminal(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sub := pendingSubmission(KindArtifact)
	assert.False(t, sub.Status.Terminal())
	assert.Nil(t, sub.DecidedAt)
	assert.Nil(t, sub.DecidedBy)

	tr, err := Decide(sub, "prof-2", StatusRejected, "blurry", now)
	require.NoError(t, err)
	tr.Decision.Apply(sub)

	assert.Equal(t, StatusRejected, sub.Status)
	assert.True(t, sub.Status.Terminal())
	require.NotNil(t, sub.DecidedAt)
	assert.Equal(t, now, *sub.DecidedAt)
	require.NotNil(t, sub.DecidedBy)
	assert.Equal(t, "prof-2", *sub.DecidedBy)
	require.NotNil(t, sub.RejectionReason)
	assert.Equal(t, "blurry", *sub.RejectionReason)
	assert.Equal(t, now, sub.UpdatedAt)
}

func strPtr(s string) *string { return &s }
