package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/testutil"
)

type dispatchFixture struct {
	notifications *testutil.MockNotificationRepo
	submissions   *testutil.MockSubmissionRepo
	directory     *testutil.MockUserDirectory
	mailer        *testutil.MockMailer
	d             *Dispatcher
}

func newDispatchFixture(mailAvailable bool) *dispatchFixture {
	f := &dispatchFixture{
		notifications: new(testutil.MockNotificationRepo),
		submissions:   new(testutil.MockSubmissionRepo),
		directory:     new(testutil.MockUserDirectory),
		mailer:        new(testutil.MockMailer),
	}
	f.mailer.On("IsAvailable").Return(mailAvailable)
	f.d = NewDispatcher(f.notifications, f.submissions, f.directory, f.mailer, DispatchOptions{
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		Fanout:         2,
	})
	return f
}

func rejectionEvent(sub *domain.Submission, reason string) *domain.ReviewEvent {
	return &domain.ReviewEvent{
		ID:           uuid.New(),
		SubmissionID: sub.ID,
		Kind:         sub.Kind,
		FromStatus:   domain.StatusPending,
		ToStatus:     domain.StatusRejected,
		ReviewerID:   professor1.ID,
		Reason:       &reason,
		OccurredAt:   time.Now(),
	}
}

func TestDispatcher_Notify_BuildsSubmitterNotification(t *testing.T) {
	f := newDispatchFixture(false)
	sub := pendingArtifact("Bronze mirror")
	event := rejectionEvent(sub, "low quality")

	f.submissions.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientID == sub.SubmitterID &&
			n.Type == domain.NotificationArtifactRejected &&
			n.RelatedID == sub.ID &&
			n.DedupeKey == domain.DecisionDedupeKey(sub.ID, domain.StatusRejected)
	})).Return(&domain.Notification{ID: uuid.New()}, true, nil)

	n, err := f.d.Notify(context.Background(), event)
	require.NoError(t, err)
	assert.NotNil(t, n)
	f.notifications.AssertExpectations(t)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_Notify_RetriesTransientFailures(t *testing.T) {
	f := newDispatchFixture(false)
	sub := pendingArtifact("Bronze mirror")

	f.submissions.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(nil, false, errors.New("connection reset")).Twice()
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(&domain.Notification{ID: uuid.New()}, true, nil).Once()

	_, err := f.d.Notify(context.Background(), rejectionEvent(sub, "blurry"))
	require.NoError(t, err)
	f.notifications.AssertNumberOfCalls(t, "CreateIfAbsent", 3)
}

func TestDispatcher_Notify_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newDispatchFixture(false)
	sub := pendingArtifact("Bronze mirror")

	f.submissions.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(nil, false, errors.New("connection reset"))

	_, err := f.d.Notify(context.Background(), rejectionEvent(sub, "blurry"))
	assert.Error(t, err)
	f.notifications.AssertNumberOfCalls(t, "CreateIfAbsent", 3)
}

func TestDispatcher_Notify_TimeoutSurfacesAsErrTimeout(t *testing.T) {
	f := newDispatchFixture(false)
	sub := pendingArtifact("Bronze mirror")

	f.submissions.On("GetByID", mock.Anything, sub.ID).Return(nil, context.DeadlineExceeded)

	_, err := f.d.Notify(context.Background(), rejectionEvent(sub, "blurry"))
	assert.ErrorIs(t, err, domain.ErrTimeout)
	f.submissions.AssertNumberOfCalls(t, "GetByID", 3)
}

func TestDispatcher_Notify_MissingSubmissionNotRetried(t *testing.T) {
	f := newDispatchFixture(false)
	sub := pendingArtifact("Bronze mirror")

	f.submissions.On("GetByID", mock.Anything, sub.ID).Return(nil, domain.ErrSubmissionNotFound)

	_, err := f.d.Notify(context.Background(), rejectionEvent(sub, "blurry"))
	assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	f.submissions.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestDispatcher_Notify_MailsOnlyNewNotifications(t *testing.T) {
	f := newDispatchFixture(true)
	sub := pendingArtifact("Bronze mirror")
	stored := &domain.Notification{ID: uuid.New(), RecipientID: sub.SubmitterID, Title: "Artifact rejected", Message: "x"}

	f.submissions.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(stored, true, nil).Once()
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(stored, false, nil).Once()
	f.directory.On("GetUser", mock.Anything, sub.SubmitterID).Return(&domain.User{ID: sub.SubmitterID, Email: "cur@example.org"}, nil)
	f.mailer.On("Send", mock.Anything, []string{"cur@example.org"}, "Artifact rejected", mock.AnythingOfType("string")).Return(nil)

	event := rejectionEvent(sub, "blurry")
	first, err := f.d.Notify(context.Background(), event)
	require.NoError(t, err)
	second, err := f.d.Notify(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	f.mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestDispatcher_Notify_MailFailureIsNotFatal(t *testing.T) {
	f := newDispatchFixture(true)
	sub := pendingArtifact("Bronze mirror")
	stored := &domain.Notification{ID: uuid.New(), RecipientID: sub.SubmitterID}

	f.submissions.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(stored, true, nil)
	f.directory.On("GetUser", mock.Anything, sub.SubmitterID).Return(&domain.User{Email: "cur@example.org"}, nil)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	n, err := f.d.Notify(context.Background(), rejectionEvent(sub, "blurry"))
	require.NoError(t, err)
	assert.Equal(t, stored.ID, n.ID)
}

func TestDispatcher_NotifyNewSubmission_FansOutToProfessors(t *testing.T) {
	f := newDispatchFixture(false)
	sub := pendingArtifact("Bronze mirror")
	reviewers := []*domain.User{
		{ID: "prof-1", Role: domain.RoleProfessor},
		{ID: "prof-2", Role: domain.RoleProfessor},
		{ID: "prof-3", Role: domain.RoleProfessor},
	}

	f.directory.On("ListByRole", mock.Anything, domain.RoleProfessor).Return(reviewers, nil)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Type == domain.NotificationArtifactSubmitted && n.DedupeKey == domain.SubmittedDedupeKey(sub.ID)
	})).Return(&domain.Notification{ID: uuid.New()}, true, nil)

	created, err := f.d.NotifyNewSubmission(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	f.notifications.AssertNumberOfCalls(t, "CreateIfAbsent", 3)
}

func TestDispatcher_NotifyNewSubmission_DirectoryFailure(t *testing.T) {
	f := newDispatchFixture(false)
	f.directory.On("ListByRole", mock.Anything, domain.RoleProfessor).Return(nil, errors.New("directory down"))

	_, err := f.d.NotifyNewSubmission(context.Background(), pendingArtifact("Bronze mirror"))
	assert.Error(t, err)
	f.notifications.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}
