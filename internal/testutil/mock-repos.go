package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// MockSubmissionRepo is a mock of SubmissionRepository.
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) List(ctx context.Context, filter ports.SubmissionListFilter) ([]*domain.Submission, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionRepo) CountByStatus(ctx context.Context, kind domain.Kind, search string) (domain.StatusCounts, error) {
	args := m.Called(ctx, kind, search)
	return args.Get(0).(domain.StatusCounts), args.Error(1)
}

func (m *MockSubmissionRepo) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected domain.Status, decision domain.Decision) error {
	args := m.Called(ctx, id, expected, decision)
	return args.Error(0)
}

func (m *MockSubmissionRepo) CompareAndSetAssignee(ctx context.Context, id uuid.UUID, reviewerID string) (string, error) {
	args := m.Called(ctx, id, reviewerID)
	return args.String(0), args.Error(1)
}

// MockReviewEventRepo is a mock of ReviewEventRepository.
type MockReviewEventRepo struct {
	mock.Mock
}

func (m *MockReviewEventRepo) Append(ctx context.Context, event *domain.ReviewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockReviewEventRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.ReviewEvent, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewEvent), args.Error(1)
}

func (m *MockReviewEventRepo) ListRecent(ctx context.Context, filter ports.EventListFilter) ([]*domain.ReviewEvent, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ReviewEvent), args.Int(1), args.Error(2)
}

// MockNotificationRepo is a mock of NotificationRepository.
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) CreateIfAbsent(ctx context.Context, n *domain.Notification) (*domain.Notification, bool, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Notification), args.Bool(1), args.Error(2)
}

func (m *MockNotificationRepo) List(ctx context.Context, filter ports.NotificationListFilter) ([]*domain.Notification, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Notification), args.Int(1), args.Error(2)
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, recipientID string, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, recipientID, id, at)
	return args.Error(0)
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int, error) {
	args := m.Called(ctx, recipientID, at)
	return args.Int(0), args.Error(1)
}

// MockUserDirectory is a mock of UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserDirectory) GetUsers(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.User), args.Error(1)
}

func (m *MockUserDirectory) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserDirectory) GrantRole(ctx context.Context, id string, role domain.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

// MockMailer is a mock of Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to []string, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

func (m *MockMailer) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockNotifier is a mock of the decision and new-submission notifiers.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event *domain.ReviewEvent) (*domain.Notification, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotifier) NotifyNewSubmission(ctx context.Context, sub *domain.Submission) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}
