package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// NotificationService is the recipient's inbox. Every call is scoped to
// the recipient; nobody can read or mark another user's notifications.
type NotificationService struct {
	repo         ports.NotificationRepository
	paging       Paging
	storeTimeout time.Duration
	now          func() time.Time
}

func NewNotificationService(repo ports.NotificationRepository, paging Paging, storeTimeout time.Duration) *NotificationService {
	return &NotificationService{
		repo:         repo,
		paging:       paging,
		storeTimeout: storeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) List(ctx context.Context, recipient domain.Identity, unreadOnly bool, page, size int) ([]*domain.Notification, int, error) {
	if recipient.ID == "" {
		return nil, 0, domain.ErrUnauthenticated
	}
	limit, offset, _ := s.paging.window(page, size)

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	items, total, err := s.repo.List(ctx, ports.NotificationListFilter{
		RecipientID: recipient.ID,
		UnreadOnly:  unreadOnly,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, 0, translateTimeout(err)
	}
	return items, total, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipient domain.Identity) (int, error) {
	if recipient.ID == "" {
		return 0, domain.ErrUnauthenticated
	}
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	n, err := s.repo.CountUnread(ctx, recipient.ID)
	return n, translateTimeout(err)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipient domain.Identity, id uuid.UUID) error {
	if recipient.ID == "" {
		return domain.ErrUnauthenticated
	}
	if id == uuid.Nil {
		return domain.ErrInvalidNotificationID
	}
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	return translateTimeout(s.repo.MarkRead(ctx, recipient.ID, id, s.now()))
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipient domain.Identity) (int, error) {
	if recipient.ID == "" {
		return 0, domain.ErrUnauthenticated
	}
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	n, err := s.repo.MarkAllRead(ctx, recipient.ID, s.now())
	return n, translateTimeout(err)
}
