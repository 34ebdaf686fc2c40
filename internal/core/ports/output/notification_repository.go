package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"submission-review-service/internal/core/domain"
)

type NotificationListFilter struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
	Offset      int
}

// NotificationRepository stores inbox items, unique per
// (recipient, dedupe key).
type NotificationRepository interface {
	// CreateIfAbsent inserts n unless a row with the same recipient and
	// dedupe key exists. It returns the stored row and whether it was
	// created by this call.
	CreateIfAbsent(ctx context.Context, n *domain.Notification) (*domain.Notification, bool, error)
	List(ctx context.Context, filter NotificationListFilter) ([]*domain.Notification, int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID string, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int, error)
}
