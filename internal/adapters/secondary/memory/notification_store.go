package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

type dedupeKey struct {
	recipient string
	key       string
}

type NotificationStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*domain.Notification
	byDedup map[dedupeKey]uuid.UUID
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		byID:    make(map[uuid.UUID]*domain.Notification),
		byDedup: make(map[dedupeKey]uuid.UUID),
	}
}

var _ ports.NotificationRepository = (*NotificationStore)(nil)

func (s *NotificationStore) CreateIfAbsent(ctx context.Context, n *domain.Notification) (*domain.Notification, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := dedupeKey{recipient: n.RecipientID, key: n.DedupeKey}
	if id, ok := s.byDedup[k]; ok {
		existing := *s.byID[id]
		return &existing, false, nil
	}

	stored := *n
	s.byID[n.ID] = &stored
	s.byDedup[k] = n.ID
	out := stored
	return &out, true, nil
}

func (s *NotificationStore) List(ctx context.Context, filter ports.NotificationListFilter) ([]*domain.Notification, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*domain.Notification{}
	for _, n := range s.byID {
		if n.RecipientID != filter.RecipientID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		c := *n
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, recipientID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.byID {
		if item.RecipientID == recipientID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, recipientID string, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok || n.RecipientID != recipientID {
		return domain.ErrNotificationNotFound
	}
	if !n.IsRead {
		readAt := at
		n.IsRead = true
		n.ReadAt = &readAt
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, n := range s.byID {
		if n.RecipientID == recipientID && !n.IsRead {
			readAt := at
			n.IsRead = true
			n.ReadAt = &readAt
			updated++
		}
	}
	return updated, nil
}
