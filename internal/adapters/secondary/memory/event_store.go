package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

type EventStore struct {
	mu     sync.RWMutex
	events []*domain.ReviewEvent
	bySub  map[uuid.UUID]struct{}
}

func NewEventStore() *EventStore {
	return &EventStore{bySub: make(map[uuid.UUID]struct{})}
}

var _ ports.ReviewEventRepository = (*EventStore)(nil)

func (s *EventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// One terminal transition per submission, so one event.
	if _, ok := s.bySub[event.SubmissionID]; ok {
		return domain.ErrReviewEventRecorded
	}
	e := *event
	e.Reason = clonePtr(event.Reason)
	s.events = append(s.events, &e)
	s.bySub[event.SubmissionID] = struct{}{}
	return nil
}

func (s *EventStore) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.ReviewEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.ReviewEvent{}
	for _, e := range s.events {
		if e.SubmissionID == submissionID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *EventStore) ListRecent(ctx context.Context, filter ports.EventListFilter) ([]*domain.ReviewEvent, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*domain.ReviewEvent{}
	for _, e := range s.events {
		if filter.Kind == "" || e.Kind == filter.Kind {
			c := *e
			matched = append(matched, &c)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}
