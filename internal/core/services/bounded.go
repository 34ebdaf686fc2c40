package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"submission-review-service/internal/core/domain"
)

// Paging holds the page-size bounds applied to every listing.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// window converts a 1-based page and a size into limit/offset, clamping
// size into [1, MaxSize] and defaulting it when unset.
func (p Paging) window(page, size int) (limit, offset, normalizedPage int) {
	if size <= 0 {
		size = p.DefaultSize
	}
	if size <= 0 {
		size = 20
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size, page
}

// bounded derives a context carrying the store timeout. A zero timeout
// leaves the caller's deadline untouched.
func bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// translateTimeout turns an expired deadline into domain.ErrTimeout so the
// caller sees a retryable error instead of a bare context error.
func translateTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}

// Normalize returns the page and size a listing actually serves.
func (p Paging) Normalize(page, size int) (int, int) {
	limit, _, page := p.window(page, size)
	return page, limit
}
