package memory

import (
	"context"
	"sort"
	"sync"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

type Directory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewDirectory(users ...domain.User) *Directory {
	d := &Directory{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

var _ ports.UserDirectory = (*Directory)(nil)

// Put inserts or replaces a user.
func (d *Directory) Put(u domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// Ensure inserts u unless a user with the same id is already known.
func (d *Directory) Ensure(u domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[u.ID]; !ok {
		d.users[u.ID] = u
	}
}

func (d *Directory) lookup(id string) (domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	return u, ok
}

func (d *Directory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, ok := d.lookup(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (d *Directory) GetUsers(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (d *Directory) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []*domain.User{}
	for _, u := range d.users {
		if u.Role == role {
			c := u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *Directory) GrantRole(ctx context.Context, id string, role domain.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	d.users[id] = u
	return nil
}
