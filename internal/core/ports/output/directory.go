package ports

import (
	"context"

	"submission-review-service/internal/core/domain"
)

// UserDirectory is the account collaborator. Accounts are owned elsewhere;
// this service only reads them, except for the curator role grant that
// follows an approved application.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUsers(ctx context.Context, ids []string) (map[string]*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	GrantRole(ctx context.Context, id string, role domain.Role) error
}
