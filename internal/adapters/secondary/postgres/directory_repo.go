package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// userDirectory reads the app_user table maintained by the account service.
type userDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) ports.UserDirectory {
	return &userDirectory{pool: pool}
}

func (d *userDirectory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	var role string
	err := d.pool.QueryRow(ctx,
		`SELECT id, display_name, email, role FROM app_user WHERE id = $1`, id,
	).Scan(&u.ID, &u.DisplayName, &u.Email, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (d *userDirectory) GetUsers(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT id, display_name, email, role FROM app_user WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.User
		var role string
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Email, &role); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.Role = domain.Role(role)
		users[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func (d *userDirectory) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, display_name, email, role FROM app_user WHERE role = $1 ORDER BY id`, string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		var u domain.User
		var r string
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Email, &r); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.Role = domain.Role(r)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func (d *userDirectory) GrantRole(ctx context.Context, id string, role domain.Role) error {
	result, err := d.pool.Exec(ctx, `UPDATE app_user SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
