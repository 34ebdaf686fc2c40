package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

const notificationSelect = `
	SELECT id, recipient_id, type, title, message, related_id, dedupe_key,
		   is_read, created_at, read_at
	FROM notification
`

type notificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) ports.NotificationRepository {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) CreateIfAbsent(ctx context.Context, n *domain.Notification) (*domain.Notification, bool, error) {
	query := `
		INSERT INTO notification
			(id, recipient_id, type, title, message, related_id, dedupe_key, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,FALSE,$8)
		ON CONFLICT ON CONSTRAINT notification_recipient_dedupe DO NOTHING
	`
	result, err := r.pool.Exec(ctx, query,
		n.ID, n.RecipientID, string(n.Type), n.Title, n.Message,
		n.RelatedID, n.DedupeKey, n.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("create notification: %w", err)
	}
	if result.RowsAffected() == 1 {
		return n, true, nil
	}

	existing, err := scanNotification(r.pool.QueryRow(ctx,
		notificationSelect+" WHERE recipient_id = $1 AND dedupe_key = $2",
		n.RecipientID, n.DedupeKey,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, domain.ErrNotificationNotFound
		}
		return nil, false, fmt.Errorf("load deduplicated notification: %w", err)
	}
	return existing, false, nil
}

func (r *notificationRepo) List(ctx context.Context, filter ports.NotificationListFilter) ([]*domain.Notification, int, error) {
	whereClause := "recipient_id = $1"
	if filter.UnreadOnly {
		whereClause += " AND is_read = FALSE"
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notification WHERE "+whereClause, filter.RecipientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		notificationSelect+" WHERE "+whereClause+" ORDER BY created_at DESC, id LIMIT $2 OFFSET $3",
		filter.RecipientID, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := []*domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification row: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notification rows: %w", err)
	}
	return items, total, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notification WHERE recipient_id = $1 AND is_read = FALSE`, recipientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, recipientID string, id uuid.UUID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE notification
		SET is_read = TRUE, read_at = COALESCE(read_at, $1)
		WHERE id = $2 AND recipient_id = $3
	`, at, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE notification
		SET is_read = TRUE, read_at = $1
		WHERE recipient_id = $2 AND is_read = FALSE
	`, at, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	err := row.Scan(
		&n.ID, &n.RecipientID, &typ, &n.Title, &n.Message, &n.RelatedID,
		&n.DedupeKey, &n.IsRead, &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typ)
	return &n, nil
}
