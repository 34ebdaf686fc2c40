package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

const eventSelect = `
	SELECT id, submission_id, kind, from_status, to_status, reviewer_id, reason, occurred_at
	FROM review_event
`

type reviewEventRepo struct {
	pool *pgxpool.Pool
}

func NewReviewEventRepository(pool *pgxpool.Pool) ports.ReviewEventRepository {
	return &reviewEventRepo{pool: pool}
}

func (r *reviewEventRepo) Append(ctx context.Context, event *domain.ReviewEvent) error {
	query := `
		INSERT INTO review_event
			(id, submission_id, kind, from_status, to_status, reviewer_id, reason, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID, event.SubmissionID, string(event.Kind),
		string(event.FromStatus), string(event.ToStatus),
		event.ReviewerID, event.Reason, event.OccurredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrReviewEventRecorded
		}
		return fmt.Errorf("append review event: %w", err)
	}
	return nil
}

func (r *reviewEventRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.ReviewEvent, error) {
	rows, err := r.pool.Query(ctx, eventSelect+" WHERE submission_id = $1 ORDER BY occurred_at", submissionID)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *reviewEventRepo) ListRecent(ctx context.Context, filter ports.EventListFilter) ([]*domain.ReviewEvent, int, error) {
	whereClause := "1=1"
	args := []interface{}{}
	argPos := 1
	if filter.Kind != "" {
		whereClause = fmt.Sprintf("kind = $%d", argPos)
		args = append(args, string(filter.Kind))
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM review_event WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count review events: %w", err)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY occurred_at DESC, id LIMIT $%d OFFSET $%d",
		eventSelect, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recent review events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func collectEvents(rows pgx.Rows) ([]*domain.ReviewEvent, error) {
	events := []*domain.ReviewEvent{}
	for rows.Next() {
		var e domain.ReviewEvent
		var kind, from, to string
		if err := rows.Scan(&e.ID, &e.SubmissionID, &kind, &from, &to, &e.ReviewerID, &e.Reason, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan review event row: %w", err)
		}
		e.Kind = domain.Kind(kind)
		e.FromStatus = domain.Status(from)
		e.ToStatus = domain.Status(to)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review event rows: %w", err)
	}
	return events, nil
}
