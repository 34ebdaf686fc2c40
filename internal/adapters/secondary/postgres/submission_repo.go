package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

const submissionSelect = `
	SELECT s.id, s.kind, s.status, s.submitter_id, s.submitted_at, s.updated_at,
		   s.decided_at, s.decided_by, s.rejection_reason, s.assigned_reviewer_id,
		   s.payload, COALESCE(u.display_name, '') AS submitter_name
	FROM review_submission s
	LEFT JOIN app_user u ON u.id = s.submitter_id
`

type submissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) ports.SubmissionRepository {
	return &submissionRepo{pool: pool}
}

func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	payload, err := marshalPayload(sub)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO review_submission
			(id, kind, status, submitter_id, submitted_at, updated_at,
			 assigned_reviewer_id, title, payload)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	_, err = r.pool.Exec(ctx, query,
		sub.ID, string(sub.Kind), string(sub.Status), sub.SubmitterID,
		sub.SubmittedAt, sub.UpdatedAt, sub.AssignedReviewerID,
		sub.Title(), payload,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrConflict
		}
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	sub, err := scanSubmission(r.pool.QueryRow(ctx, submissionSelect+" WHERE s.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission by id: %w", err)
	}
	return sub, nil
}

func (r *submissionRepo) List(ctx context.Context, filter ports.SubmissionListFilter) ([]*domain.Submission, int, error) {
	whereClause, args, argPos := buildSubmissionWhere(filter.Kind, filter.Status, filter.SubmitterID, filter.Search)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM review_submission s
		LEFT JOIN app_user u ON u.id = s.submitter_id
		WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY s.submitted_at DESC, s.id
		LIMIT $%d OFFSET $%d
	`, submissionSelect, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := []*domain.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan submission row: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate submission rows: %w", err)
	}

	return subs, total, nil
}

func (r *submissionRepo) CountByStatus(ctx context.Context, kind domain.Kind, search string) (domain.StatusCounts, error) {
	whereClause, args, _ := buildSubmissionWhere(kind, "", "", search)

	query := fmt.Sprintf(`
		SELECT s.status, COUNT(*)
		FROM review_submission s
		LEFT JOIN app_user u ON u.id = s.submitter_id
		WHERE %s
		GROUP BY s.status`, whereClause)

	var counts domain.StatusCounts
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return counts, fmt.Errorf("count submissions by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("scan status count: %w", err)
		}
		counts.Add(domain.Status(status), n)
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (r *submissionRepo) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected domain.Status, decision domain.Decision) error {
	query := `
		UPDATE review_submission
		SET status=$1, decided_at=$2, decided_by=$3, rejection_reason=$4, updated_at=$2
		WHERE id=$5 AND status=$6
	`
	result, err := r.pool.Exec(ctx, query,
		string(decision.Status), decision.DecidedAt, decision.DecidedBy,
		decision.RejectionReason, id, string(expected),
	)
	if err != nil {
		return fmt.Errorf("compare and set status: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM review_submission WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check submission after failed compare and set: %w", err)
	}
	if !exists {
		return domain.ErrSubmissionNotFound
	}
	return domain.ErrConflict
}

func (r *submissionRepo) CompareAndSetAssignee(ctx context.Context, id uuid.UUID, reviewerID string) (string, error) {
	query := `
		UPDATE review_submission
		SET assigned_reviewer_id=$1, updated_at=NOW()
		WHERE id=$2 AND status='pending' AND assigned_reviewer_id IS NULL
		RETURNING assigned_reviewer_id
	`
	var assigned string
	err := r.pool.QueryRow(ctx, query, reviewerID, id).Scan(&assigned)
	if err == nil {
		return assigned, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("compare and set assignee: %w", err)
	}

	var status string
	var current *string
	err = r.pool.QueryRow(ctx,
		`SELECT status, assigned_reviewer_id FROM review_submission WHERE id = $1`, id,
	).Scan(&status, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrSubmissionNotFound
		}
		return "", fmt.Errorf("read assignee after failed compare and set: %w", err)
	}
	if current != nil {
		return *current, nil
	}
	// Unassigned but no longer pending: decided without an assignment.
	return "", domain.ErrConflict
}

// buildSubmissionWhere renders the shared listing/count filter so both
// queries always agree on membership.
func buildSubmissionWhere(kind domain.Kind, status domain.Status, submitterID, search string) (string, []interface{}, int) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if kind != "" {
		conditions = append(conditions, fmt.Sprintf("s.kind = $%d", argPos))
		args = append(args, string(kind))
		argPos++
	}
	if status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argPos))
		args = append(args, string(status))
		argPos++
	}
	if submitterID != "" {
		conditions = append(conditions, fmt.Sprintf("s.submitter_id = $%d", argPos))
		args = append(args, submitterID)
		argPos++
	}
	if term := strings.TrimSpace(search); term != "" {
		conditions = append(conditions, fmt.Sprintf("(s.title ILIKE $%d OR u.display_name ILIKE $%d)", argPos, argPos))
		args = append(args, likePattern(term))
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}
	return whereClause, args, argPos
}

func marshalPayload(sub *domain.Submission) ([]byte, error) {
	var payload interface{}
	switch sub.Kind {
	case domain.KindArtifact:
		payload = sub.Artifact
	case domain.KindCuratorApplication:
		payload = sub.Application
	default:
		return nil, domain.ErrInvalidKind
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal submission payload: %w", err)
	}
	return b, nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var sub domain.Submission
	var kind, status string
	var payload []byte

	err := row.Scan(
		&sub.ID, &kind, &status, &sub.SubmitterID, &sub.SubmittedAt, &sub.UpdatedAt,
		&sub.DecidedAt, &sub.DecidedBy, &sub.RejectionReason, &sub.AssignedReviewerID,
		&payload, &sub.SubmitterName,
	)
	if err != nil {
		return nil, err
	}
	sub.Kind = domain.Kind(kind)
	sub.Status = domain.Status(status)

	switch sub.Kind {
	case domain.KindArtifact:
		sub.Artifact = &domain.ArtifactPayload{}
		if err := json.Unmarshal(payload, sub.Artifact); err != nil {
			return nil, fmt.Errorf("unmarshal artifact payload: %w", err)
		}
	case domain.KindCuratorApplication:
		sub.Application = &domain.CuratorApplicationPayload{}
		if err := json.Unmarshal(payload, sub.Application); err != nil {
			return nil, fmt.Errorf("unmarshal application payload: %w", err)
		}
	}
	return &sub, nil
}
