// Package memory holds process-local implementations of the output ports.
// They back the "memory" store driver and the workflow's concurrency tests;
// every compare-and-set runs under the store mutex.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

type SubmissionStore struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]*domain.Submission
	users *Directory
}

// NewSubmissionStore creates an empty store. users may be nil; when set it
// resolves submitter display names for listing and search.
func NewSubmissionStore(users *Directory) *SubmissionStore {
	return &SubmissionStore{
		rows:  make(map[uuid.UUID]*domain.Submission),
		users: users,
	}
}

var _ ports.SubmissionRepository = (*SubmissionStore)(nil)

func (s *SubmissionStore) Create(ctx context.Context, sub *domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[sub.ID]; ok {
		return domain.ErrConflict
	}
	if sub.Kind == domain.KindCuratorApplication && sub.Status == domain.StatusPending {
		for _, row := range s.rows {
			if row.Kind == sub.Kind && row.Status == domain.StatusPending && row.SubmitterID == sub.SubmitterID {
				return domain.ErrConflict
			}
		}
	}
	s.rows[sub.ID] = cloneSubmission(sub)
	return nil
}

func (s *SubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	return s.project(row), nil
}

func (s *SubmissionStore) List(ctx context.Context, filter ports.SubmissionListFilter) ([]*domain.Submission, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*domain.Submission{}
	for _, row := range s.rows {
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.SubmitterID != "" && row.SubmitterID != filter.SubmitterID {
			continue
		}
		if !s.matches(row, filter.Kind, filter.Search) {
			continue
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	page := make([]*domain.Submission, 0, end-start)
	for _, row := range matched[start:end] {
		page = append(page, s.project(row))
	}
	return page, total, nil
}

func (s *SubmissionStore) CountByStatus(ctx context.Context, kind domain.Kind, search string) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	if err := ctx.Err(); err != nil {
		return counts, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.rows {
		if s.matches(row, kind, search) {
			counts.Add(row.Status, 1)
		}
	}
	return counts, nil
}

func (s *SubmissionStore) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected domain.Status, decision domain.Decision) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	if row.Status != expected {
		return domain.ErrConflict
	}
	decision.Apply(row)
	return nil
}

func (s *SubmissionStore) CompareAndSetAssignee(ctx context.Context, id uuid.UUID, reviewerID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return "", domain.ErrSubmissionNotFound
	}
	if row.AssignedReviewerID != nil {
		return *row.AssignedReviewerID, nil
	}
	if row.Status != domain.StatusPending {
		return "", domain.ErrConflict
	}
	assigned := reviewerID
	row.AssignedReviewerID = &assigned
	row.UpdatedAt = time.Now().UTC()
	return assigned, nil
}

// matches applies the filter shared by List and CountByStatus.
func (s *SubmissionStore) matches(row *domain.Submission, kind domain.Kind, search string) bool {
	if kind != "" && row.Kind != kind {
		return false
	}
	term := strings.TrimSpace(search)
	if term == "" {
		return true
	}
	needle := foldCase(term)
	if strings.Contains(foldCase(row.Title()), needle) {
		return true
	}
	return strings.Contains(foldCase(s.submitterName(row.SubmitterID)), needle)
}

// foldCase builds a fresh Caser per call; Casers are stateful and must not
// be shared between goroutines.
func foldCase(v string) string {
	return cases.Fold().String(v)
}

func (s *SubmissionStore) submitterName(id string) string {
	if s.users == nil {
		return ""
	}
	if u, ok := s.users.lookup(id); ok {
		return u.DisplayName
	}
	return ""
}

func (s *SubmissionStore) project(row *domain.Submission) *domain.Submission {
	out := cloneSubmission(row)
	out.SubmitterName = s.submitterName(row.SubmitterID)
	return out
}

func cloneSubmission(sub *domain.Submission) *domain.Submission {
	out := *sub
	out.DecidedAt = clonePtr(sub.DecidedAt)
	out.DecidedBy = clonePtr(sub.DecidedBy)
	out.RejectionReason = clonePtr(sub.RejectionReason)
	out.AssignedReviewerID = clonePtr(sub.AssignedReviewerID)
	if sub.Artifact != nil {
		a := *sub.Artifact
		a.Images = append([]string(nil), sub.Artifact.Images...)
		a.Tags = append([]string(nil), sub.Artifact.Tags...)
		out.Artifact = &a
	}
	if sub.Application != nil {
		app := *sub.Application
		out.Application = &app
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
