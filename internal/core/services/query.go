package services

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

// ReviewQuery selects a page of the review queue. Empty Kind or Status
// means any; Page is 1-based.
type ReviewQuery struct {
	Kind   domain.Kind
	Status domain.Status
	Search string
	Page   int
	Size   int
}

// ReviewItem is one queue row as seen by a specific reviewer.
type ReviewItem struct {
	Submission           *domain.Submission
	CanReview            bool
	AssignedReviewerName string
}

// ReviewPage is a window over the filtered queue. Total counts the whole
// filter, not the page.
type ReviewPage struct {
	Items    []ReviewItem
	Total    int
	Page     int
	PageSize int
}

// QueryService serves the read side of the review queue. It reads the
// store on every call and holds no cached counts.
type QueryService struct {
	repo         ports.SubmissionRepository
	events       ports.ReviewEventRepository
	directory    ports.UserDirectory
	eligibility  *EligibilityResolver
	paging       Paging
	storeTimeout time.Duration
}

func NewQueryService(
	repo ports.SubmissionRepository,
	events ports.ReviewEventRepository,
	directory ports.UserDirectory,
	eligibility *EligibilityResolver,
	paging Paging,
	storeTimeout time.Duration,
) *QueryService {
	return &QueryService{
		repo:         repo,
		events:       events,
		directory:    directory,
		eligibility:  eligibility,
		paging:       paging,
		storeTimeout: storeTimeout,
	}
}

func (s *QueryService) ListByStatus(ctx context.Context, reviewer domain.Identity, q ReviewQuery) (*ReviewPage, error) {
	limit, offset, page := s.paging.window(q.Page, q.Size)

	storeCtx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	subs, total, err := s.repo.List(storeCtx, ports.SubmissionListFilter{
		Kind:   q.Kind,
		Status: q.Status,
		Search: strings.TrimSpace(q.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, translateTimeout(err)
	}

	names := s.reviewerNames(storeCtx, subs)

	items := make([]ReviewItem, 0, len(subs))
	for _, sub := range subs {
		item := ReviewItem{
			Submission: sub,
			CanReview:  s.eligibility.CanReview(reviewer, sub),
		}
		if sub.AssignedReviewerID != nil {
			item.AssignedReviewerName = names[*sub.AssignedReviewerID]
		}
		items = append(items, item)
	}

	return &ReviewPage{Items: items, Total: total, Page: page, PageSize: limit}, nil
}

// CountsByStatus counts submissions per status under the same filter the
// listing uses, so the tabs always agree with the rows.
func (s *QueryService) CountsByStatus(ctx context.Context, kind domain.Kind, search string) (domain.StatusCounts, error) {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	counts, err := s.repo.CountByStatus(ctx, kind, strings.TrimSpace(search))
	if err != nil {
		return domain.StatusCounts{}, translateTimeout(err)
	}
	return counts, nil
}

// RecentDecisions pages through the review log, newest first.
func (s *QueryService) RecentDecisions(ctx context.Context, kind domain.Kind, page, size int) ([]*domain.ReviewEvent, int, error) {
	limit, offset, _ := s.paging.window(page, size)

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	events, total, err := s.events.ListRecent(ctx, ports.EventListFilter{Kind: kind, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, translateTimeout(err)
	}
	return events, total, nil
}

// reviewerNames resolves assignee display names. A directory failure
// degrades to empty names rather than failing the listing.
func (s *QueryService) reviewerNames(ctx context.Context, subs []*domain.Submission) map[string]string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, sub := range subs {
		if sub.AssignedReviewerID == nil {
			continue
		}
		if _, ok := seen[*sub.AssignedReviewerID]; ok {
			continue
		}
		seen[*sub.AssignedReviewerID] = struct{}{}
		ids = append(ids, *sub.AssignedReviewerID)
	}

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	users, err := s.directory.GetUsers(ctx, ids)
	if err != nil {
		log.WithError(err).Warn("failed to resolve assigned reviewer names")
		return names
	}
	for id, u := range users {
		names[id] = u.DisplayName
	}
	return names
}
