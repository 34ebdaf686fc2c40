package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/ports/output"
)

func newArtifact(title, submitter string, at time.Time) *domain.Submission {
	return &domain.Submission{
		ID:          uuid.New(),
		Kind:        domain.KindArtifact,
		Status:      domain.StatusPending,
		SubmitterID: submitter,
		SubmittedAt: at,
		UpdatedAt:   at,
		Artifact:    &domain.ArtifactPayload{Title: title, Images: []string{"a.jpg"}},
	}
}

func TestSubmissionStore_CompareAndSetStatus(t *testing.T) {
	store := NewSubmissionStore(nil)
	ctx := context.Background()
	sub := newArtifact("Bronze mirror", "cur-1", time.Now())
	require.NoError(t, store.Create(ctx, sub))

	decision := domain.Decision{Status: domain.StatusAccepted, DecidedAt: time.Now(), DecidedBy: "prof-1"}
	require.NoError(t, store.CompareAndSetStatus(ctx, sub.ID, domain.StatusPending, decision))

	err := store.CompareAndSetStatus(ctx, sub.ID, domain.StatusPending, domain.Decision{Status: domain.StatusRejected})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = store.CompareAndSetStatus(ctx, uuid.New(), domain.StatusPending, decision)
	assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)

	got, err := store.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status)
	assert.Equal(t, "prof-1", *got.DecidedBy)
}

func TestSubmissionStore_CompareAndSetStatusRace(t *testing.T) {
	store := NewSubmissionStore(nil)
	ctx := context.Background()
	sub := newArtifact("Bronze mirror", "cur-1", time.Now())
	require.NoError(t, store.Create(ctx, sub))

	const racers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.CompareAndSetStatus(ctx, sub.ID, domain.StatusPending, domain.Decision{Status: domain.StatusAccepted, DecidedAt: time.Now()})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestSubmissionStore_CompareAndSetAssignee(t *testing.T) {
	store := NewSubmissionStore(nil)
	ctx := context.Background()
	sub := newArtifact("Jade seal", "cur-1", time.Now())
	require.NoError(t, store.Create(ctx, sub))

	got, err := store.CompareAndSetAssignee(ctx, sub.ID, "prof-1")
	require.NoError(t, err)
	assert.Equal(t, "prof-1", got)

	got, err = store.CompareAndSetAssignee(ctx, sub.ID, "prof-2")
	require.NoError(t, err)
	assert.Equal(t, "prof-1", got)

	decided := newArtifact("Ink scroll", "cur-1", time.Now())
	require.NoError(t, store.Create(ctx, decided))
	require.NoError(t, store.CompareAndSetStatus(ctx, decided.ID, domain.StatusPending, domain.Decision{Status: domain.StatusAccepted, DecidedAt: time.Now()}))

	_, err = store.CompareAndSetAssignee(ctx, decided.ID, "prof-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSubmissionStore_ListAndCount(t *testing.T) {
	users := NewDirectory(domain.User{ID: "cur-1", DisplayName: "Đặng Curator"})
	store := NewSubmissionStore(users)
	ctx := context.Background()
	base := time.Now()

	titles := []string{"Bronze mirror", "BRONZE bell", "Jade seal"}
	for i, title := range titles {
		require.NoError(t, store.Create(ctx, newArtifact(title, "cur-1", base.Add(time.Duration(i)*time.Minute))))
	}

	items, total, err := store.List(ctx, ports.SubmissionListFilter{Search: "bronze", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "BRONZE bell", items[0].Title())
	assert.Equal(t, "Đặng Curator", items[0].SubmitterName)

	_, total, err = store.List(ctx, ports.SubmissionListFilter{Search: "đặng"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	counts, err := store.CountByStatus(ctx, domain.KindArtifact, "bronze")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Pending: 2}, counts)

	items, total, err = store.List(ctx, ports.SubmissionListFilter{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, items)
}

func TestSubmissionStore_ReturnsCopies(t *testing.T) {
	store := NewSubmissionStore(nil)
	ctx := context.Background()
	sub := newArtifact("Bronze mirror", "cur-1", time.Now())
	require.NoError(t, store.Create(ctx, sub))

	got, err := store.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	got.Status = domain.StatusRejected
	got.Artifact.Images[0] = "changed.jpg"

	again, err := store.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
	assert.Equal(t, "a.jpg", again.Artifact.Images[0])
}

func TestSubmissionStore_OnePendingApplicationPerSubmitter(t *testing.T) {
	store := NewSubmissionStore(nil)
	ctx := context.Background()
	app := func() *domain.Submission {
		return &domain.Submission{
			ID:          uuid.New(),
			Kind:        domain.KindCuratorApplication,
			Status:      domain.StatusPending,
			SubmitterID: "vis-1",
			Application: &domain.CuratorApplicationPayload{FullName: "Vis"},
		}
	}

	first := app()
	require.NoError(t, store.Create(ctx, first))
	assert.ErrorIs(t, store.Create(ctx, app()), domain.ErrConflict)

	require.NoError(t, store.CompareAndSetStatus(ctx, first.ID, domain.StatusPending, domain.Decision{Status: domain.StatusRejected, DecidedAt: time.Now()}))
	assert.NoError(t, store.Create(ctx, app()))
}

func TestNotificationStore_CreateIfAbsent(t *testing.T) {
	store := NewNotificationStore()
	ctx := context.Background()
	related := uuid.New()

	n := &domain.Notification{ID: uuid.New(), RecipientID: "cur-1", RelatedID: related, DedupeKey: "k", CreatedAt: time.Now()}
	stored, created, err := store.CreateIfAbsent(ctx, n)
	require.NoError(t, err)
	assert.True(t, created)

	dup := &domain.Notification{ID: uuid.New(), RecipientID: "cur-1", RelatedID: related, DedupeKey: "k", CreatedAt: time.Now()}
	again, created, err := store.CreateIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, again.ID)

	other := &domain.Notification{ID: uuid.New(), RecipientID: "cur-2", DedupeKey: "k", CreatedAt: time.Now()}
	_, created, err = store.CreateIfAbsent(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)

	unread, err := store.CountUnread(ctx, "cur-1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestNotificationStore_MarkRead(t *testing.T) {
	store := NewNotificationStore()
	ctx := context.Background()
	now := time.Now()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		_, _, err := store.CreateIfAbsent(ctx, &domain.Notification{ID: id, RecipientID: "cur-1", DedupeKey: id.String(), CreatedAt: now.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, store.MarkRead(ctx, "cur-2", ids[0], now), domain.ErrNotificationNotFound)
	require.NoError(t, store.MarkRead(ctx, "cur-1", ids[0], now))

	unread, _, err := store.List(ctx, ports.NotificationListFilter{RecipientID: "cur-1", UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)
	assert.Equal(t, ids[2], unread[0].ID)

	updated, err := store.MarkAllRead(ctx, "cur-1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	count, err := store.CountUnread(ctx, "cur-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEventStore_OneEventPerSubmission(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	subID := uuid.New()

	e := &domain.ReviewEvent{ID: uuid.New(), SubmissionID: subID, Kind: domain.KindArtifact, ToStatus: domain.StatusAccepted, OccurredAt: time.Now()}
	require.NoError(t, store.Append(ctx, e))
	assert.ErrorIs(t, store.Append(ctx, &domain.ReviewEvent{ID: uuid.New(), SubmissionID: subID}), domain.ErrReviewEventRecorded)

	events, total, err := store.ListRecent(ctx, ports.EventListFilter{Kind: domain.KindCuratorApplication})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, events)

	events, err = store.ListBySubmission(ctx, subID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDirectory_GrantRole(t *testing.T) {
	dir := NewDirectory(domain.User{ID: "vis-1", Role: domain.RoleVisitor}, domain.User{ID: "prof-1", Role: domain.RoleProfessor})
	ctx := context.Background()

	require.NoError(t, dir.GrantRole(ctx, "vis-1", domain.RoleCurator))
	assert.ErrorIs(t, dir.GrantRole(ctx, "nobody", domain.RoleCurator), domain.ErrUserNotFound)

	curators, err := dir.ListByRole(ctx, domain.RoleCurator)
	require.NoError(t, err)
	require.Len(t, curators, 1)
	assert.Equal(t, "vis-1", curators[0].ID)

	users, err := dir.GetUsers(ctx, []string{"vis-1", "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestDirectory_EnsureKeepsExisting(t *testing.T) {
	dir := NewDirectory(domain.User{ID: "vis-1", DisplayName: "Vis", Role: domain.RoleCurator})
	ctx := context.Background()

	dir.Ensure(domain.User{ID: "vis-1", DisplayName: "Other", Role: domain.RoleVisitor})
	dir.Ensure(domain.User{ID: "prof-1", DisplayName: "Prof", Role: domain.RoleProfessor})

	u, err := dir.GetUser(ctx, "vis-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCurator, u.Role)
	assert.Equal(t, "Vis", u.DisplayName)

	profs, err := dir.ListByRole(ctx, domain.RoleProfessor)
	require.NoError(t, err)
	assert.Len(t, profs, 1)
}
