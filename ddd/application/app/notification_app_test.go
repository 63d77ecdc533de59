package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-notification-service/ddd/application/cqe"
	"merchant-notification-service/ddd/domain/entity"
	drepo "merchant-notification-service/ddd/domain/repo"
	"merchant-notification-service/ddd/domain/service"
	"merchant-notification-service/pkg/errno"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// memoryRepo is an in-memory store honoring the revision guard.
type memoryRepo struct {
	mu        sync.Mutex
	docs      map[string]*entity.Notification
	order     []string
	listErr   error
	findErr   error
	saveErr   error
	conflicts int // forced conflicts before saves succeed
	saves     int
	lists     int
}

func newMemoryRepo(ns ...*entity.Notification) *memoryRepo {
	r := &memoryRepo{docs: map[string]*entity.Notification{}}
	for _, n := range ns {
		r.docs[n.ID] = clone(n)
		r.order = append(r.order, n.ID)
	}
	return r
}

func clone(n *entity.Notification) *entity.Notification {
	c := *n
	c.ReadBy = append([]interface{}(nil), n.ReadBy...)
	c.ReadReceipts = append([]entity.ReadReceipt(nil), n.ReadReceipts...)
	return &c
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	n, ok := r.docs[id]
	if !ok {
		return nil, drepo.ErrNotFound
	}
	return clone(n), nil
}

func (r *memoryRepo) ListRecent(_ context.Context, limit int) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.Notification
	for _, id := range r.order {
		if len(out) == limit {
			break
		}
		out = append(out, clone(r.docs[id]))
	}
	return out, nil
}

func (r *memoryRepo) SaveReadState(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.conflicts > 0 {
		r.conflicts--
		r.docs[n.ID].Revision++
		return drepo.ErrConflict
	}
	stored, ok := r.docs[n.ID]
	if !ok {
		return drepo.ErrNotFound
	}
	if stored.Revision != n.Revision {
		return drepo.ErrConflict
	}
	stored.ReadBy = append([]interface{}(nil), n.ReadBy...)
	stored.ReadReceipts = append([]entity.ReadReceipt(nil), n.ReadReceipts...)
	stored.Revision++
	n.Revision++
	r.saves++
	return nil
}

func (r *memoryRepo) get(id string) *entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.docs[id])
}

// memoryCache counts invalidations.
type memoryCache struct {
	mu          sync.Mutex
	list        []*entity.Notification
	ok          bool
	invalidated int
}

func (c *memoryCache) Get(context.Context, int) ([]*entity.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list, c.ok
}

func (c *memoryCache) Set(_ context.Context, _ int, list []*entity.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list, c.ok = list, true
}

func (c *memoryCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list, c.ok = nil, false
	c.invalidated++
}

func newTestApp(repo drepo.NotificationRepository, c drepo.CandidateCache) NotificationApp {
	return NewNotificationApp(repo, c, Options{Now: func() time.Time { return fixedNow }})
}

func broadcast(id string, created time.Time) *entity.Notification {
	return &entity.Notification{
		ID:        id,
		Title:     "Title " + id,
		Type:      entity.TypeInfo,
		Priority:  entity.PriorityMedium,
		Status:    entity.StatusSent,
		Audience:  entity.AudienceAll,
		Icon:      "info",
		CreatedAt: created,
	}
}

func list(t *testing.T, a NotificationApp, merchant string) []string {
	t.Helper()
	resp, err := a.ListNotifications(context.Background(), &cqe.ListNotificationsReq{MerchantID: merchant})
	require.NoError(t, err)
	ids := make([]string, 0, len(resp.Notifications))
	for _, n := range resp.Notifications {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestListNotifications_ScenarioA(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow.Add(-2*time.Hour)))
	a := newTestApp(repo, nil)
	ctx := context.Background()

	resp, err := a.ListNotifications(ctx, &cqe.ListNotificationsReq{MerchantID: "m1"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, 1, resp.UnreadCount)

	item := resp.Notifications[0]
	assert.Equal(t, "n1", item.ID)
	assert.Equal(t, "info", item.Type)
	assert.Equal(t, "medium", item.Priority)
	assert.Equal(t, "sent", item.Status)
	assert.Equal(t, "2026-10-01T10:00:00Z", item.CreatedAt)
	assert.Nil(t, item.ExpiresAt)
	assert.Equal(t, "2 hours ago", item.TimeAgo)
	assert.False(t, item.IsRead)

	require.NoError(t, a.MarkRead(ctx, &cqe.MarkReadReq{NotificationID: "n1", MerchantID: "m1"}))

	resp, err = a.ListNotifications(ctx, &cqe.ListNotificationsReq{MerchantID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.UnreadCount)
	assert.True(t, resp.Notifications[0].IsRead)
}

func TestListNotifications_TargetingAndStatus(t *testing.T) {
	targeted := broadcast("targeted", fixedNow.Add(-time.Minute))
	targeted.Audience = entity.AudienceMerchant
	targeted.TargetIDs = []interface{}{"m1", "M2"}

	specificEmpty := broadcast("specific", fixedNow.Add(-2*time.Minute))
	specificEmpty.Audience = entity.AudienceSpecific

	archived := broadcast("archived", fixedNow.Add(-3*time.Minute))
	archived.Status = entity.StatusArchived

	expired := broadcast("expired", fixedNow.Add(-4*time.Minute))
	past := fixedNow.Add(-time.Second)
	expired.ExpiresAt = &past

	future := fixedNow.Add(time.Hour)
	expiring := broadcast("expiring", fixedNow.Add(-5*time.Minute))
	expiring.ExpiresAt = &future

	a := newTestApp(newMemoryRepo(targeted, specificEmpty, archived, expired, expiring), nil)

	assert.Equal(t, []string{"targeted", "expiring"}, list(t, a, "m1"))
	assert.Equal(t, []string{"targeted", "expiring"}, list(t, a, "m2"))
	assert.Equal(t, []string{"expiring"}, list(t, a, "m3"))

	resp, err := a.ListNotifications(context.Background(), &cqe.ListNotificationsReq{MerchantID: "m3"})
	require.NoError(t, err)
	require.NotNil(t, resp.Notifications[0].ExpiresAt)
	assert.Equal(t, "2026-10-01T13:00:00Z", *resp.Notifications[0].ExpiresAt)
}

func TestListNotifications_LegacyReceiptCountsAsRead(t *testing.T) {
	n := broadcast("n1", fixedNow)
	n.ReadReceipts = []entity.ReadReceipt{{TargetID: "m1", Read: true}}
	a := newTestApp(newMemoryRepo(n), nil)

	resp, err := a.ListNotifications(context.Background(), &cqe.ListNotificationsReq{MerchantID: "M1"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.UnreadCount)
	assert.True(t, resp.Notifications[0].IsRead)
}

func TestListNotifications_Validation(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	a := newTestApp(repo, nil)

	_, err := a.ListNotifications(context.Background(), &cqe.ListNotificationsReq{MerchantID: "  "})
	code, _ := errno.Resolve(err)
	assert.Equal(t, errno.ErrParameterInvalid.Code, code)
	assert.Zero(t, repo.lists)
}

func TestListNotifications_StoreFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.listErr = errors.New("connection reset")
	a := newTestApp(repo, nil)

	_, err := a.ListNotifications(context.Background(), &cqe.ListNotificationsReq{MerchantID: "m1"})
	code, _ := errno.Resolve(err)
	assert.Equal(t, errno.ErrDatabase.Code, code)
}

func TestListNotifications_UsesCache(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	c := &memoryCache{}
	a := newTestApp(repo, c)

	list(t, a, "m1")
	list(t, a, "m2")
	assert.Equal(t, 1, repo.lists)

	require.NoError(t, a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "n1", MerchantID: "m1"}))
	assert.Equal(t, 1, c.invalidated)
	list(t, a, "m1")
	assert.Equal(t, 2, repo.lists)
}

func TestMarkRead_Idempotent(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	a := newTestApp(repo, nil)
	ctx := context.Background()
	req := &cqe.MarkReadReq{NotificationID: "n1", MerchantID: "Abc123"}

	require.NoError(t, a.MarkRead(ctx, req))
	once := repo.get("n1")
	require.NoError(t, a.MarkRead(ctx, req))
	twice := repo.get("n1")

	assert.Equal(t, []interface{}{"Abc123"}, twice.ReadBy)
	assert.Len(t, once.ReadReceipts, 1)
	assert.Len(t, twice.ReadReceipts, 1)
	assert.Equal(t, "Abc123", twice.ReadReceipts[0].TargetID)
	assert.Equal(t, entity.TargetTypeMerchant, twice.ReadReceipts[0].TargetType)
	assert.True(t, service.IsRead(twice, entity.Variants("abc123")))
}

func TestMarkRead_WrappedIdentity(t *testing.T) {
	n := broadcast("n1", fixedNow)
	n.ReadReceipts = []entity.ReadReceipt{{TargetID: "m1", Read: false}}
	repo := newMemoryRepo(n)
	a := newTestApp(repo, nil)

	req := &cqe.MarkReadReq{NotificationID: "n1", MerchantID: map[string]interface{}{"_id": "M1"}}
	require.NoError(t, a.MarkRead(context.Background(), req))

	stored := repo.get("n1")
	assert.Equal(t, []interface{}{"M1"}, stored.ReadBy)
	require.Len(t, stored.ReadReceipts, 1)
	assert.True(t, stored.ReadReceipts[0].Read)
	require.NotNil(t, stored.ReadReceipts[0].ReadAt)
	assert.Equal(t, fixedNow, *stored.ReadReceipts[0].ReadAt)
}

func TestMarkRead_NotFound(t *testing.T) {
	repo := newMemoryRepo()
	a := newTestApp(repo, nil)

	err := a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "missing", MerchantID: "m1"})
	assert.ErrorIs(t, err, errno.ErrNotFound)
}

func TestMarkRead_Validation(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	repo.findErr = errors.New("must not be called")
	a := newTestApp(repo, nil)

	err := a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "n1"})
	code, _ := errno.Resolve(err)
	assert.Equal(t, errno.ErrParameterInvalid.Code, code)
}

func TestMarkRead_RetriesConflicts(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	repo.conflicts = 2
	a := newTestApp(repo, nil)

	require.NoError(t, a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "n1", MerchantID: "m1"}))
	assert.Equal(t, []interface{}{"m1"}, repo.get("n1").ReadBy)
}

func TestMarkRead_ConflictExhausted(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	repo.conflicts = 10
	c := &memoryCache{}
	a := NewNotificationApp(repo, c, Options{MaxAttempts: 3, Now: func() time.Time { return fixedNow }})

	err := a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "n1", MerchantID: "m1"})
	code, _ := errno.Resolve(err)
	assert.Equal(t, errno.ErrConflict.Code, code)
	assert.Equal(t, 7, repo.conflicts)
	assert.Empty(t, repo.get("n1").ReadBy)
	assert.Zero(t, c.invalidated)
}

func TestMarkRead_StoreFailure(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	repo.saveErr = errors.New("write concern timeout")
	a := newTestApp(repo, nil)

	err := a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "n1", MerchantID: "m1"})
	code, _ := errno.Resolve(err)
	assert.Equal(t, errno.ErrDatabase.Code, code)
	assert.Empty(t, repo.get("n1").ReadBy)
}

func TestMarkRead_ConcurrentCallersNeverDuplicate(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	a := NewNotificationApp(repo, nil, Options{MaxAttempts: 50, Now: func() time.Time { return fixedNow }})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "n1", MerchantID: "m1"})
		}()
	}
	wg.Wait()

	stored := repo.get("n1")
	assert.Equal(t, []interface{}{"m1"}, stored.ReadBy)
	assert.Len(t, stored.ReadReceipts, 1)
}

func TestMarkRead_ConcurrentMerchantsAllRecorded(t *testing.T) {
	repo := newMemoryRepo(broadcast("n1", fixedNow))
	a := NewNotificationApp(repo, nil, Options{MaxAttempts: 50, Now: func() time.Time { return fixedNow }})
	merchants := []string{"m1", "m2", "m3", "m4"}

	var wg sync.WaitGroup
	for _, m := range merchants {
		wg.Add(1)
		go func(m string) {
			defer wg.Done()
			assert.NoError(t, a.MarkRead(context.Background(), &cqe.MarkReadReq{NotificationID: "n1", MerchantID: m}))
		}(m)
	}
	wg.Wait()

	stored := repo.get("n1")
	assert.ElementsMatch(t, []interface{}{"m1", "m2", "m3", "m4"}, stored.ReadBy)
	assert.Len(t, stored.ReadReceipts, 4)
}
