package app

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"

	"merchant-notification-service/ddd/application/cqe"
	"merchant-notification-service/ddd/application/dto"
	"merchant-notification-service/ddd/domain/entity"
	drepo "merchant-notification-service/ddd/domain/repo"
	"merchant-notification-service/ddd/domain/service"
	"merchant-notification-service/ddd/infrastructure/cache"
	"merchant-notification-service/ddd/infrastructure/database/persistence"
	"merchant-notification-service/internal/resource"
	"merchant-notification-service/pkg/assert"
	"merchant-notification-service/pkg/config"
	"merchant-notification-service/pkg/errno"
	"merchant-notification-service/pkg/logger"
	"merchant-notification-service/pkg/metrics"
)

// NotificationApp 应用服务接口，编排商户通知相关用例。
type NotificationApp interface {
	ListNotifications(ctx context.Context, req *cqe.ListNotificationsReq) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, req *cqe.MarkReadReq) error
}

// Options tunes a NotificationApp. Zero values fall back to the defaults.
type Options struct {
	ListLimit   int
	MaxAttempts int
	Now         func() time.Time
}

type notificationAppImpl struct {
	repo        drepo.NotificationRepository
	cache       drepo.CandidateCache
	listLimit   int
	maxAttempts int
	now         func() time.Time
}

// DefaultNotificationApp 返回默认的应用服务实现。
func DefaultNotificationApp() NotificationApp {
	cfg := config.GetGlobalConfig()
	candidates := cache.NewNoopCandidateCache()
	if rdb := resource.RedisClient(); cfg.Cache.Enabled && rdb != nil {
		candidates = cache.NewRedisCandidateCache(rdb, cfg.Cache.Key, cfg.Cache.TTL)
	}
	return NewNotificationApp(persistence.NewNotificationRepository(), candidates, Options{
		ListLimit:   cfg.Notification.ListLimit,
		MaxAttempts: cfg.Notification.MarkReadMaxAttempts,
	})
}

// NewNotificationApp builds the application service over repo. A nil cache
// disables candidate caching.
func NewNotificationApp(repo drepo.NotificationRepository, candidates drepo.CandidateCache, opts Options) NotificationApp {
	assert.NotNil(repo, "notification repository is nil")
	if candidates == nil {
		candidates = cache.NewNoopCandidateCache()
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = 200
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &notificationAppImpl{
		repo:        repo,
		cache:       candidates,
		listLimit:   opts.ListLimit,
		maxAttempts: opts.MaxAttempts,
		now:         opts.Now,
	}
}

func (a *notificationAppImpl) ListNotifications(ctx context.Context, req *cqe.ListNotificationsReq) (resp *dto.ListNotificationsResponse, err error) {
	defer func(start time.Time) { metrics.Observe(metrics.OperationList, start, err) }(time.Now())

	if !req.Validate() {
		return nil, errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "merchantId")
	}
	requester := req.Requester()

	candidates, err := a.loadCandidates(ctx)
	if err != nil {
		logger.WithContext(ctx).Errorf("list notifications failed merchant=%s err=%v", req.MerchantID, err)
		return nil, errno.NewSimpleBizError(errno.ErrDatabase, err)
	}

	now := a.now().UTC()
	resp = &dto.ListNotificationsResponse{
		Success:       true,
		Notifications: make([]dto.NotificationDto, 0, len(candidates)),
	}
	for _, n := range candidates {
		if !service.IsVisible(n, now, requester, n.TargetVariants()) {
			continue
		}
		item := project(n, now, service.IsRead(n, requester))
		if !item.IsRead {
			resp.UnreadCount++
		}
		resp.Notifications = append(resp.Notifications, item)
	}
	return resp, nil
}

// loadCandidates returns the recent window, preferring the shared cache.
func (a *notificationAppImpl) loadCandidates(ctx context.Context) ([]*entity.Notification, error) {
	if list, ok := a.cache.Get(ctx, a.listLimit); ok {
		return list, nil
	}
	list, err := a.repo.ListRecent(ctx, a.listLimit)
	if err != nil {
		return nil, err
	}
	a.cache.Set(ctx, a.listLimit, list)
	return list, nil
}

// MarkRead records the merchant as a reader of the notification. The whole
// load-apply-save cycle is retried when the stored read state moved on
// between load and save.
func (a *notificationAppImpl) MarkRead(ctx context.Context, req *cqe.MarkReadReq) (err error) {
	defer func(start time.Time) { metrics.Observe(metrics.OperationMarkRead, start, err) }(time.Now())

	if !req.Validate() {
		return errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "notificationId/merchantId")
	}
	id, variants := req.ID(), req.Requester()

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		n, err := a.repo.FindByID(ctx, id)
		if err != nil {
			return a.storeError(ctx, id, err)
		}

		change := service.ApplyRead(n, variants, a.now())
		err = a.repo.SaveReadState(ctx, n)
		if err == nil {
			a.cache.Invalidate(ctx)
			logger.WithContext(ctx).Debugf("notification marked read id=%s merchant=%s attempt=%d change=%+v",
				id, variants.Primary(), attempt, change)
			return nil
		}
		if !errors.Is(err, drepo.ErrConflict) {
			return a.storeError(ctx, id, err)
		}
		metrics.ReadConflicts.Inc()
		logger.WithContext(ctx).Infof("mark read conflict, retrying id=%s attempt=%d", id, attempt)
	}
	return errno.NewSimpleBizError(errno.ErrConflict, drepo.ErrConflict)
}

func (a *notificationAppImpl) storeError(ctx context.Context, id string, err error) error {
	if errors.Is(err, drepo.ErrNotFound) {
		return errno.ErrNotFound
	}
	logger.WithContext(ctx).Errorf("mark read failed id=%s err=%v", id, err)
	return errno.NewSimpleBizError(errno.ErrDatabase, err)
}

func project(n *entity.Notification, now time.Time, read bool) dto.NotificationDto {
	item := dto.NotificationDto{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Priority:  string(n.Priority),
		Status:    string(n.Status),
		Link:      n.Link,
		Icon:      n.Icon,
		CreatedAt: formatTime(n.CreatedAt),
		IsRead:    read,
	}
	if !n.CreatedAt.IsZero() {
		item.TimeAgo = humanize.RelTime(n.CreatedAt, now, "ago", "from now")
	}
	if n.ExpiresAt != nil {
		s := formatTime(*n.ExpiresAt)
		item.ExpiresAt = &s
	}
	return item
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
