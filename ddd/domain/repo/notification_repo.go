package repo

import (
	"context"
	"errors"

	"merchant-notification-service/ddd/domain/entity"
)

var (
	// ErrNotFound indicates the notification id does not resolve.
	ErrNotFound = errors.New("notification not found")
	// ErrConflict indicates the read state changed since it was loaded.
	ErrConflict = errors.New("notification read state conflict")
)

// NotificationRepository 通知仓储接口，隐藏具体持久化实现。
type NotificationRepository interface {
	// FindByID loads one normalized notification including its Revision.
	FindByID(ctx context.Context, id string) (*entity.Notification, error)
	// ListRecent loads up to limit notifications, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.Notification, error)
	// SaveReadState persists ReadBy and ReadReceipts of n in one write,
	// provided the stored revision still equals n.Revision. It returns
	// ErrConflict otherwise and ErrNotFound if the document is gone.
	SaveReadState(ctx context.Context, n *entity.Notification) error
}

// CandidateCache holds the merchant-independent recent window.
type CandidateCache interface {
	Get(ctx context.Context, limit int) ([]*entity.Notification, bool)
	Set(ctx context.Context, limit int, list []*entity.Notification)
	Invalidate(ctx context.Context)
}
