package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"merchant-notification-service/ddd/domain/entity"
	drepo "merchant-notification-service/ddd/domain/repo"
	"merchant-notification-service/ddd/infrastructure/database/dao"
	"merchant-notification-service/ddd/infrastructure/database/po"
	"merchant-notification-service/pkg/config"
)

// NewNotificationRepository returns the repository for the configured store driver.
func NewNotificationRepository() drepo.NotificationRepository {
	cfg := config.GetGlobalConfig()
	if cfg.Store.Driver == config.StoreDriverMySQL {
		return NewSQLNotificationRepository(dao.NewNotificationSQLDao())
	}
	return NewMongoNotificationRepository(dao.NewNotificationDao(cfg.Mongo.OperationTimeout))
}

type notificationRepositoryImpl struct {
	dao *dao.NotificationDao
}

// NewMongoNotificationRepository builds a repository over a Mongo DAO.
func NewMongoNotificationRepository(d *dao.NotificationDao) drepo.NotificationRepository {
	return &notificationRepositoryImpl{dao: d}
}

func (r *notificationRepositoryImpl) FindByID(ctx context.Context, id string) (*entity.Notification, error) {
	doc, err := r.dao.FindByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, drepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find notification %s: %w", id, err)
	}
	return documentToEntity(doc), nil
}

func (r *notificationRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	docs, err := r.dao.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	res := make([]*entity.Notification, 0, len(docs))
	for _, doc := range docs {
		res = append(res, documentToEntity(doc))
	}
	sortNewestFirst(res)
	return res, nil
}

func (r *notificationRepositoryImpl) SaveReadState(ctx context.Context, n *entity.Notification) error {
	matched, err := r.dao.UpdateReadState(ctx, n.ID, n.StoreKey, n.Revision, po.EncodeReadBy(n), po.EncodeReceipts(n))
	if err != nil {
		return fmt.Errorf("save read state %s: %w", n.ID, err)
	}
	if matched == 0 {
		return drepo.ErrConflict
	}
	n.Revision++
	return nil
}

func documentToEntity(doc bson.M) *entity.Notification {
	plain := po.PlainMap(doc)
	n := entity.FromDocument(plain)
	n.Revision = po.Revision(plain)
	return &n
}

// sortNewestFirst orders by normalized creation time, which also covers
// epoch and id-derived timestamps the store cannot sort on.
func sortNewestFirst(list []*entity.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
