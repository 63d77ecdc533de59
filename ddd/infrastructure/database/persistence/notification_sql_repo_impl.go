package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"merchant-notification-service/ddd/domain/entity"
	drepo "merchant-notification-service/ddd/domain/repo"
	"merchant-notification-service/ddd/infrastructure/database/dao"
	"merchant-notification-service/ddd/infrastructure/database/po"
)

type notificationSQLRepositoryImpl struct {
	dao *dao.NotificationSQLDao
}

// NewSQLNotificationRepository builds a repository over JSON document rows.
func NewSQLNotificationRepository(d *dao.NotificationSQLDao) drepo.NotificationRepository {
	return &notificationSQLRepositoryImpl{dao: d}
}

func (r *notificationSQLRepositoryImpl) FindByID(ctx context.Context, id string) (*entity.Notification, error) {
	row, err := r.findRow(ctx, id)
	if err != nil {
		return nil, err
	}
	return rowToEntity(row), nil
}

func (r *notificationSQLRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	rows, err := r.dao.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	res := make([]*entity.Notification, 0, len(rows))
	for i := range rows {
		res = append(res, rowToEntity(&rows[i]))
	}
	sortNewestFirst(res)
	return res, nil
}

// SaveReadState patches the read-state fields into the stored document and
// writes it back only if the row revision is unchanged.
func (r *notificationSQLRepositoryImpl) SaveReadState(ctx context.Context, n *entity.Notification) error {
	row, err := r.findRow(ctx, n.ID)
	if err != nil {
		return err
	}
	if row.Revision != n.Revision {
		return drepo.ErrConflict
	}

	doc := decodeDocument(row.Document)
	doc[po.FieldReadBy] = po.EncodeReadBy(n)
	doc[po.FieldIsRead] = po.EncodeReceipts(n)
	delete(doc, po.FieldLegacyReadBy)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", n.ID, err)
	}

	affected, err := r.dao.UpdateDocument(ctx, n.ID, n.Revision, datatypes.JSON(body))
	if err != nil {
		return fmt.Errorf("save read state %s: %w", n.ID, err)
	}
	if affected == 0 {
		return drepo.ErrConflict
	}
	n.Revision++
	return nil
}

func (r *notificationSQLRepositoryImpl) findRow(ctx context.Context, id string) (*po.NotificationRow, error) {
	row, err := r.dao.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, drepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find notification %s: %w", id, err)
	}
	return row, nil
}

// decodeDocument tolerates empty or malformed JSON by starting from an empty document.
func decodeDocument(raw datatypes.JSON) map[string]interface{} {
	doc := map[string]interface{}{}
	if len(raw) == 0 {
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return map[string]interface{}{}
	}
	return doc
}

func rowToEntity(row *po.NotificationRow) *entity.Notification {
	n := entity.FromDocument(decodeDocument(row.Document))
	n.ID = row.ID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = row.CreatedAt.UTC()
	}
	n.Revision = row.Revision
	return &n
}
