package dao

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"merchant-notification-service/ddd/infrastructure/database/po"
	"merchant-notification-service/internal/resource"
)

// NotificationSQLDao stores notification documents as JSON rows.
type NotificationSQLDao struct {
	db *gorm.DB
}

func NewNotificationSQLDao() *NotificationSQLDao {
	return NewNotificationSQLDaoWithDB(resource.MainDB())
}

func NewNotificationSQLDaoWithDB(db *gorm.DB) *NotificationSQLDao {
	return &NotificationSQLDao{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when id does not resolve.
func (d *NotificationSQLDao) FindByID(ctx context.Context, id string) (*po.NotificationRow, error) {
	var row po.NotificationRow
	err := d.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *NotificationSQLDao) ListRecent(ctx context.Context, limit int) ([]po.NotificationRow, error) {
	var rows []po.NotificationRow
	err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateDocument rewrites the document if the row is still at revision and
// returns the number of affected rows.
func (d *NotificationSQLDao) UpdateDocument(ctx context.Context, id string, revision int64, document datatypes.JSON) (int64, error) {
	res := d.db.WithContext(ctx).
		Model(&po.NotificationRow{}).
		Where("id = ? AND revision = ?", id, revision).
		Updates(map[string]interface{}{
			"document": document,
			"revision": gorm.Expr("revision + ?", 1),
		})
	return res.RowsAffected, res.Error
}
