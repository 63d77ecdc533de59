package po

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"

	"merchant-notification-service/ddd/domain/entity"
)

// Canonical field names written back by the read-state mutation.
const (
	FieldID              = "_id"
	FieldCreatedAt       = "createdAt"
	FieldLegacyCreatedAt = "created_at"
	FieldReadBy          = "readBy"
	FieldLegacyReadBy    = "read_by"
	FieldIsRead          = "is_read"
	FieldReadRevision    = "readRevision"

	// FieldSortAt is computed by the recency pipeline and never stored.
	FieldSortAt = "_sortAt"
)

// NotificationRow 持久化对象，对应 merchant_notifications 表。
// The heterogeneous notification document is kept verbatim in Document.
type NotificationRow struct {
	ID        string         `gorm:"column:id;primaryKey;size:64"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
	Document  datatypes.JSON `gorm:"column:document"`
	Revision  int64          `gorm:"column:revision;not null;default:0"`
}

func (NotificationRow) TableName() string {
	return "merchant_notifications"
}

// PlainValue converts driver-specific BSON containers into plain Go maps,
// slices and times so the domain normalizer sees one vocabulary of shapes.
// Object ids are kept; they expose Hex and Timestamp.
func PlainValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.M:
		return PlainMap(t)
	case map[string]interface{}:
		return PlainMap(t)
	case primitive.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = PlainValue(e.Value)
		}
		return m
	case primitive.A:
		return plainSlice(t)
	case []interface{}:
		return plainSlice(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}

// PlainMap applies PlainValue to every entry of m.
func PlainMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = PlainValue(v)
	}
	return out
}

func plainSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = PlainValue(v)
	}
	return out
}

// Revision reads the read-state revision stored in a document.
func Revision(doc map[string]interface{}) int64 {
	switch t := doc[FieldReadRevision].(type) {
	case int32:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	}
	return 0
}

// EncodeReadBy returns the readBy list as stored.
func EncodeReadBy(n *entity.Notification) []interface{} {
	out := make([]interface{}, len(n.ReadBy))
	copy(out, n.ReadBy)
	return out
}

// EncodeReceipts returns the legacy is_read list as stored, keeping fields
// this service does not interpret.
func EncodeReceipts(n *entity.Notification) []interface{} {
	out := make([]interface{}, 0, len(n.ReadReceipts))
	for _, r := range n.ReadReceipts {
		m := make(map[string]interface{}, len(r.Extra)+4)
		for k, v := range r.Extra {
			m[k] = v
		}
		m["target_id"] = r.TargetID
		if r.TargetType != "" {
			m["target_type"] = r.TargetType
		}
		m["read"] = r.Read
		if r.ReadAt != nil {
			m["read_at"] = r.ReadAt.UTC()
		}
		out = append(out, m)
	}
	return out
}
