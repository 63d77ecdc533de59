package dao

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"merchant-notification-service/ddd/infrastructure/database/po"
	"merchant-notification-service/internal/resource"
)

// NotificationDao reads and writes raw notification documents in MongoDB.
type NotificationDao struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewNotificationDao(timeout time.Duration) *NotificationDao {
	return NewNotificationDaoWithCollection(resource.NotificationCollection(), timeout)
}

func NewNotificationDaoWithCollection(coll *mongo.Collection, timeout time.Duration) *NotificationDao {
	return &NotificationDao{coll: coll, timeout: timeout}
}

func (d *NotificationDao) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}

// idFilter matches a document whose _id is id verbatim, its trimmed form,
// the object id it spells, or the number it spells. Mongo compares numbers
// by value across int32, int64 and double.
func idFilter(id string) bson.M {
	forms := bson.A{id}
	trimmed := strings.TrimSpace(id)
	if trimmed != id && trimmed != "" {
		forms = append(forms, trimmed)
	}
	if oid, err := primitive.ObjectIDFromHex(trimmed); err == nil {
		forms = append(forms, oid)
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		forms = append(forms, i)
	} else if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		forms = append(forms, f)
	}
	if len(forms) == 1 {
		return bson.M{po.FieldID: id}
	}
	return bson.M{po.FieldID: bson.M{"$in": forms}}
}

// keyFilter addresses a document by the _id exactly as it was loaded,
// falling back to idFilter when the key is unknown.
func keyFilter(id string, key interface{}) bson.M {
	if key == nil {
		return idFilter(id)
	}
	return bson.M{po.FieldID: key}
}

// FindByID returns mongo.ErrNoDocuments when id does not resolve.
func (d *NotificationDao) FindByID(ctx context.Context, id string) (bson.M, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var doc bson.M
	if err := d.coll.FindOne(ctx, idFilter(id)).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// recentPipeline sorts on whichever creation-time spelling a document uses,
// converted to a date, so legacy documents compete for the window.
func recentPipeline(limit int) mongo.Pipeline {
	sortAt := bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + po.FieldCreatedAt, "$" + po.FieldLegacyCreatedAt}}}},
		{Key: "to", Value: "date"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{{Key: po.FieldSortAt, Value: sortAt}}}},
		{{Key: "$sort", Value: bson.D{{Key: po.FieldSortAt, Value: -1}, {Key: po.FieldID, Value: -1}}}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$project", Value: bson.D{{Key: po.FieldSortAt, Value: 0}}}},
	}
}

func (d *NotificationDao) ListRecent(ctx context.Context, limit int) ([]bson.M, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	cur, err := d.coll.Aggregate(ctx, recentPipeline(limit))
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateReadState replaces both read-state fields in one document update,
// guarded by the read revision. key is the _id as loaded, or nil. It returns
// the number of matched documents.
func (d *NotificationDao) UpdateReadState(ctx context.Context, id string, key interface{}, revision int64, readBy, receipts []interface{}) (int64, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	filter := keyFilter(id, key)
	if revision == 0 {
		filter[po.FieldReadRevision] = bson.M{"$in": bson.A{nil, 0}}
	} else {
		filter[po.FieldReadRevision] = revision
	}
	update := bson.M{
		"$set": bson.M{
			po.FieldReadBy: readBy,
			po.FieldIsRead: receipts,
		},
		"$unset": bson.M{po.FieldLegacyReadBy: ""},
		"$inc":   bson.M{po.FieldReadRevision: 1},
	}
	res, err := d.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
