package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stampedID struct{}

func (stampedID) Hex() string { return "65f0c0ffee" }

func (stampedID) Timestamp() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

func TestFromDocumentCanonicalFields(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := FromDocument(map[string]interface{}{
		"_id":       "n1",
		"title":     " Welcome ",
		"message":   "Hello",
		"type":      "promotion",
		"priority":  "high",
		"status":    "published",
		"audience":  "Merchant",
		"targetIds": "m1, m2 ,,",
		"createdAt": created,
		"expiresAt": "2026-02-01T00:00:00Z",
		"link":      "/offers",
		"readBy":    []interface{}{"m1"},
	})

	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, "Welcome", n.Title)
	assert.Equal(t, TypeAnnouncement, n.Type)
	assert.Equal(t, PriorityHigh, n.Priority)
	assert.Equal(t, StatusSent, n.Status)
	assert.Equal(t, AudienceMerchant, n.Audience)
	assert.Equal(t, []interface{}{"m1", "m2"}, n.TargetIDs)
	assert.Equal(t, created, n.CreatedAt)
	require.NotNil(t, n.ExpiresAt)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *n.ExpiresAt)
	assert.Equal(t, "megaphone", n.Icon)
	assert.Equal(t, []interface{}{"m1"}, n.ReadBy)
}

func TestFromDocumentAlternateKeys(t *testing.T) {
	n := FromDocument(map[string]interface{}{
		"id":                  "n2",
		"body":                "fallback body",
		"status":              "",
		"notification_status": "cancelled",
		"state":               "sent",
		"target_audience":     "specific",
		"target_ids":          []interface{}{"m3"},
		"created_at":          float64(1700000000000),
		"read_by":             "m4",
		"readBy":              []interface{}{"m5"},
		"url":                 "/x",
	})

	assert.Equal(t, "n2", n.ID)
	assert.Equal(t, "fallback body", n.Message)
	assert.Equal(t, StatusArchived, n.Status)
	assert.Equal(t, AudienceSpecific, n.Audience)
	assert.Equal(t, []interface{}{"m3"}, n.TargetIDs)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), n.CreatedAt)
	assert.Equal(t, []interface{}{"m5", "m4"}, n.ReadBy)
	assert.Equal(t, "/x", n.Link)
}

func TestFromDocumentDefaults(t *testing.T) {
	n := FromDocument(map[string]interface{}{"_id": stampedID{}, "expiresAt": "not a date"})

	assert.Equal(t, "65f0c0ffee", n.ID)
	assert.Equal(t, TypeInfo, n.Type)
	assert.Equal(t, PriorityMedium, n.Priority)
	assert.Equal(t, StatusSent, n.Status)
	assert.Equal(t, AudienceAll, n.Audience)
	assert.Nil(t, n.ExpiresAt)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), n.CreatedAt)
	assert.Equal(t, "info", n.Icon)
}

func TestFromDocumentLegacyReceipts(t *testing.T) {
	n := FromDocument(map[string]interface{}{
		"_id": "n3",
		"is_read": []interface{}{
			map[string]interface{}{"target_id": "m1", "target_type": "merchant", "read": true, "read_at": "2026-01-01", "source": "app"},
			map[string]interface{}{"targetId": "m2", "read": "false"},
			"garbage",
		},
	})

	require.Len(t, n.ReadReceipts, 2)
	assert.Equal(t, "m1", n.ReadReceipts[0].TargetID)
	assert.True(t, n.ReadReceipts[0].Read)
	require.NotNil(t, n.ReadReceipts[0].ReadAt)
	assert.Equal(t, "app", n.ReadReceipts[0].Extra["source"])
	assert.Equal(t, "m2", n.ReadReceipts[1].TargetID)
	assert.False(t, n.ReadReceipts[1].Read)
}

func TestFromDocumentIgnoresBooleanIsRead(t *testing.T) {
	n := FromDocument(map[string]interface{}{"_id": "n4", "is_read": true})
	assert.Empty(t, n.ReadReceipts)
}

func TestFromDocumentKeepsStoreKey(t *testing.T) {
	n := FromDocument(map[string]interface{}{"_id": int32(7)})
	assert.Equal(t, "7", n.ID)
	assert.Equal(t, int32(7), n.StoreKey)

	n = FromDocument(map[string]interface{}{"_id": " n5 "})
	assert.Equal(t, " n5 ", n.ID)
	assert.Equal(t, " n5 ", n.StoreKey)

	n = FromDocument(map[string]interface{}{"id": "n6"})
	assert.Equal(t, "n6", n.ID)
	assert.Nil(t, n.StoreKey)
}

func TestParseTime(t *testing.T) {
	_, ok := ParseTime(nil)
	assert.False(t, ok)
	_, ok = ParseTime(time.Time{})
	assert.False(t, ok)

	got, ok := ParseTime(int64(1700000000))
	require.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got)

	got, ok = ParseTime("2026-05-06 07:08:09")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC), got)

	got, ok = ParseTime(" 2026-05-06T07:08:09.5+02:00 ")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 6, 5, 8, 9, 500000000, time.UTC), got)

	got, ok = ParseTime("1700000000000")
	require.True(t, ok)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), got)

	got, ok = ParseTime(json.Number("1700000000"))
	require.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got, ok = ParseTime(&at)
	require.True(t, ok)
	assert.Equal(t, at, got)

	var nilTime *time.Time
	_, ok = ParseTime(nilTime)
	assert.False(t, ok)
	_, ok = ParseTime(true)
	assert.False(t, ok)
	_, ok = ParseTime("next tuesday")
	assert.False(t, ok)
	_, ok = ParseTime(-5)
	assert.False(t, ok)
}

func TestTextAndWord(t *testing.T) {
	assert.Equal(t, "Hello", text("  Hello "))
	assert.Equal(t, "42", text(42))
	assert.Equal(t, "1.5", text(1.5))
	assert.Equal(t, "", text(map[string]interface{}{"a": 1}))
	assert.Equal(t, "", text([]interface{}{"a"}))
	assert.Equal(t, "", text(nil))
	assert.Equal(t, "published", word(" PUBLISHED "))
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("YES"))
	assert.True(t, Truthy(int32(1)))
	assert.False(t, Truthy("no"))
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(0.0))
	assert.True(t, Truthy(" True "))
	assert.True(t, Truthy("1"))
	assert.True(t, Truthy("read"))
	assert.True(t, Truthy(json.Number("2")))
	assert.False(t, Truthy("unread"))
	assert.False(t, Truthy(map[string]interface{}{}))
}
