package entity

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Accepted spellings for each logical field, in precedence order.
var (
	statusKeys    = []string{"status", "notification_status", "state"}
	audienceKeys  = []string{"audience", "target_audience", "targetAudience"}
	targetKeys    = []string{"targetIds", "target_ids", "targetId", "merchantIds"}
	readByKeys    = []string{"readBy", "read_by"}
	createdAtKeys = []string{"createdAt", "created_at"}
	expiresAtKeys = []string{"expiresAt", "expires_at"}
	messageKeys   = []string{"message", "body", "content"}
	linkKeys      = []string{"link", "url"}
)

// FromDocument normalizes one stored notification document. Documents are
// plain Go values: maps, slices, strings, numbers, times and id types.
// Unrecognized shapes fall back to defaults and never fail.
func FromDocument(doc map[string]interface{}) Notification {
	n := Notification{
		Title:     text(doc["title"]),
		Message:   text(first(doc, messageKeys...)),
		Link:      text(first(doc, linkKeys...)),
		Icon:      text(doc["icon"]),
		Type:      NormalizeType(doc["type"]),
		Priority:  NormalizePriority(doc["priority"]),
		Status:    NormalizeStatus(first(doc, statusKeys...)),
		Audience:  NormalizeAudience(first(doc, audienceKeys...)),
		TargetIDs: identifierList(first(doc, targetKeys...)),
	}
	if n.Icon == "" {
		n.Icon = n.Type.DefaultIcon()
	}

	rawID := doc["_id"]
	if rawID == nil {
		rawID = doc["id"]
	}
	n.ID = Variants(rawID).Primary()
	if s, ok := rawID.(string); ok && n.ID != "" {
		// String ids are kept verbatim so they can be sent back to the store.
		n.ID = s
	}
	if key := doc["_id"]; key != nil && n.ID != "" {
		n.StoreKey = key
	}

	if t, ok := ParseTime(first(doc, createdAtKeys...)); ok {
		n.CreatedAt = t
	} else if ts, ok := rawID.(interface{ Timestamp() time.Time }); ok {
		n.CreatedAt = ts.Timestamp().UTC()
	}
	if t, ok := ParseTime(first(doc, expiresAtKeys...)); ok {
		n.ExpiresAt = &t
	}

	for _, key := range readByKeys {
		n.ReadBy = append(n.ReadBy, identifierList(doc[key])...)
	}
	n.ReadReceipts = receiptList(doc["is_read"])
	return n
}

// first returns the first value under keys that is present and not blank.
func first(doc map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		v, ok := doc[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// text renders scalars as trimmed strings. Maps, slices and other
// composites yield "".
func text(v interface{}) string {
	str, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(str)
}

// identifierList accepts a comma-separated string, an array or a scalar.
func identifierList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		var out []interface{}
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, item := range t {
			if item != nil {
				out = append(out, item)
			}
		}
		return out
	case []string:
		out := make([]interface{}, 0, len(t))
		for _, item := range t {
			out = append(out, item)
		}
		return out
	default:
		return []interface{}{t}
	}
}

// receiptList reads legacy is_read data. A bare boolean names no recipient
// and yields nothing.
func receiptList(v interface{}) []ReadReceipt {
	var entries []interface{}
	switch t := v.(type) {
	case []interface{}:
		entries = t
	case map[string]interface{}:
		entries = []interface{}{t}
	default:
		return nil
	}

	out := make([]ReadReceipt, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		r := ReadReceipt{Extra: map[string]interface{}{}}
		for k, val := range m {
			switch k {
			case "target_id", "targetId":
				if r.TargetID == nil {
					r.TargetID = val
				}
			case "target_type", "targetType":
				r.TargetType = text(val)
			case "read":
				r.Read = Truthy(val)
			case "read_at", "readAt":
				if t, ok := ParseTime(val); ok {
					r.ReadAt = &t
				}
			default:
				r.Extra[k] = val
			}
		}
		out = append(out, r)
	}
	return out
}

// truthyWords extends the cast boolean spellings with legacy flags.
var truthyWords = map[string]struct{}{"yes": {}, "y": {}, "read": {}}

// Truthy interprets boolean-ish values. Unparseable input is false.
func Truthy(v interface{}) bool {
	if s, ok := v.(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		if _, ok := truthyWords[s]; ok {
			return true
		}
		v = s
	}
	if b, err := cast.ToBoolE(v); err == nil {
		return b
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f != 0
	}
	return false
}

// ParseTime accepts time values, values exposing Time(), date strings and
// unix epochs (milliseconds when larger than 1e12).
func ParseTime(v interface{}) (time.Time, bool) {
	if d, ok := v.(interface{ Time() time.Time }); ok {
		v = d.Time()
	}
	switch t := v.(type) {
	case nil, bool:
		return time.Time{}, false
	case string:
		if v = strings.TrimSpace(t); v == "" {
			return time.Time{}, false
		}
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return epoch(f)
	}
	parsed, err := cast.ToTimeE(v)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func epoch(f float64) (time.Time, bool) {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f > 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Unix(int64(f), 0).UTC(), true
}
