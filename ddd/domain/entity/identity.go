package entity

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// identityKeys are the wrapper fields that may hold an identifier, in lookup order.
var identityKeys = []string{"_id", "id", "target_id", "targetId", "merchantId", "merchant_id", "value"}

// placeholders are stringified values that never identify anybody.
var placeholders = map[string]struct{}{
	"[object object]": {},
	"null":            {},
	"undefined":       {},
	"<nil>":           {},
	"map[]":           {},
}

// IdentitySet is the ordered set of comparable string forms of one or more
// identifiers. The zero value is an empty set.
type IdentitySet struct {
	order []string
	index map[string]struct{}
}

// NewIdentitySet builds a set from already-normalized forms.
func NewIdentitySet(values ...string) IdentitySet {
	var s IdentitySet
	for _, v := range values {
		s.addForms(v)
	}
	return s
}

// Len returns the number of distinct forms in the set.
func (s IdentitySet) Len() int { return len(s.order) }

// IsEmpty reports whether the set holds no usable identifier.
func (s IdentitySet) IsEmpty() bool { return len(s.order) == 0 }

// Values returns the forms in insertion order.
func (s IdentitySet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Primary returns the first raw form added to the set, or "" if empty.
func (s IdentitySet) Primary() string {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

// Contains reports whether v is one of the forms.
func (s IdentitySet) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Intersects reports whether the two sets share at least one form.
func (s IdentitySet) Intersects(other IdentitySet) bool {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for _, v := range small.order {
		if large.Contains(v) {
			return true
		}
	}
	return false
}

// Union returns a set holding the forms of both sets.
func (s IdentitySet) Union(other IdentitySet) IdentitySet {
	var out IdentitySet
	for _, v := range s.order {
		out.add(v)
	}
	for _, v := range other.order {
		out.add(v)
	}
	return out
}

func (s *IdentitySet) add(v string) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
}

// addForms adds a raw string and its lowercase form, skipping placeholders.
func (s *IdentitySet) addForms(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	lower := strings.ToLower(raw)
	if _, ok := placeholders[lower]; ok {
		return false
	}
	s.add(raw)
	s.add(lower)
	return true
}

// Variants returns every string form worth comparing for value. Strings,
// numbers, booleans, database object ids, wrapper maps and arrays (nested to
// any depth) are accepted. It never panics and returns an empty set when no
// usable identifier is present.
func Variants(value interface{}) IdentitySet {
	var s IdentitySet
	w := walker{set: &s, seen: make(map[visitKey]struct{})}
	func() {
		// A misbehaving Hex or String method must not fail the caller.
		defer func() { _ = recover() }()
		w.walk(value)
	}()
	return s
}

type hexer interface {
	Hex() string
}

type walker struct {
	set  *IdentitySet
	seen map[visitKey]struct{}
}

func (w walker) walk(value interface{}) bool {
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return false
	}
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return w.set.addForms(v)
	case []byte:
		return w.set.addForms(string(v))
	case bool:
		return w.set.addForms(strconv.FormatBool(v))
	case int:
		return w.set.addForms(strconv.Itoa(v))
	case int32:
		return w.set.addForms(strconv.FormatInt(int64(v), 10))
	case int64:
		return w.set.addForms(strconv.FormatInt(v, 10))
	case float64:
		return w.set.addForms(formatFloat(v))
	case float32:
		return w.set.addForms(formatFloat(float64(v)))
	case hexer:
		return w.set.addForms(v.Hex())
	case json.Number:
		return w.set.addForms(v.String())
	case map[string]interface{}:
		rv := reflect.ValueOf(v)
		if !w.enter(rv) {
			return false
		}
		defer w.leave(rv)
		for _, key := range identityKeys {
			if inner, ok := v[key]; ok && w.walk(inner) {
				return true
			}
		}
		return false
	case []interface{}:
		rv := reflect.ValueOf(v)
		if !w.enter(rv) {
			return false
		}
		defer w.leave(rv)
		added := false
		for _, item := range v {
			if w.walk(item) {
				added = true
			}
		}
		return added
	case []string:
		added := false
		for _, item := range v {
			if w.set.addForms(item) {
				added = true
			}
		}
		return added
	case fmt.Stringer:
		return w.set.addForms(v.String())
	}
	return w.walkReflect(reflect.ValueOf(value))
}

// walkReflect handles named and otherwise unlisted types by kind.
func (w walker) walkReflect(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.String:
		return w.set.addForms(rv.String())
	case reflect.Bool:
		return w.set.addForms(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.set.addForms(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.set.addForms(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return w.set.addForms(formatFloat(rv.Float()))
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		if rv.Kind() == reflect.Ptr {
			if !w.enter(rv) {
				return false
			}
			defer w.leave(rv)
		}
		return w.walk(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if !w.enter(rv) {
				return false
			}
			defer w.leave(rv)
		}
		added := false
		for i := 0; i < rv.Len(); i++ {
			if w.walk(rv.Index(i).Interface()) {
				added = true
			}
		}
		return added
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || !w.enter(rv) {
			return false
		}
		defer w.leave(rv)
		for _, key := range identityKeys {
			inner := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if inner.IsValid() && w.walk(inner.Interface()) {
				return true
			}
		}
	}
	return false
}

// visitKey identifies a reference value on the current walk path. Slices
// sharing a backing array differ by length.
type visitKey struct {
	ptr uintptr
	len int
}

func keyOf(rv reflect.Value) visitKey {
	k := visitKey{ptr: rv.Pointer()}
	if rv.Kind() == reflect.Slice {
		k.len = rv.Len()
	}
	return k
}

// enter pushes a reference value onto the walk path. It reports false for a
// nil value or one already on the path, which is a cycle.
func (w walker) enter(rv reflect.Value) bool {
	if rv.IsNil() {
		return false
	}
	k := keyOf(rv)
	if _, ok := w.seen[k]; ok {
		return false
	}
	w.seen[k] = struct{}{}
	return true
}

// leave pops rv off the walk path.
func (w walker) leave(rv reflect.Value) {
	delete(w.seen, keyOf(rv))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
