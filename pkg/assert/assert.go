package assert

import (
	"errors"
	"reflect"
)

// Nil panics if err is not nil.
func Nil(err error) {
	if err != nil {
		panic(err)
	}
}

// True panics with err if value is false.
func True(value bool, err error) {
	if !value {
		panic(err)
	}
}

// NotNil panics with msg if object is nil, including typed nil values.
func NotNil(object interface{}, msg string) {
	True(!IsNil(object), errors.New(msg))
}

// IsNil reports whether object is nil, handling typed nil values.
func IsNil(object interface{}) bool {
	if object == nil {
		return true
	}
	value := reflect.ValueOf(object)
	switch value.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Slice, reflect.Func, reflect.Interface:
		return value.IsNil()
	}
	return false
}
