package errno

import (
	"errors"
	"fmt"
	"strings"
)

// BizError is an error that carries a business code and a user-facing message.
type BizError interface {
	error
	Code() int
	Message() string
}

type simpleBizError struct {
	base  *Errno
	cause error
	msg   string
}

// NewSimpleBizError derives an error from base, formatting its message with
// args and wrapping cause.
func NewSimpleBizError(base *Errno, cause error, args ...interface{}) BizError {
	msg := base.Message
	if strings.Contains(msg, "%") {
		if len(args) > 0 {
			msg = fmt.Sprintf(msg, args...)
		} else {
			msg = strings.TrimSpace(strings.ReplaceAll(msg, "%s", ""))
		}
	}
	return &simpleBizError{base: base, cause: cause, msg: msg}
}

func (e *simpleBizError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *simpleBizError) Code() int       { return e.base.Code }
func (e *simpleBizError) Message() string { return e.msg }
func (e *simpleBizError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.base}
	}
	return []error{e.base, e.cause}
}

// Resolve reduces any error to a code and message. Errors that are neither an
// Errno nor a BizError are reported as internal.
func Resolve(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}
	var biz BizError
	if errors.As(err, &biz) {
		return biz.Code(), biz.Message()
	}
	var no *Errno
	if errors.As(err, &no) {
		return no.Code, strings.TrimSpace(strings.ReplaceAll(no.Message, "%s", ""))
	}
	return ErrInternalServer.Code, ErrInternalServer.Message
}
