package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-notification-service/pkg/errno"
	"merchant-notification-service/pkg/logger"
)

// Response is the common envelope of every portal API reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes payload with status 200. Payloads embedding Response should
// already carry Success=true; a nil payload is replaced by a bare envelope.
func Success(ctx *gin.Context, payload interface{}) {
	if payload == nil {
		payload = Response{Success: true, Message: errno.OK.Message}
	}
	ctx.JSON(http.StatusOK, payload)
}

// OK writes a success envelope with a message.
func OK(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// Failed writes a failure envelope with the status implied by err.
func Failed(ctx *gin.Context, err error) {
	code, _ := errno.Resolve(err)
	FailedWithStatus(ctx, err, statusFor(code))
}

// FailedWithStatus writes a failure envelope with an explicit HTTP status.
func FailedWithStatus(ctx *gin.Context, err error, status int) {
	code, msg := errno.Resolve(err)
	resp := Response{Success: false, Message: msg}
	if code >= errno.ErrInternalServer.Code {
		logger.WithContext(ctx.Request.Context()).Errorf("request failed path=%s code=%d error=%v", ctx.FullPath(), code, err)
	} else if err != nil && err.Error() != msg {
		resp.Error = err.Error()
	}
	ctx.AbortWithStatusJSON(status, resp)
}

func statusFor(code int) int {
	switch code {
	case errno.ErrParameterInvalid.Code:
		return http.StatusBadRequest
	case errno.ErrUnauthorized.Code:
		return http.StatusUnauthorized
	case errno.ErrNotFound.Code:
		return http.StatusNotFound
	case errno.ErrConflict.Code:
		return http.StatusConflict
	case errno.ErrDatabase.Code:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
