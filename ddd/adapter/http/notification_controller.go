package http

import (
	"errors"
	"io"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"merchant-notification-service/ddd/application/app"
	"merchant-notification-service/ddd/application/cqe"
	"merchant-notification-service/pkg/errno"
	"merchant-notification-service/pkg/manager"
	"merchant-notification-service/pkg/restapi"
)

// MerchantIDHeader carries the merchant identity when the query or body does not.
const MerchantIDHeader = "X-Merchant-ID"

var (
	notificationControllerOnce sync.Once
	singletonNotificationCtrl  NotificationController
)

// NotificationControllerPlugin 将商户通知控制器注册到共享的 manager 中。
type NotificationControllerPlugin struct{}

func (p *NotificationControllerPlugin) Name() string {
	return "merchantNotificationController"
}

func (p *NotificationControllerPlugin) MustCreateController() manager.Controller {
	notificationControllerOnce.Do(func() {
		singletonNotificationCtrl = NewNotificationController(app.DefaultNotificationApp())
	})
	return singletonNotificationCtrl
}

// NotificationController 控制器接口。
type NotificationController interface {
	manager.Controller
	List(ctx *gin.Context)
	MarkRead(ctx *gin.Context)
	MarkReadByID(ctx *gin.Context)
}

type notificationControllerImpl struct {
	app app.NotificationApp
}

// NewNotificationController builds a controller over the given application service.
func NewNotificationController(a app.NotificationApp) NotificationController {
	return &notificationControllerImpl{app: a}
}

// RegisterOpenApi 暂无开放通知接口。
func (c *notificationControllerImpl) RegisterOpenApi(group *gin.RouterGroup) {}

// RegisterInnerApi 注册商户门户通知接口。
func (c *notificationControllerImpl) RegisterInnerApi(group *gin.RouterGroup) {
	v1 := group.Group("merchant/v1")
	{
		v1.GET("/notifications", c.List)
		v1.POST("/notifications/read", c.MarkRead)
		v1.POST("/notifications/:id/read", c.MarkReadByID)
	}
}

func (c *notificationControllerImpl) RegisterDebugApi(group *gin.RouterGroup) {}

// RegisterOpsApi exposes Prometheus metrics.
func (c *notificationControllerImpl) RegisterOpsApi(group *gin.RouterGroup) {
	group.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// List 列出当前商户可见的通知以及未读数量。
func (c *notificationControllerImpl) List(ctx *gin.Context) {
	var req cqe.ListNotificationsReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "query"))
		return
	}
	if req.MerchantID == "" {
		req.MerchantID = ctx.GetHeader(MerchantIDHeader)
	}
	resp, err := c.app.ListNotifications(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// MarkRead 将请求体中指定的通知标记为已读。
func (c *notificationControllerImpl) MarkRead(ctx *gin.Context) {
	req, ok := c.bindMarkRead(ctx)
	if !ok {
		return
	}
	c.markRead(ctx, req)
}

// MarkReadByID 将路径中指定的通知标记为已读。
func (c *notificationControllerImpl) MarkReadByID(ctx *gin.Context) {
	req, ok := c.bindMarkRead(ctx)
	if !ok {
		return
	}
	req.NotificationID = ctx.Param("id")
	c.markRead(ctx, req)
}

// bindMarkRead decodes an optional JSON body. An empty body is allowed so
// the merchant can come from the header alone.
func (c *notificationControllerImpl) bindMarkRead(ctx *gin.Context) (*cqe.MarkReadReq, bool) {
	var req cqe.MarkReadReq
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "body"))
		return nil, false
	}
	if req.MerchantID == nil {
		if h := ctx.GetHeader(MerchantIDHeader); h != "" {
			req.MerchantID = h
		}
	}
	return &req, true
}

func (c *notificationControllerImpl) markRead(ctx *gin.Context, req *cqe.MarkReadReq) {
	if err := c.app.MarkRead(ctx.Request.Context(), req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.OK(ctx, "Notification marked as read")
}

func init() {
	manager.RegisterControllerPlugin(&NotificationControllerPlugin{})
}
