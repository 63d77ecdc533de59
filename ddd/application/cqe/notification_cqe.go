package cqe

import (
	"strings"

	"merchant-notification-service/ddd/domain/entity"
)

// ListNotificationsReq 商户通知列表查询请求。
type ListNotificationsReq struct {
	MerchantID string `form:"merchantId"`
}

func (r *ListNotificationsReq) Normalize() {
	r.MerchantID = strings.TrimSpace(r.MerchantID)
}

// Validate reports whether a usable merchant identifier is present.
func (r *ListNotificationsReq) Validate() bool {
	if r == nil {
		return false
	}
	r.Normalize()
	return r.MerchantID != "" && !r.Requester().IsEmpty()
}

// Requester returns the identity variants of the requesting merchant.
func (r *ListNotificationsReq) Requester() entity.IdentitySet {
	return entity.Variants(r.MerchantID)
}

// MarkReadReq 标记已读请求。Both identifiers may be strings, numbers or
// wrapper objects such as {"_id": "..."}.
type MarkReadReq struct {
	NotificationID interface{} `json:"notificationId"`
	MerchantID     interface{} `json:"merchantId"`
}

// ID returns the notification identifier. Strings are kept verbatim, other
// shapes reduce to their primary identity form.
func (r *MarkReadReq) ID() string {
	primary := entity.Variants(r.NotificationID).Primary()
	if s, ok := r.NotificationID.(string); ok && primary != "" {
		return s
	}
	return primary
}

// Requester returns the identity variants of the reading merchant.
func (r *MarkReadReq) Requester() entity.IdentitySet {
	return entity.Variants(r.MerchantID)
}

// Validate 校验必填字段是否完整。
func (r *MarkReadReq) Validate() bool {
	if r == nil {
		return false
	}
	return r.ID() != "" && !r.Requester().IsEmpty()
}
