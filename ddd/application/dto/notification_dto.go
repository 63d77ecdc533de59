package dto

// NotificationDto 向商户展示的通知视图模型。
type NotificationDto struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	Priority  string  `json:"priority"`
	Status    string  `json:"status"`
	Link      string  `json:"link"`
	Icon      string  `json:"icon"`
	CreatedAt string  `json:"createdAt"`
	ExpiresAt *string `json:"expiresAt"`
	TimeAgo   string  `json:"timeAgo"`
	IsRead    bool    `json:"isRead"`
}

// ListNotificationsResponse 列表响应结构，包含未读数。
type ListNotificationsResponse struct {
	Success       bool              `json:"success"`
	Notifications []NotificationDto `json:"notifications"`
	UnreadCount   int               `json:"unreadCount"`
}
