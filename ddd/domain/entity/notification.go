package entity

import "time"

// TargetTypeMerchant is the target_type recorded on legacy read receipts.
const TargetTypeMerchant = "merchant"

// Notification 聚合根，归一化后的站内通知。
//
// Read state lives in two representations: ReadBy (current) and
// ReadReceipts (legacy is_read entries). Both are kept.
type Notification struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Message      string        `json:"message"`
	Link         string        `json:"link,omitempty"`
	Icon         string        `json:"icon,omitempty"`
	Type         Type          `json:"type"`
	Priority     Priority      `json:"priority"`
	Status       Status        `json:"status"`
	Audience     Audience      `json:"audience"`
	TargetIDs    []interface{} `json:"targetIds,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	ExpiresAt    *time.Time    `json:"expiresAt,omitempty"`
	ReadBy       []interface{} `json:"readBy,omitempty"`
	ReadReceipts []ReadReceipt `json:"is_read,omitempty"`
	// Revision guards read-state writes; it is owned by the store.
	Revision int64 `json:"revision"`
	// StoreKey is the stored identifier exactly as loaded, used to address
	// write-backs. It is not cached.
	StoreKey interface{} `json:"-"`
}

// ReadReceipt is one legacy is_read entry.
type ReadReceipt struct {
	TargetID   interface{} `json:"target_id"`
	TargetType string      `json:"target_type,omitempty"`
	Read       bool        `json:"read"`
	ReadAt     *time.Time  `json:"read_at,omitempty"`
	// Extra keeps fields of the stored entry this service does not interpret.
	Extra map[string]interface{} `json:"-"`
}

// TargetVariants returns the union of the identity variants of every target.
func (n *Notification) TargetVariants() IdentitySet {
	return Variants(n.TargetIDs)
}

// Expired reports whether the notification has an expiry at or before now.
func (n *Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(now)
}
