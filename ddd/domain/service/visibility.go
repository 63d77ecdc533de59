package service

import (
	"time"

	"merchant-notification-service/ddd/domain/entity"
)

// IsVisible decides whether n is shown to the requester at now.
//
// Archived and expired notifications are hidden from everyone. Broadcast
// audiences show sent notifications to all merchants; a merchant audience
// with an empty target list falls back to the broadcast rule, while the
// narrow audiences only reach listed recipients.
func IsVisible(n *entity.Notification, now time.Time, requester, targets entity.IdentitySet) bool {
	if n == nil || n.Status == entity.StatusArchived {
		return false
	}
	if n.Expired(now) {
		return false
	}
	hasMatch := requester.Intersects(targets)

	switch n.Audience {
	case entity.AudienceAll:
		return n.Status == entity.StatusSent
	case entity.AudienceMerchant:
		if targets.IsEmpty() {
			return n.Status == entity.StatusSent
		}
		return hasMatch
	case entity.AudienceSpecific, entity.AudienceMerchantSpecific, entity.AudienceTargeted:
		return hasMatch
	default:
		return false
	}
}
