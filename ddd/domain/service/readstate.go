package service

import (
	"time"

	"merchant-notification-service/ddd/domain/entity"
)

// IsRead reports whether either read-state representation records the
// requester as having read n.
func IsRead(n *entity.Notification, requester entity.IdentitySet) bool {
	if n == nil || requester.IsEmpty() {
		return false
	}
	for _, reader := range n.ReadBy {
		if entity.Variants(reader).Intersects(requester) {
			return true
		}
	}
	for _, r := range n.ReadReceipts {
		if r.Read && entity.Variants(r.TargetID).Intersects(requester) {
			return true
		}
	}
	return false
}

// ReadChange describes what ApplyRead did to a notification.
type ReadChange struct {
	AppendedReader  bool
	UpdatedReceipt  bool
	AppendedReceipt bool
}

// ApplyRead records that the reader identified by variants has read n, in
// both representations. It never removes or weakens an existing read and
// never adds a second entry for a reader already present under any variant.
// Matching receipts are set read and get read_at refreshed.
func ApplyRead(n *entity.Notification, variants entity.IdentitySet, now time.Time) ReadChange {
	var change ReadChange
	if n == nil || variants.IsEmpty() {
		return change
	}
	now = now.UTC()

	present := false
	for _, reader := range n.ReadBy {
		if entity.Variants(reader).Intersects(variants) {
			present = true
			break
		}
	}
	if !present {
		n.ReadBy = append(n.ReadBy, variants.Primary())
		change.AppendedReader = true
	}

	for i := range n.ReadReceipts {
		r := &n.ReadReceipts[i]
		if !entity.Variants(r.TargetID).Intersects(variants) {
			continue
		}
		r.Read = true
		at := now
		r.ReadAt = &at
		change.UpdatedReceipt = true
	}
	if !change.UpdatedReceipt {
		at := now
		n.ReadReceipts = append(n.ReadReceipts, entity.ReadReceipt{
			TargetID:   variants.Primary(),
			TargetType: entity.TargetTypeMerchant,
			Read:       true,
			ReadAt:     &at,
		})
		change.AppendedReceipt = true
	}
	return change
}
