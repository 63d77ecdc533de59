package entity

import "strings"

// Type is the display category of a notification.
type Type string

const (
	TypeInfo         Type = "info"
	TypeSuccess      Type = "success"
	TypeWarning      Type = "warning"
	TypeError        Type = "error"
	TypeAnnouncement Type = "announcement"
)

// Priority is the urgency of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status is the derived display state of a notification.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusArchived Status = "archived"
)

// Audience is the declared recipient scope of a notification.
type Audience string

const (
	AudienceAll              Audience = "all"
	AudienceMerchant         Audience = "merchant"
	AudienceSpecific         Audience = "specific"
	AudienceMerchantSpecific Audience = "merchant_specific"
	AudienceTargeted         Audience = "targeted"
	// AudienceUnknown marks a value outside the vocabulary. It is never visible.
	AudienceUnknown Audience = "unknown"
)

var typeVocabulary = map[string]Type{
	"info":         TypeInfo,
	"update":       TypeInfo,
	"success":      TypeSuccess,
	"warning":      TypeWarning,
	"warn":         TypeWarning,
	"alert":        TypeWarning,
	"error":        TypeError,
	"danger":       TypeError,
	"announcement": TypeAnnouncement,
	"promotion":    TypeAnnouncement,
	"promo":        TypeAnnouncement,
}

var priorityVocabulary = map[string]Priority{
	"low":      PriorityLow,
	"medium":   PriorityMedium,
	"normal":   PriorityMedium,
	"high":     PriorityHigh,
	"urgent":   PriorityUrgent,
	"critical": PriorityUrgent,
}

var statusVocabulary = map[string]Status{
	"sent":      StatusSent,
	"published": StatusSent,
	"active":    StatusSent,
	"delivered": StatusSent,
	"live":      StatusSent,
	"draft":     StatusDraft,
	"pending":   StatusDraft,
	"queued":    StatusDraft,
	"scheduled": StatusDraft,
	"archived":  StatusArchived,
	"cancelled": StatusArchived,
	"canceled":  StatusArchived,
	"deleted":   StatusArchived,
	"inactive":  StatusArchived,
}

var audienceVocabulary = map[string]Audience{
	"all":               AudienceAll,
	"merchant":          AudienceMerchant,
	"specific":          AudienceSpecific,
	"merchant_specific": AudienceMerchantSpecific,
	"targeted":          AudienceTargeted,
}

var defaultIcons = map[Type]string{
	TypeInfo:         "info",
	TypeSuccess:      "check-circle",
	TypeWarning:      "alert-triangle",
	TypeError:        "x-circle",
	TypeAnnouncement: "megaphone",
}

// word reduces an arbitrary value to a trimmed lowercase token.
func word(v interface{}) string {
	return strings.ToLower(text(v))
}

// NormalizeType maps v onto Type, defaulting to info.
func NormalizeType(v interface{}) Type {
	if t, ok := typeVocabulary[word(v)]; ok {
		return t
	}
	return TypeInfo
}

// NormalizePriority maps v onto Priority, defaulting to medium.
func NormalizePriority(v interface{}) Priority {
	if p, ok := priorityVocabulary[word(v)]; ok {
		return p
	}
	return PriorityMedium
}

// NormalizeStatus maps v onto Status, defaulting to sent.
func NormalizeStatus(v interface{}) Status {
	if s, ok := statusVocabulary[word(v)]; ok {
		return s
	}
	return StatusSent
}

// NormalizeAudience maps v onto Audience. Absent or blank input is all;
// anything else outside the vocabulary is AudienceUnknown.
func NormalizeAudience(v interface{}) Audience {
	w := word(v)
	if w == "" {
		return AudienceAll
	}
	if a, ok := audienceVocabulary[w]; ok {
		return a
	}
	return AudienceUnknown
}

// RequiresTargeting reports whether the audience only reaches listed recipients.
func (a Audience) RequiresTargeting() bool {
	switch a {
	case AudienceSpecific, AudienceMerchantSpecific, AudienceTargeted:
		return true
	}
	return false
}

// DefaultIcon is the icon shown when a notification does not carry one.
func (t Type) DefaultIcon() string {
	if icon, ok := defaultIcons[t]; ok {
		return icon
	}
	return defaultIcons[TypeInfo]
}
