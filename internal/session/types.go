package session

import "time"

// Source identifies which collection pipeline observed a session.
type Source string

const (
	// SourceA is the server-side collector pipeline.
	SourceA Source = "A"
	// SourceB is the client-side analytics pipeline.
	SourceB Source = "B"
)

// Valid reports whether s is one of the two known sources.
func (s Source) Valid() bool {
	return s == SourceA || s == SourceB
}

// DeviceCategory is the normalized device class of a session.
type DeviceCategory string

const (
	DeviceDesktop DeviceCategory = "desktop"
	DeviceMobile  DeviceCategory = "mobile"
	DeviceTablet  DeviceCategory = "tablet"
)

// ValidDeviceCategories defines the allowed device classes.
var ValidDeviceCategories = map[DeviceCategory]bool{
	DeviceDesktop: true,
	DeviceMobile:  true,
	DeviceTablet:  true,
}

// Session is one observed session from a single source.
//
// Identifier is unique within its source's collection. Identifiers from
// different sources must never be joined directly - that mismatch is the
// entire reason the matcher exists.
type Session struct {
	Identifier string         `json:"identifier" yaml:"identifier"`
	Source     Source         `json:"source" yaml:"source"`
	StartTime  time.Time      `json:"start_time" yaml:"start_time"`
	EndTime    time.Time      `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Device     DeviceCategory `json:"device_category" yaml:"device_category"`
	Country    string         `json:"country" yaml:"country"`
	OS         string         `json:"os,omitempty" yaml:"os,omitempty"`
	Browser    string         `json:"browser,omitempty" yaml:"browser,omitempty"`
	UserKey    string         `json:"user_key,omitempty" yaml:"user_key,omitempty"`

	// PurchaseCount is the number of purchase events in the session.
	PurchaseCount int `json:"purchase_count" yaml:"purchase_count"`

	// PurchaseValue is the summed purchase value in minor currency units.
	// Nil when the source does not report revenue for this session.
	PurchaseValue *int64 `json:"purchase_value,omitempty" yaml:"purchase_value,omitempty"`

	// EngagementTime is the total engaged time reported for the session.
	EngagementTime time.Duration `json:"engagement_time,omitempty" yaml:"engagement_time,omitempty"`
}

// HasPurchase reports whether the session contains at least one purchase.
func (s Session) HasPurchase() bool {
	return s.PurchaseCount > 0
}

// Day returns the session's start date truncated to midnight UTC.
// Used for daily timeseries bucketing.
func (s Session) Day() time.Time {
	t := s.StartTime.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
