package testutil

import (
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// BaseTime is the anchor timestamp for builder-generated sessions.
//
// Every builder offset is relative to this instant, so tests describe
// sessions by relative seconds instead of absolute timestamps. The same
// builder inputs always produce the same sessions.
var BaseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// Option mutates the session under construction.
type Option func(*session.Session)

// NewSession builds a well-formed desktop session in the US at BaseTime,
// then applies the options. Tests describe sessions by what deviates
// from this baseline, so each case reads as its distinguishing facts.
func NewSession(id string, src session.Source, opts ...Option) session.Session {
	s := session.Session{
		Identifier: id,
		Source:     src,
		StartTime:  BaseTime,
		Device:     session.DeviceDesktop,
		Country:    "US",
		OS:         "Windows",
		Browser:    "Chrome",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// At offsets the start time by d from BaseTime.
func At(d time.Duration) Option {
	return func(s *session.Session) { s.StartTime = BaseTime.Add(d) }
}

// StartingAt sets an absolute start time.
func StartingAt(t time.Time) Option {
	return func(s *session.Session) { s.StartTime = t }
}

// NoStart clears the start time, making the session malformed.
func NoStart() Option {
	return func(s *session.Session) { s.StartTime = time.Time{} }
}

// Device sets the device category.
func Device(d session.DeviceCategory) Option {
	return func(s *session.Session) { s.Device = d }
}

// Country sets the country code. Pass "" to make the session malformed.
func Country(c string) Option {
	return func(s *session.Session) { s.Country = c }
}

// OS sets the operating system.
func OS(os string) Option {
	return func(s *session.Session) { s.OS = os }
}

// Purchases sets the purchase count and summed value in minor units.
func Purchases(count int, value int64) Option {
	return func(s *session.Session) {
		s.PurchaseCount = count
		s.PurchaseValue = &value
	}
}

// Engaged sets the engagement time.
func Engaged(d time.Duration) Option {
	return func(s *session.Session) { s.EngagementTime = d }
}

// A builds a source-A session.
func A(id string, opts ...Option) session.Session {
	return NewSession(id, session.SourceA, opts...)
}

// B builds a source-B session.
func B(id string, opts ...Option) session.Session {
	return NewSession(id, session.SourceB, opts...)
}
