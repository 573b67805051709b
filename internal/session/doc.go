// Package session provides the canonical session record types shared by
// every other package in sessionmatch.
//
// This package contains type definitions and per-record validation only.
// All other internal packages import session; session imports nothing
// internal. This keeps the data model the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Identifiers are opaque strings, unique within one source but NEVER
//     comparable across sources (different generation schemes)
//   - All timestamps are time.Time in UTC; callers must not rely on
//     monotonic clock readings surviving serialization
//   - Dimension values (device category, country, OS, browser) arrive
//     already normalized to a shared vocabulary by the upstream collector
package session
