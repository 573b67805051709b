package match

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid matcher configuration.
//
// Configuration errors are fatal and surface at the boundary before any
// matching begins - the caller must supply a valid value. This is the
// only error class the matcher itself produces; malformed session
// records are recovered per-record instead (see session.Validate).
type ConfigError struct {
	// Field names the offending parameter (e.g. "window").
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// IsConfigError reports whether err is a configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
