package centroid

import "fmt"

// ConfigError is returned when the centroid configuration cannot be used.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Section string
	Reason  string
	cause   error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config section %q: %s", e.Section, e.Reason)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.cause }
