package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for obslayer operations.
var (
	// ErrFieldNotFound indicates a dotted path could not be resolved against
	// the event. Absence is not exceptional: callers branch on it, they never
	// surface it as a failure.
	ErrFieldNotFound = errors.New("field not found")

	// ErrPathTooDeep indicates a dotted path exceeds MaxPathDepth.
	ErrPathTooDeep = errors.New("field path exceeds maximum depth")

	// ErrConsumerNotFound indicates no configuration document matches the
	// event's consumer identifier.
	ErrConsumerNotFound = errors.New("consumer not found in configuration")

	// ErrServiceNotFound indicates the consumer document has no service
	// entry for the event's service identifier.
	ErrServiceNotFound = errors.New("service not found for consumer")

	// ErrEventRequired indicates a builder stage ran before with-event.
	ErrEventRequired = errors.New("event must be set before this stage")
)

// ConfigurationError marks missing or invalid external configuration.
// Fatal for the message being processed; caught at the pipeline boundary.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
	}
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Configf builds a ConfigurationError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError marks an entity that violated builder invariants.
// Fatal for the message being processed; no partial entity is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
