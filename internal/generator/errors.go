package generator

import (
	"fmt"
	"time"
)

// ConfigError means generation cannot work until configuration changes.
// It is never retried and never escalated to another prompt tier.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// TimeoutError reports that one backend call exceeded its deadline.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.After)
}

// StatusError is a non-success response from a backend.
type StatusError struct {
	Backend string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Backend, e.Code)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Backend, e.Code, e.Message)
}

// ParseError means the backend reply could not be decoded as a report.
type ParseError struct {
	Reason  string
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	msg := "response could not be parsed: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Preview != "" {
		msg += fmt.Sprintf(" (preview: %s)", e.Preview)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
