package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrison/delegate/internal/models"
)

// AttemptError records one failed attempt state.
type AttemptError struct {
	State     State
	Err       error
	Timestamp time.Time
}

// Error implements the error interface for AttemptError.
func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s attempt: %v", e.State, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when the primary, simplified and emergency
// attempts all failed. It is the only generation failure surfaced to callers
// apart from configuration errors.
type ExhaustedError struct {
	LeadType models.LeadType
	Attempts []*AttemptError
}

// Error implements the error interface for ExhaustedError.
func (e *ExhaustedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "all generation attempts failed for lead type %q", string(e.LeadType))
	for i, a := range e.Attempts {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(a.Error())
	}
	return sb.String()
}

// Unwrap exposes every attempt error to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}
