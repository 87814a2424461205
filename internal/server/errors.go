package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"

	"github.com/harrison/delegate/internal/generator"
	"github.com/harrison/delegate/internal/orchestrator"
	"github.com/harrison/delegate/internal/service"
	"github.com/harrison/delegate/internal/store"
)

type apiErrorBody struct {
	Code    string         `json:"code" example:"generation_failed"`
	Message string         `json:"message" example:"all generation attempts failed"`
	Details map[string]any `json:"details,omitempty"`
}

// apiError is the JSON error envelope: {"error": {...}}.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body:   apiErrorBody{Code: code, Message: message, Details: details},
	}
}

var installOnce sync.Once

// installErrorEnvelope routes huma's own errors through apiError.
func installErrorEnvelope() {
	installOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			return newAPIError(status, "", msg, errDetails(errs))
		}
		huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
			if status == http.StatusUnprocessableEntity {
				status = http.StatusBadRequest
			}
			return newAPIError(status, "", msg, errDetails(errs))
		}
	})
}

func errDetails(errs []error) map[string]any {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return map[string]any{"errors": msgs}
}

// handleError maps domain errors onto HTTP statuses.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}

	var invalid *service.InvalidLeadError
	if errors.As(err, &invalid) {
		return newAPIError(http.StatusBadRequest, "bad_request", invalid.Err.Error(), nil)
	}
	var cfgErr *generator.ConfigError
	if errors.As(err, &cfgErr) {
		return newAPIError(http.StatusUnauthorized, "not_configured", cfgErr.Error(), nil)
	}
	var exhausted *orchestrator.ExhaustedError
	if errors.As(err, &exhausted) {
		attempts := make([]string, 0, len(exhausted.Attempts))
		for _, a := range exhausted.Attempts {
			attempts = append(attempts, a.Error())
		}
		return newAPIError(http.StatusBadGateway, "generation_failed", exhausted.Error(), map[string]any{
			"leadType": string(exhausted.LeadType),
			"attempts": attempts,
		})
	}
	if errors.Is(err, store.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newAPIError(http.StatusGatewayTimeout, "timeout", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "not_configured"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadGateway:
		return "generation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}
