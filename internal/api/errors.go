package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/mybglist/mybglist-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
	TraceID string `json:"traceId,omitempty" doc:"Request ID, also sent as X-Request-Id"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
// Server errors are logged with the request ID so the generic message a client
// sees can be traced back to its cause.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = newAPIError
	huma.NewErrorWithContext = func(ctx huma.Context, status int, message string, errs ...error) huma.StatusError {
		apiErr := newAPIError(status, message, errs...)
		traceID := middleware.GetReqID(ctx.Context())
		apiErr.TraceID = traceID

		if apiErr.status >= http.StatusInternalServerError && logger != nil {
			logger.Error("request failed",
				"trace_id", traceID,
				"method", ctx.Method(),
				"path", ctx.URL().Path,
				"error", errors.Join(errs...),
			)
		}
		return apiErr
	}
}

func newAPIError(status int, message string, errs ...error) *APIError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			apiErr := &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
			if fields := domainerrors.Fields(domainErr); fields != nil {
				apiErr.Details = fields
			}
			if apiErr.status >= http.StatusInternalServerError {
				apiErr.Message = "internal server error"
				apiErr.Details = nil
			}
			return apiErr
		}
	}

	// Parameter and body schema failures share the 400 shape of every other
	// validation failure.
	if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
		if details := fieldDetails(errs); len(details) > 0 {
			return &APIError{
				status:  http.StatusBadRequest,
				Code:    string(domainerrors.CodeValidation),
				Message: "validation failed",
				Details: details,
			}
		}
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	return &APIError{
		status:  status,
		Code:    statusToCode(status),
		Message: message,
	}
}

// fieldDetails maps huma error details to field → message, dropping the
// location prefix ("query.pageSize" becomes "pageSize").
func fieldDetails(errs []error) domainerrors.FieldErrors {
	var details domainerrors.FieldErrors
	for _, err := range errs {
		var d *huma.ErrorDetail
		if !errors.As(err, &d) {
			continue
		}
		field := d.Location
		for _, prefix := range []string{"query.", "path.", "body.", "header."} {
			if rest, ok := strings.CutPrefix(field, prefix); ok {
				field = rest
				break
			}
		}
		if field == "" {
			field = "body"
		}
		details.Add(field, d.Message)
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case 400, 422:
		return string(domainerrors.CodeValidation)
	case 401:
		return string(domainerrors.CodeUnauthorized)
	case 403:
		return string(domainerrors.CodeForbidden)
	case 404:
		return string(domainerrors.CodeNotFound)
	case 409:
		return string(domainerrors.CodeConflict)
	case 429:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
