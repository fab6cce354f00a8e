// Package handlers provides the HTTP handlers of the console: proxies to the
// HemoCore API, views computed from the snapshot, exports and health checks.
// Errors are answered with a uniform JSON body.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/scheduler"
	"github.com/hemocore/console/services"
	"github.com/hemocore/console/session"
	"github.com/hemocore/console/validation"
)

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Fields  []string `json:"fields,omitempty"`
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

func respondWithFields(w http.ResponseWriter, code int, message string, fields []string) {
	RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
		Fields:  fields,
	})
}

// respondWithServiceError maps a service failure to a status code and
// logs it once
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs *validation.FieldErrors
	var apiErr *apiclient.APIError

	code := http.StatusInternalServerError
	message := "Internal server error"
	var fields []string

	switch {
	case errors.As(err, &fieldErrs):
		code, message, fields = http.StatusBadRequest, fieldErrs.Error(), fieldErrs.Fields()
	case errors.As(err, &apiErr):
		code, message, fields = apiErr.StatusCode, apiErr.Error(), apiclient.ValidationFields(err)
	case errors.Is(err, services.ErrAlreadyDelivered), errors.Is(err, services.ErrNotDelivered),
		errors.Is(err, scheduler.ErrRefreshInProgress):
		code, message = http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrReversalDisabled):
		code, message = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrInvalidReason):
		code, message = http.StatusBadRequest, fmt.Sprintf("%s: must be one of %s", err, strings.Join(services.ReversalReasons, ", "))
	case errors.Is(err, session.ErrNotAuthenticated):
		code, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		code, message = http.StatusGatewayTimeout, "HemoCore API did not answer in time"
	}

	attrs := []any{"method", r.Method, "path", r.URL.Path, "status_code", code, "error", err}
	if code >= http.StatusInternalServerError {
		logging.Error("Request failed", attrs...)
	} else {
		logging.Warn("Request rejected", attrs...)
	}

	respondWithFields(w, code, message, fields)
}

// decodeBody reads a JSON request body into dst
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
