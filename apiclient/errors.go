package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is returned for every non-2xx response. Its message is the raw
// response text, or "HTTP error! status: N" when the body is empty.
type APIError struct {
	StatusCode int
	Method     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Body) != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// StatusCode returns the upstream status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is an upstream 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is an upstream 401 or 403
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// ValidationFields returns the field names of a validation problem body
// such as {"errors": {"FullName": ["required"]}}, sorted. It returns nil
// when err is not an APIError or its body has no errors map.
func ValidationFields(err error) []string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	var problem struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if json.Unmarshal([]byte(apiErr.Body), &problem) != nil || len(problem.Errors) == 0 {
		return nil
	}

	fields := make([]string, 0, len(problem.Errors))
	for field := range problem.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
