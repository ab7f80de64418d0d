package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrUnauthorized matches APIError values carrying a 401 or 403 status.
var ErrUnauthorized = errors.New("backend: unauthorized")

// NetworkError reports a transport failure reaching the backend: DNS, refused
// connections, resets and deadlines. No HTTP status was received.
type NetworkError struct {
	Op      string
	URL     string
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	kind := "request failed"
	if e.Timeout {
		kind = "request timed out"
	}
	return fmt.Sprintf("backend: %s %s: %s: %v", e.Op, e.URL, kind, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// APIError reports a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match rejected credentials.
func (e *APIError) Is(target error) bool {
	if target == ErrUnauthorized {
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeout reports whether err is a NetworkError caused by a deadline.
func IsTimeout(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.Timeout
}

var messagePolicy = bluemonday.StrictPolicy()

// errorMessage extracts a human readable message from a REST framework error body.
func errorMessage(status int, body []byte) string {
	msg := strings.TrimSpace(extractMessage(body))
	if msg != "" {
		msg = strings.TrimSpace(messagePolicy.Sanitize(msg))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	return msg
}

func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		var list []string
		if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
			return list[0]
		}
		return ""
	}
	for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
		if raw, ok := payload[key]; ok {
			if text := firstText(raw); text != "" {
				return text
			}
		}
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if text := firstText(payload[key]); text != "" {
			return key + ": " + text
		}
	}
	return ""
}

func firstText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// StatusFor maps a backend error to the status a page rendering it should use:
// rejected credentials stay 401, other client errors become 400, upstream
// failures 502 and timeouts 504.
func StatusFor(err error) int {
	var apiErr *APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Status == http.StatusUnauthorized, apiErr.Status == http.StatusForbidden:
			return http.StatusUnauthorized
		case apiErr.Status == http.StatusNotFound:
			return http.StatusNotFound
		case apiErr.Status >= 400 && apiErr.Status < 500:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	case IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
