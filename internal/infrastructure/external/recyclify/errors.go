package recyclify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// Message prefixes used by the backend.
const (
	PrefixSuccess   = "SUCCESS:"
	PrefixUserError = "UERROR:"
	PrefixError     = "ERROR:"
)

// UnexpectedText is shown for errors the backend did not describe.
const UnexpectedText = "An unexpected error occurred"

// envelope is the {message, data, error} wrapper most endpoints use.
// A few endpoints return a bare body, in which case all fields stay empty.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func parseEnvelope(body []byte) envelope {
	var env envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env
	}
	_ = json.Unmarshal(trimmed, &env)
	return env
}

// errorText returns the error field when it is a JSON string.
func (e envelope) errorText() string {
	var s string
	if len(e.Error) == 0 || json.Unmarshal(e.Error, &s) != nil {
		return ""
	}
	return s
}

// StripPrefix removes a SUCCESS/UERROR/ERROR prefix and surrounding space.
func StripPrefix(message string) string {
	for _, p := range []string{PrefixSuccess, PrefixUserError, PrefixError} {
		if strings.HasPrefix(message, p) {
			return strings.TrimSpace(message[len(p):])
		}
	}
	return strings.TrimSpace(message)
}

// ══════════════════════════════════════════════════════════════════════════════
// API ERROR
// ══════════════════════════════════════════════════════════════════════════════

// Kind classifies a failed backend call.
type Kind int

const (
	// KindUnexpected is a failure the backend did not describe: a non-JSON
	// body, a missing error field or an unknown prefix.
	KindUnexpected Kind = iota
	// KindUser is a UERROR: the user can correct the input.
	KindUser
	// KindServer is an ERROR: a generic server-side failure.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindServer:
		return "server"
	default:
		return "unexpected"
	}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Kind     Kind
	Message  string // raw error text, prefix included
	Status   int
	Endpoint string
}

// Classify returns the Kind of a raw backend error string.
func Classify(message string) Kind {
	switch {
	case strings.HasPrefix(message, PrefixUserError):
		return KindUser
	case strings.HasPrefix(message, PrefixError):
		return KindServer
	default:
		return KindUnexpected
	}
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	msg := parseEnvelope(body).errorText()
	return &APIError{
		Kind:     Classify(msg),
		Message:  msg,
		Status:   status,
		Endpoint: endpoint,
	}
}

// Text is the message for display, without its prefix.
func (e *APIError) Text() string {
	if e.Kind == KindUnexpected {
		return UnexpectedText
	}
	return StripPrefix(e.Message)
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("recyclify %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("recyclify %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Temporary reports whether the call may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Is maps the error onto the shared sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case shared.ErrForbidden:
		return e.Status == http.StatusForbidden
	case shared.ErrNotFound:
		return e.Status == http.StatusNotFound
	case shared.ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case shared.ErrInvalidInput:
		return e.Kind == KindUser
	case shared.ErrExternalService:
		return e.Kind != KindUser
	}
	return false
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUserError reports a UERROR response.
func IsUserError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindUser
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSPORT ERROR
// ══════════════════════════════════════════════════════════════════════════════

// TransportError is a failure to get any response at all.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("recyclify %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == shared.ErrServiceUnavailable || target == shared.ErrExternalService
}

// temporary decides what the retrier repeats: transport failures, 429 and 5xx.
func temporary(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Temporary()
	}
	return false
}

// Message returns the text to show for any error returned by the client.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Text()
	}
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, shared.ErrServiceUnavailable) {
		return "Could not reach the Recyclify server. Please try again later."
	}
	return UnexpectedText
}
