// Package shared holds the types every domain package uses: IDs, roles,
// leagues, domain events and the error vocabulary. It imports nothing
// outside the standard library.
package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Match them with errors.Is; the CLI picks its exit code and
// message from the kind.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidState = errors.New("invalid state")

	// Input the user can fix.
	ErrValidation    = errors.New("validation error")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidID     = errors.New("invalid ID")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrNegativeValue = errors.New("value cannot be negative")

	// Data from the backend that does not decode.
	ErrInvalidFormat = errors.New("invalid format")

	// Session and role.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Backend trouble.
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrRateLimited        = errors.New("rate limited")

	ErrFeatureDisabled = errors.New("feature disabled")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "session", "student", "reward"
	Op      string // Operation that failed, e.g., "FetchUser", "ClaimGift"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Session domain errors
var (
	ErrNoToken        = NewDomainError("session", "FetchUser", ErrUnauthorized, "no auth token stored")
	ErrSessionStale   = NewDomainError("session", "FetchUser", ErrInvalidState, "session changed while fetching")
	ErrInvalidProfile = NewDomainError("session", "FetchUser", ErrInvalidFormat, "user profile is malformed")
)

// Student domain errors
var (
	ErrGiftNotClaimable = NewDomainError("student", "ClaimGift", ErrInvalidState, "streak gift is not claimable yet")
	ErrStudentNotFound  = NewDomainError("student", "Find", ErrNotFound, "student not found")
)

// Leaderboard domain errors
var (
	ErrClassNotFound    = NewDomainError("leaderboard", "FindClass", ErrNotFound, "class not found")
	ErrUnknownSortKey   = NewDomainError("leaderboard", "Sort", ErrInvalidInput, "unknown sort column")
	ErrNoTopContributor = NewDomainError("leaderboard", "TopContributor", ErrNotFound, "class has no students")
)

// Reward domain errors
var (
	ErrRewardNotFound = NewDomainError("reward", "Find", ErrNotFound, "reward not found")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports input the user can correct and resubmit.
func IsValidation(err error) bool {
	for _, kind := range []error{ErrValidation, ErrInvalidID, ErrInvalidInput, ErrEmptyValue, ErrNegativeValue} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// ValidationError carries per-field messages for inline display next to inputs.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = message
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e when it holds field errors, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

// Field returns the message for field, or "".
func (e *ValidationError) Field(field string) string {
	return e.Fields[field]
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is implements errors.Is() matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldErrors wraps per-field messages as a ValidationError, or returns nil
// when fields is empty.
func FieldErrors(fields map[string]string) error {
	verr := NewValidationError()
	for field, msg := range fields {
		verr.Add(field, msg)
	}
	return verr.OrNil()
}
