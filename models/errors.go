package models

import (
	"errors"
	"fmt"
)

// Error codes used for logging and retry decisions.
const (
	ErrCodeSession      = "SESSION_FAILED"
	ErrCodeCount        = "COUNT_UNAVAILABLE"
	ErrCodePageEmpty    = "PAGE_EMPTY"
	ErrCodeFetch        = "FETCH_FAILED"
	ErrCodeExhausted    = "PAGE_EXHAUSTED"
	ErrCodeAdvance      = "ADVANCE_FAILED"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// AcquireError is the internal error type carrying an error code and the
// category it happened in. It supports error wrapping via Unwrap.
type AcquireError struct {
	Code     string
	Category Category
	Message  string
	Err      error // wrapped original error
}

func (e *AcquireError) Error() string {
	prefix := e.Code
	if e.Category != "" {
		prefix = fmt.Sprintf("%s [%s]", e.Code, e.Category)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// NewAcquireError creates a new AcquireError.
func NewAcquireError(code string, category Category, message string, err error) *AcquireError {
	return &AcquireError{Code: code, Category: category, Message: message, Err: err}
}

// CodeOf returns the code of the first AcquireError in err's chain, or "".
func CodeOf(err error) string {
	var ae *AcquireError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsTransient reports whether a page fetch that failed with err may be
// retried for the same cursor. Only the outermost code counts: a per-request
// timeout wrapped in FETCH_FAILED is transient, but the caller must still
// stop once its own context is done.
func IsTransient(err error) bool {
	switch CodeOf(err) {
	case ErrCodePageEmpty, ErrCodeFetch:
		return true
	}
	return false
}
