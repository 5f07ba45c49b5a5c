// Package error defines domain-specific errors for the Finance Tracker application.
package error

import (
	"errors"
	"fmt"

	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// Period domain errors.
var (
	// ErrPeriodNotFound is returned when no row exists for a period. Callers treat it as open.
	ErrPeriodNotFound = errors.New("period not found")

	// ErrInvalidPeriod is returned when a year/month pair does not name a valid period.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidPeriodStatus is returned when a stored period carries an unknown status.
	ErrInvalidPeriodStatus = errors.New("invalid period status")

	// ErrPeriodLocked is returned when a write targets a closed period.
	ErrPeriodLocked = errors.New("period is closed")

	// ErrPeriodNotClosed is returned when an operation requires a closed period.
	ErrPeriodNotClosed = errors.New("period is not closed")

	// ErrPeriodStatusUnavailable is returned when the lock state of a period cannot be read.
	// Writes are refused in that case.
	ErrPeriodStatusUnavailable = errors.New("period status unavailable")
)

// PeriodErrorCode defines error codes for period errors.
// Format: PER-XXYYYY where XX is category and YYYY is specific error.
type PeriodErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidPeriod PeriodErrorCode = "PER-010001"

	// Lock state errors (02XXXX)
	ErrCodePeriodLocked    PeriodErrorCode = "PER-020001"
	ErrCodePeriodNotClosed PeriodErrorCode = "PER-020002"

	// Availability errors (03XXXX)
	ErrCodePeriodStatusUnavailable PeriodErrorCode = "PER-030001"
)

// PeriodError represents a period error with code, message and the period it concerns.
type PeriodError struct {
	Code    PeriodErrorCode
	Message string
	Key     valueobject.PeriodKey
	Err     error
}

// Error implements the error interface.
func (e *PeriodError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PeriodError) Unwrap() error {
	return e.Err
}

// NewPeriodError creates a new PeriodError with the given code and message.
func NewPeriodError(code PeriodErrorCode, message string, key valueobject.PeriodKey, err error) *PeriodError {
	return &PeriodError{
		Code:    code,
		Message: message,
		Key:     key,
		Err:     err,
	}
}

// NewPeriodLockedError reports a write rejected because the period is closed.
func NewPeriodLockedError(key valueobject.PeriodKey) *PeriodError {
	return NewPeriodError(ErrCodePeriodLocked, fmt.Sprintf("period %s is closed", key), key, ErrPeriodLocked)
}

// NewPeriodNotClosedError reports an operation that requires the period to be closed first.
func NewPeriodNotClosedError(key valueobject.PeriodKey) *PeriodError {
	return NewPeriodError(ErrCodePeriodNotClosed, fmt.Sprintf("period %s is not closed", key), key, ErrPeriodNotClosed)
}

// NewPeriodStatusUnavailableError reports a failed lock-state lookup. The cause is kept
// in the chain for logging.
func NewPeriodStatusUnavailableError(key valueobject.PeriodKey, cause error) *PeriodError {
	return NewPeriodError(
		ErrCodePeriodStatusUnavailable,
		fmt.Sprintf("status of period %s is unavailable", key),
		key,
		errors.Join(ErrPeriodStatusUnavailable, cause),
	)
}

// NewInvalidPeriodError reports a year/month pair outside the supported range.
func NewInvalidPeriodError(year, month int) *PeriodError {
	return NewPeriodError(
		ErrCodeInvalidPeriod,
		fmt.Sprintf("invalid period %04d-%02d", year, month),
		valueobject.PeriodKey{},
		ErrInvalidPeriod,
	)
}

// IsPeriodLocked reports whether err is (or wraps) a locked-period rejection.
func IsPeriodLocked(err error) bool {
	return errors.Is(err, ErrPeriodLocked)
}
