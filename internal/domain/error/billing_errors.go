// Package error defines domain-specific errors for the Finance Tracker application.
package error

import "errors"

// Billing cycle domain errors.
var (
	// ErrInvalidClosingDay is returned when the closing day is outside 1..31.
	ErrInvalidClosingDay = errors.New("closing day must be between 1 and 31")

	// ErrInvalidDueDay is returned when the due day is outside 1..31.
	ErrInvalidDueDay = errors.New("due day must be between 1 and 31")

	// ErrMissingReferenceDate is returned when no reference date is supplied.
	ErrMissingReferenceDate = errors.New("reference date is required")

	// ErrWalletNotFound is returned when a wallet does not exist or is not owned by the caller.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletHasNoBillingCycle is returned when a wallet is not a credit card with a billing cycle.
	ErrWalletHasNoBillingCycle = errors.New("wallet has no billing cycle")
)

// BillingErrorCode defines error codes for billing cycle errors.
// Format: BIL-XXYYYY where XX is category and YYYY is specific error.
type BillingErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidClosingDay       BillingErrorCode = "BIL-010001"
	ErrCodeInvalidDueDay           BillingErrorCode = "BIL-010002"
	ErrCodeMissingReferenceDate    BillingErrorCode = "BIL-010003"
	ErrCodeInvalidReferenceDate    BillingErrorCode = "BIL-010004"
	ErrCodeWalletNotFound          BillingErrorCode = "BIL-010005"
	ErrCodeWalletHasNoBillingCycle BillingErrorCode = "BIL-010006"
)

// BillingCycleError represents a billing cycle error with code and message.
type BillingCycleError struct {
	Code    BillingErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BillingCycleError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *BillingCycleError) Unwrap() error {
	return e.Err
}

// NewBillingCycleError creates a new BillingCycleError with the given code and message.
func NewBillingCycleError(code BillingErrorCode, message string, err error) *BillingCycleError {
	return &BillingCycleError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
