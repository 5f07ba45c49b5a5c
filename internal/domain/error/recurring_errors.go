// Package error defines domain-specific errors for the Finance Tracker application.
package error

import "errors"

// Recurring domain errors.
var (
	// ErrTemplateRequired is returned when a generation is requested without a template.
	ErrTemplateRequired = errors.New("recurring template is required")

	// ErrTemplateNotFound is returned when a recurring template is not found.
	ErrTemplateNotFound = errors.New("recurring template not found")

	// ErrNotAuthorizedToModifyTemplate is returned when the template belongs to someone else.
	ErrNotAuthorizedToModifyTemplate = errors.New("not authorized to modify recurring template")

	// ErrInvalidCadence is returned when the cadence frequency or day is not supported.
	ErrInvalidCadence = errors.New("invalid cadence")

	// ErrInvalidTemplateDates is returned when the end date precedes the start date.
	ErrInvalidTemplateDates = errors.New("end date must not be before start date")

	// ErrOccurrenceNotFound is returned when no occurrence exists for a template and period.
	ErrOccurrenceNotFound = errors.New("recurring occurrence not found")

	// ErrDuplicateOccurrence is returned by storage when a concurrent attempt already
	// recorded the occurrence. Callers resolve it by reading the stored record.
	ErrDuplicateOccurrence = errors.New("recurring occurrence already recorded")
)

// RecurringErrorCode defines error codes for recurring template errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type RecurringErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeTemplateRequired        RecurringErrorCode = "REC-010001"
	ErrCodeInvalidRecurringPeriod  RecurringErrorCode = "REC-010002"
	ErrCodeInvalidRecurringAmount  RecurringErrorCode = "REC-010003"
	ErrCodeInvalidRecurringType    RecurringErrorCode = "REC-010004"
	ErrCodeInvalidCadence          RecurringErrorCode = "REC-010005"
	ErrCodeRecurringDescription    RecurringErrorCode = "REC-010006"
	ErrCodeInvalidTemplateDates    RecurringErrorCode = "REC-010007"
	ErrCodeRecurringWalletNotFound RecurringErrorCode = "REC-010008"
	ErrCodeTemplateNotFound        RecurringErrorCode = "REC-010009"
	ErrCodeNotAuthorizedTemplate   RecurringErrorCode = "REC-010010"
)

// RecurringError represents a recurring template error with code and message.
type RecurringError struct {
	Code    RecurringErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RecurringError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RecurringError) Unwrap() error {
	return e.Err
}

// NewRecurringError creates a new RecurringError with the given code and message.
func NewRecurringError(code RecurringErrorCode, message string, err error) *RecurringError {
	return &RecurringError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
