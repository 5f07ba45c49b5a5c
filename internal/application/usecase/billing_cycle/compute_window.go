// Package billingcycle contains statement cycle use cases for credit-style instruments.
package billingcycle

import (
	"fmt"
	"time"

	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// ComputeWindowInput represents the input for computing a billing window.
type ComputeWindowInput struct {
	ClosingDay    int
	DueDay        int
	ReferenceDate time.Time
}

// WindowOutput represents a computed billing window.
type WindowOutput struct {
	OpensOn  time.Time
	ClosesOn time.Time
	DueOn    time.Time
	Cycle    valueobject.PeriodKey // Period the statement closes in
}

func toWindowOutput(window valueobject.BillingWindow) *WindowOutput {
	return &WindowOutput{
		OpensOn:  window.OpensOn,
		ClosesOn: window.ClosesOn,
		DueOn:    window.DueOn,
		Cycle:    window.CycleKey(),
	}
}

// ComputeWindowUseCase validates a billing configuration and computes its window.
type ComputeWindowUseCase struct{}

// NewComputeWindowUseCase creates a new ComputeWindowUseCase instance.
func NewComputeWindowUseCase() *ComputeWindowUseCase {
	return &ComputeWindowUseCase{}
}

// Execute returns the window containing the reference date.
func (uc *ComputeWindowUseCase) Execute(input ComputeWindowInput) (*WindowOutput, error) {
	config := valueobject.BillingCycleConfig{ClosingDay: input.ClosingDay, DueDay: input.DueDay}
	if err := validateCycle(config); err != nil {
		return nil, err
	}

	if input.ReferenceDate.IsZero() {
		return nil, domainerror.NewBillingCycleError(
			domainerror.ErrCodeMissingReferenceDate,
			"reference date is required",
			domainerror.ErrMissingReferenceDate,
		)
	}

	return toWindowOutput(config.WindowFor(input.ReferenceDate)), nil
}

func validateCycle(config valueobject.BillingCycleConfig) error {
	if config.IsValid() {
		return nil
	}
	if !valueobject.IsCycleDay(config.ClosingDay) {
		return domainerror.NewBillingCycleError(
			domainerror.ErrCodeInvalidClosingDay,
			fmt.Sprintf("closing day %d is outside %d..%d", config.ClosingDay, valueobject.MinCycleDay, valueobject.MaxCycleDay),
			domainerror.ErrInvalidClosingDay,
		)
	}
	return domainerror.NewBillingCycleError(
		domainerror.ErrCodeInvalidDueDay,
		fmt.Sprintf("due day %d is outside %d..%d", config.DueDay, valueobject.MinCycleDay, valueobject.MaxCycleDay),
		domainerror.ErrInvalidDueDay,
	)
}
