package dto

import (
	"time"

	"github.com/finance-tracker/period-engine/internal/application/usecase/period"
	"github.com/finance-tracker/period-engine/internal/application/usecase/rollover"
)

// PeriodResponse represents a period's lock status in API responses.
type PeriodResponse struct {
	Period   string     `json:"period"`
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Status   string     `json:"status"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
	ClosedBy *string    `json:"closed_by,omitempty"`
}

// PeriodTransitionResponse represents the result of a close or reopen command.
type PeriodTransitionResponse struct {
	PeriodResponse
	Transitioned bool `json:"transitioned"`
}

// PeriodListResponse represents the periods of a year.
type PeriodListResponse struct {
	Year    int              `json:"year"`
	Periods []PeriodResponse `json:"periods"`
}

// RolloverResponse represents an applied rollover.
type RolloverResponse struct {
	ID             string    `json:"id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Amount         string    `json:"amount"`
	TransactionID  *string   `json:"transaction_id,omitempty"`
	AppliedAt      time.Time `json:"applied_at"`
	AppliedBy      string    `json:"applied_by"`
	AlreadyApplied bool      `json:"already_applied"`
}

// ToPeriodResponse converts a PeriodOutput to a PeriodResponse.
func ToPeriodResponse(output *period.PeriodOutput) PeriodResponse {
	return PeriodResponse{
		Period:   output.Key.String(),
		Year:     output.Key.Year,
		Month:    int(output.Key.Month),
		Status:   string(output.Status),
		ClosedAt: output.ClosedAt,
		ClosedBy: uuidString(output.ClosedBy),
	}
}

// ToPeriodTransitionResponse converts a TransitionOutput to a PeriodTransitionResponse.
func ToPeriodTransitionResponse(output *period.TransitionOutput) PeriodTransitionResponse {
	return PeriodTransitionResponse{
		PeriodResponse: ToPeriodResponse(output.Period),
		Transitioned:   output.Transitioned,
	}
}

// ToPeriodListResponse converts the periods of a year to a PeriodListResponse.
func ToPeriodListResponse(year int, outputs []*period.PeriodOutput) PeriodListResponse {
	periods := make([]PeriodResponse, len(outputs))
	for i, output := range outputs {
		periods[i] = ToPeriodResponse(output)
	}
	return PeriodListResponse{Year: year, Periods: periods}
}

// ToRolloverResponse converts a RolloverOutput to a RolloverResponse.
func ToRolloverResponse(output *rollover.RolloverOutput) RolloverResponse {
	return RolloverResponse{
		ID:             output.ID.String(),
		From:           output.From.String(),
		To:             output.To.String(),
		Amount:         output.Amount.StringFixed(2),
		TransactionID:  uuidString(output.TransactionID),
		AppliedAt:      output.AppliedAt,
		AppliedBy:      output.AppliedBy.String(),
		AlreadyApplied: output.AlreadyApplied,
	}
}
