package dto

import (
	"time"

	"github.com/finance-tracker/period-engine/internal/application/usecase/recurring"
)

// CreateRecurringTemplateRequest represents the request body for template creation.
type CreateRecurringTemplateRequest struct {
	Description string  `json:"description" binding:"required,min=1,max=255"`
	Amount      string  `json:"amount" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=expense income"`
	WalletID    string  `json:"wallet_id" binding:"required"`
	CategoryID  *string `json:"category_id,omitempty"`
	DayOfMonth  int     `json:"day_of_month" binding:"required,min=1,max=31"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     *string `json:"end_date,omitempty"`
}

// UpdateRecurringTemplateRequest represents the request body for activating or deactivating a template.
type UpdateRecurringTemplateRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// TriggerOccurrenceRequest represents the request body for on-demand generation.
type TriggerOccurrenceRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// RecurringTemplateResponse represents a recurring template in API responses.
type RecurringTemplateResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	WalletID    string    `json:"wallet_id"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Frequency   string    `json:"frequency"`
	DayOfMonth  int       `json:"day_of_month"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecurringTemplateListResponse represents a list of templates.
type RecurringTemplateListResponse struct {
	Templates []RecurringTemplateResponse `json:"templates"`
}

// OccurrenceResponse represents the outcome of one template period.
type OccurrenceResponse struct {
	ID            string    `json:"id"`
	TemplateID    string    `json:"template_id"`
	Period        string    `json:"period"`
	ScheduledDate string    `json:"scheduled_date"`
	Outcome       string    `json:"outcome"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	Error         *string   `json:"error,omitempty"`
	Attempts      int       `json:"attempts"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// GenerateOccurrenceResponse represents the result of an on-demand generation.
type GenerateOccurrenceResponse struct {
	Occurrence OccurrenceResponse `json:"occurrence"`
	Existing   bool               `json:"existing"`
}

// OccurrenceListResponse represents the occurrence history.
type OccurrenceListResponse struct {
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

// ToRecurringTemplateResponse converts a TemplateOutput to a RecurringTemplateResponse.
func ToRecurringTemplateResponse(output *recurring.TemplateOutput) RecurringTemplateResponse {
	var endDate *string
	if output.EndDate != nil {
		formatted := output.EndDate.Format(time.DateOnly)
		endDate = &formatted
	}

	return RecurringTemplateResponse{
		ID:          output.ID.String(),
		Description: output.Description,
		Amount:      output.Amount.StringFixed(2),
		Type:        string(output.Type),
		WalletID:    output.WalletID.String(),
		CategoryID:  uuidString(output.CategoryID),
		Frequency:   string(output.Frequency),
		DayOfMonth:  output.DayOfMonth,
		StartDate:   output.StartDate.Format(time.DateOnly),
		EndDate:     endDate,
		Active:      output.Active,
		CreatedAt:   output.CreatedAt,
		UpdatedAt:   output.UpdatedAt,
	}
}

// ToRecurringTemplateListResponse converts template outputs to a list response.
func ToRecurringTemplateListResponse(outputs []*recurring.TemplateOutput) RecurringTemplateListResponse {
	templates := make([]RecurringTemplateResponse, len(outputs))
	for i, output := range outputs {
		templates[i] = ToRecurringTemplateResponse(output)
	}
	return RecurringTemplateListResponse{Templates: templates}
}

// ToOccurrenceResponse converts an OccurrenceOutput to an OccurrenceResponse.
func ToOccurrenceResponse(output *recurring.OccurrenceOutput) OccurrenceResponse {
	return OccurrenceResponse{
		ID:            output.ID.String(),
		TemplateID:    output.TemplateID.String(),
		Period:        output.Period.String(),
		ScheduledDate: output.ScheduledDate.Format(time.DateOnly),
		Outcome:       string(output.Outcome),
		TransactionID: uuidString(output.TransactionID),
		Error:         output.ErrorMessage,
		Attempts:      output.Attempts,
		GeneratedAt:   output.GeneratedAt,
	}
}

// ToGenerateOccurrenceResponse converts a GenerateOccurrenceOutput to its response.
func ToGenerateOccurrenceResponse(output *recurring.GenerateOccurrenceOutput) GenerateOccurrenceResponse {
	return GenerateOccurrenceResponse{
		Occurrence: ToOccurrenceResponse(output.Occurrence),
		Existing:   output.Existing,
	}
}

// ToOccurrenceListResponse converts occurrence outputs to a list response.
func ToOccurrenceListResponse(outputs []*recurring.OccurrenceOutput) OccurrenceListResponse {
	occurrences := make([]OccurrenceResponse, len(outputs))
	for i, output := range outputs {
		occurrences[i] = ToOccurrenceResponse(output)
	}
	return OccurrenceListResponse{Occurrences: occurrences}
}
