package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/application/usecase/recurring"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/dto"
)

// RecurringController handles recurring template and occurrence endpoints.
type RecurringController struct {
	createUseCase          *recurring.CreateTemplateUseCase
	listUseCase            *recurring.ListTemplatesUseCase
	setActiveUseCase       *recurring.SetTemplateActiveUseCase
	triggerUseCase         *recurring.TriggerOccurrenceUseCase
	listOccurrencesUseCase *recurring.ListOccurrencesUseCase
}

// NewRecurringController creates a new recurring controller instance.
func NewRecurringController(
	createUseCase *recurring.CreateTemplateUseCase,
	listUseCase *recurring.ListTemplatesUseCase,
	setActiveUseCase *recurring.SetTemplateActiveUseCase,
	triggerUseCase *recurring.TriggerOccurrenceUseCase,
	listOccurrencesUseCase *recurring.ListOccurrencesUseCase,
) *RecurringController {
	return &RecurringController{
		createUseCase:          createUseCase,
		listUseCase:            listUseCase,
		setActiveUseCase:       setActiveUseCase,
		triggerUseCase:         triggerUseCase,
		listOccurrencesUseCase: listOccurrencesUseCase,
	}
}

// CreateTemplate handles POST /recurring/templates requests.
func (c *RecurringController) CreateTemplate(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateRecurringTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid amount",
			Code:  string(domainerror.ErrCodeInvalidRecurringAmount),
		})
		return
	}
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid wallet ID format",
		})
		return
	}
	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid start_date format. Use YYYY-MM-DD",
			Code:  string(domainerror.ErrCodeInvalidTemplateDates),
		})
		return
	}

	input := recurring.CreateTemplateInput{
		OwnerID:     userID,
		Amount:      amount,
		Type:        entity.TransactionType(req.Type),
		Description: req.Description,
		WalletID:    walletID,
		DayOfMonth:  req.DayOfMonth,
		StartDate:   startDate,
	}

	if req.EndDate != nil && *req.EndDate != "" {
		endDate, err := time.Parse(time.DateOnly, *req.EndDate)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid end_date format. Use YYYY-MM-DD",
				Code:  string(domainerror.ErrCodeInvalidTemplateDates),
			})
			return
		}
		input.EndDate = &endDate
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid category ID format",
			})
			return
		}
		input.CategoryID = &id
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRecurringTemplateResponse(output))
}

// ListTemplates handles GET /recurring/templates requests.
func (c *RecurringController) ListTemplates(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), recurring.ListTemplatesInput{
		OwnerID:    userID,
		ActiveOnly: ctx.Query("active") == "true",
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecurringTemplateListResponse(output))
}

// UpdateTemplate handles PATCH /recurring/templates/:id requests.
func (c *RecurringController) UpdateTemplate(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	templateID, ok := idParam(ctx, "template")
	if !ok {
		return
	}

	var req dto.UpdateRecurringTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	output, err := c.setActiveUseCase.Execute(ctx.Request.Context(), recurring.SetTemplateActiveInput{
		OwnerID:    userID,
		TemplateID: templateID,
		Active:     *req.Active,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecurringTemplateResponse(output))
}

// TriggerOccurrence handles POST /recurring/templates/:id/occurrences requests.
func (c *RecurringController) TriggerOccurrence(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	templateID, ok := idParam(ctx, "template")
	if !ok {
		return
	}

	var req dto.TriggerOccurrenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeInvalidRecurringPeriod),
		})
		return
	}

	output, err := c.triggerUseCase.Execute(ctx.Request.Context(), recurring.TriggerOccurrenceInput{
		OwnerID:    userID,
		TemplateID: templateID,
		Year:       req.Year,
		Month:      req.Month,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	status := http.StatusCreated
	if output.Existing {
		status = http.StatusOK
	}
	ctx.JSON(status, dto.ToGenerateOccurrenceResponse(output))
}

// ListOccurrences handles GET /recurring/occurrences requests.
func (c *RecurringController) ListOccurrences(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	input := recurring.ListOccurrencesInput{OwnerID: userID}

	if templateIDStr := ctx.Query("template_id"); templateIDStr != "" {
		id, err := uuid.Parse(templateIDStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid template ID format",
			})
			return
		}
		input.TemplateID = &id
	}

	yearStr, monthStr := ctx.Query("year"), ctx.Query("month")
	if yearStr != "" || monthStr != "" {
		year, yearErr := strconv.Atoi(yearStr)
		month, monthErr := strconv.Atoi(monthStr)
		if yearErr != nil || monthErr != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "year and month must be given together as numbers",
				Code:  string(domainerror.ErrCodeInvalidRecurringPeriod),
			})
			return
		}
		key := valueobject.NewPeriodKey(year, month)
		input.Period = &key
	}

	if outcomeStr := ctx.Query("outcome"); outcomeStr != "" {
		outcome := entity.OccurrenceOutcome(outcomeStr)
		input.Outcome = &outcome
	}

	output, err := c.listOccurrencesUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToOccurrenceListResponse(output))
}
