package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/period-engine/internal/application/usecase/period"
	"github.com/finance-tracker/period-engine/internal/application/usecase/rollover"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/dto"
)

// PeriodController handles period lock and rollover endpoints.
type PeriodController struct {
	getStatusUseCase     *period.GetStatusUseCase
	listUseCase          *period.ListPeriodsUseCase
	closeUseCase         *period.ClosePeriodUseCase
	reopenUseCase        *period.ReopenPeriodUseCase
	applyRolloverUseCase *rollover.ApplyRolloverUseCase
}

// NewPeriodController creates a new period controller instance.
func NewPeriodController(
	getStatusUseCase *period.GetStatusUseCase,
	listUseCase *period.ListPeriodsUseCase,
	closeUseCase *period.ClosePeriodUseCase,
	reopenUseCase *period.ReopenPeriodUseCase,
	applyRolloverUseCase *rollover.ApplyRolloverUseCase,
) *PeriodController {
	return &PeriodController{
		getStatusUseCase:     getStatusUseCase,
		listUseCase:          listUseCase,
		closeUseCase:         closeUseCase,
		reopenUseCase:        reopenUseCase,
		applyRolloverUseCase: applyRolloverUseCase,
	}
}

// List handles GET /periods?year= requests.
func (c *PeriodController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	year := time.Now().UTC().Year()
	if yearStr := ctx.Query("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid year",
				Code:  string(domainerror.ErrCodeInvalidPeriod),
			})
			return
		}
		year = parsed
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), period.ListPeriodsInput{OwnerID: userID, Year: year})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPeriodListResponse(year, output))
}

// GetStatus handles GET /periods/:year/:month requests.
func (c *PeriodController) GetStatus(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	year, month, ok := periodParams(ctx)
	if !ok {
		return
	}

	output, err := c.getStatusUseCase.Execute(ctx.Request.Context(), period.GetStatusInput{
		OwnerID: userID,
		Year:    year,
		Month:   month,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPeriodResponse(output))
}

// Close handles POST /periods/:year/:month/close requests.
func (c *PeriodController) Close(ctx *gin.Context) {
	c.transition(ctx, c.closeUseCase.Execute)
}

// Reopen handles POST /periods/:year/:month/reopen requests.
func (c *PeriodController) Reopen(ctx *gin.Context) {
	c.transition(ctx, c.reopenUseCase.Execute)
}

type transitionFunc func(ctx context.Context, input period.TransitionInput) (*period.TransitionOutput, error)

func (c *PeriodController) transition(ctx *gin.Context, execute transitionFunc) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	year, month, ok := periodParams(ctx)
	if !ok {
		return
	}

	output, err := execute(ctx.Request.Context(), period.TransitionInput{
		OwnerID: userID,
		Year:    year,
		Month:   month,
		ActorID: userID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPeriodTransitionResponse(output))
}

// ApplyRollover handles POST /periods/:year/:month/rollover requests.
func (c *PeriodController) ApplyRollover(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	year, month, ok := periodParams(ctx)
	if !ok {
		return
	}

	output, err := c.applyRolloverUseCase.Execute(ctx.Request.Context(), rollover.ApplyRolloverInput{
		OwnerID:   userID,
		FromYear:  year,
		FromMonth: month,
		Actor:     userID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	status := http.StatusCreated
	if output.AlreadyApplied {
		status = http.StatusOK
	}
	ctx.JSON(status, dto.ToRolloverResponse(output))
}
