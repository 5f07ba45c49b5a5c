package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	billingcycle "github.com/finance-tracker/period-engine/internal/application/usecase/billing_cycle"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/dto"
)

// BillingController handles credit card statement window endpoints.
type BillingController struct {
	computeUseCase      *billingcycle.ComputeWindowUseCase
	walletWindowUseCase *billingcycle.GetWalletWindowUseCase
}

// NewBillingController creates a new billing controller instance.
func NewBillingController(
	computeUseCase *billingcycle.ComputeWindowUseCase,
	walletWindowUseCase *billingcycle.GetWalletWindowUseCase,
) *BillingController {
	return &BillingController{
		computeUseCase:      computeUseCase,
		walletWindowUseCase: walletWindowUseCase,
	}
}

// ComputeWindow handles GET /billing-window requests.
func (c *BillingController) ComputeWindow(ctx *gin.Context) {
	closingDay, err := strconv.Atoi(ctx.Query("closing_day"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "closing_day must be a number between 1 and 31",
			Code:  string(domainerror.ErrCodeInvalidClosingDay),
		})
		return
	}
	dueDay, err := strconv.Atoi(ctx.Query("due_day"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "due_day must be a number between 1 and 31",
			Code:  string(domainerror.ErrCodeInvalidDueDay),
		})
		return
	}
	referenceDate, ok := referenceDateQuery(ctx)
	if !ok {
		return
	}

	input := billingcycle.ComputeWindowInput{
		ClosingDay: closingDay,
		DueDay:     dueDay,
	}
	if referenceDate != nil {
		input.ReferenceDate = *referenceDate
	}

	output, err := c.computeUseCase.Execute(input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBillingWindowResponse(output))
}

// WalletWindow handles GET /wallets/:id/billing-window requests.
func (c *BillingController) WalletWindow(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	walletID, ok := idParam(ctx, "wallet")
	if !ok {
		return
	}
	referenceDate, ok := referenceDateQuery(ctx)
	if !ok {
		return
	}

	output, err := c.walletWindowUseCase.Execute(ctx.Request.Context(), billingcycle.GetWalletWindowInput{
		UserID:        userID,
		WalletID:      walletID,
		ReferenceDate: referenceDate,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToWalletBillingWindowResponse(output))
}

func referenceDateQuery(ctx *gin.Context) (*time.Time, bool) {
	value := ctx.Query("reference_date")
	if value == "" {
		return nil, true
	}
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid reference_date format. Use YYYY-MM-DD",
			Code:  string(domainerror.ErrCodeInvalidReferenceDate),
		})
		return nil, false
	}
	return &date, true
}
