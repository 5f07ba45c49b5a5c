// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/middleware"
)

// StatusLocked is returned when a write targets a closed period.
const StatusLocked = http.StatusLocked

// handleError maps domain errors to HTTP responses.
func handleError(ctx *gin.Context, err error) {
	var (
		periodErr  *domainerror.PeriodError
		billingErr *domainerror.BillingCycleError
		recErr     *domainerror.RecurringError
		txnErr     *domainerror.TransactionError
	)

	switch {
	case errors.As(err, &periodErr):
		ctx.JSON(periodStatus(periodErr.Code), dto.ErrorResponse{
			Error: periodErr.Message,
			Code:  string(periodErr.Code),
		})
	case errors.As(err, &billingErr):
		ctx.JSON(billingStatus(billingErr.Code), dto.ErrorResponse{
			Error: billingErr.Message,
			Code:  string(billingErr.Code),
		})
	case errors.As(err, &recErr):
		ctx.JSON(recurringStatus(recErr.Code), dto.ErrorResponse{
			Error: recErr.Message,
			Code:  string(recErr.Code),
		})
	case errors.As(err, &txnErr):
		ctx.JSON(transactionStatus(txnErr.Code), dto.ErrorResponse{
			Error: txnErr.Message,
			Code:  string(txnErr.Code),
		})
	default:
		slog.ErrorContext(ctx.Request.Context(), "Request failed",
			"path", ctx.FullPath(),
			"error", err,
		)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
	}
}

func periodStatus(code domainerror.PeriodErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidPeriod:
		return http.StatusBadRequest
	case domainerror.ErrCodePeriodLocked:
		return StatusLocked
	case domainerror.ErrCodePeriodNotClosed:
		return http.StatusConflict
	case domainerror.ErrCodePeriodStatusUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func billingStatus(code domainerror.BillingErrorCode) int {
	switch code {
	case domainerror.ErrCodeWalletNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeWalletHasNoBillingCycle:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func recurringStatus(code domainerror.RecurringErrorCode) int {
	switch code {
	case domainerror.ErrCodeTemplateNotFound,
		domainerror.ErrCodeRecurringWalletNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeNotAuthorizedTemplate:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func transactionStatus(code domainerror.TransactionErrorCode) int {
	switch code {
	case domainerror.ErrCodeTransactionNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeNotAuthorizedTransaction,
		domainerror.ErrCodeTxnWalletNotOwned:
		return http.StatusForbidden
	case domainerror.ErrCodeInvalidTransactionType,
		domainerror.ErrCodeInvalidTransactionDate,
		domainerror.ErrCodeInvalidTransactionAmount,
		domainerror.ErrCodeDescriptionTooLong,
		domainerror.ErrCodeNotesTooLong,
		domainerror.ErrCodeMissingTransactionFields:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(ctx *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
	}
	return userID, ok
}

// periodParams parses the :year and :month path parameters or writes a 400.
func periodParams(ctx *gin.Context) (int, int, bool) {
	year, yearErr := strconv.Atoi(ctx.Param("year"))
	month, monthErr := strconv.Atoi(ctx.Param("month"))
	if yearErr != nil || monthErr != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid period. Use /:year/:month with numeric values",
			Code:  string(domainerror.ErrCodeInvalidPeriod),
		})
		return 0, 0, false
	}
	return year, month, true
}

// idParam parses the :id path parameter or writes a 400.
func idParam(ctx *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid " + what + " ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}
