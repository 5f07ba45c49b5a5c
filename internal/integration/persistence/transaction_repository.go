// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction in the database.
func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := model.TransactionFromEntity(transaction)
	result := dbFromContext(ctx, r.db).Create(transactionModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a transaction by its ID.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	result := dbFromContext(ctx, r.db).Where("id = ?", id).First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return transactionModel.ToEntity(), nil
}

// Update updates an existing transaction.
func (r *transactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	result := dbFromContext(ctx, r.db).
		Model(&model.TransactionModel{}).
		Where("id = ?", transaction.ID).
		Updates(map[string]interface{}{
			"wallet_id":   transaction.WalletID,
			"date":        transaction.Date,
			"description": transaction.Description,
			"amount":      transaction.Amount,
			"type":        string(transaction.Type),
			"category_id": transaction.CategoryID,
			"notes":       transaction.Notes,
			"updated_at":  transaction.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTransactionNotFound
	}
	return nil
}

// Delete soft-deletes a transaction by setting deleted_at timestamp.
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Where("id = ?", id).Delete(&model.TransactionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTransactionNotFound
	}
	return nil
}

// GetTotals calculates income and expense totals for a user's transactions in [from, to).
func (r *transactionRepository) GetTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entity.TransactionTotals, error) {
	return r.totals(dbFromContext(ctx, r.db).
		Model(&model.TransactionModel{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to))
}

// GetWalletTotals calculates totals for the transactions of a wallet in [from, to).
func (r *transactionRepository) GetWalletTotals(ctx context.Context, walletID uuid.UUID, from, to time.Time) (*entity.TransactionTotals, error) {
	return r.totals(dbFromContext(ctx, r.db).
		Model(&model.TransactionModel{}).
		Where("wallet_id = ? AND date >= ? AND date < ?", walletID, from, to))
}

func (r *transactionRepository) totals(query *gorm.DB) (*entity.TransactionTotals, error) {
	var incomeResult struct {
		Total decimal.Decimal
	}
	if err := query.Session(&gorm.Session{}).
		Where("type = ?", string(entity.TransactionTypeIncome)).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&incomeResult).Error; err != nil {
		return nil, err
	}

	var expenseResult struct {
		Total decimal.Decimal
	}
	if err := query.Session(&gorm.Session{}).
		Where("type = ?", string(entity.TransactionTypeExpense)).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&expenseResult).Error; err != nil {
		return nil, err
	}

	return &entity.TransactionTotals{
		IncomeTotal:  incomeResult.Total,
		ExpenseTotal: expenseResult.Total,
		NetTotal:     incomeResult.Total.Add(expenseResult.Total),
	}, nil
}

// FindByRecurringTemplate retrieves the transactions generated from a template.
func (r *transactionRepository) FindByRecurringTemplate(ctx context.Context, templateID uuid.UUID) ([]*entity.Transaction, error) {
	var transactionModels []model.TransactionModel
	result := dbFromContext(ctx, r.db).
		Where("recurring_template_id = ?", templateID).
		Order("date ASC").
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}

	transactions := make([]*entity.Transaction, len(transactionModels))
	for i, tm := range transactionModels {
		tm := tm
		transactions[i] = tm.ToEntity()
	}
	return transactions, nil
}
