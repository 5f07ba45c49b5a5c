package transaction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/application/usecase/period"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/integration/metrics"
	"github.com/finance-tracker/period-engine/internal/integration/persistence"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/model"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/persistencetest"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type fixture struct {
	db              *gorm.DB
	transactionRepo adapter.TransactionRepository
	create          *CreateTransactionUseCase
	update          *UpdateTransactionUseCase
	delete          *DeleteTransactionUseCase
	closePeriod     *period.ClosePeriodUseCase
	reopenPeriod    *period.ReopenPeriodUseCase
}

func newFixture(t *testing.T) *fixture {
	db := persistencetest.NewDB(t)
	uow := persistence.NewUnitOfWork(db)
	transactionRepo := persistence.NewTransactionRepository(db)
	walletRepo := persistence.NewWalletRepository(db)
	clock := fixedClock{now: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)}
	periodRepo := persistence.NewPeriodRepository(db, clock)
	guard := period.NewGuard(periodRepo, metrics.Noop{})
	writer := NewLedgerWriter(guard, transactionRepo)

	return &fixture{
		db:              db,
		transactionRepo: transactionRepo,
		create:          NewCreateTransactionUseCase(uow, writer, walletRepo),
		update:          NewUpdateTransactionUseCase(uow, guard, transactionRepo, clock),
		delete:          NewDeleteTransactionUseCase(uow, guard, transactionRepo),
		closePeriod:     period.NewClosePeriodUseCase(uow, periodRepo, nil, metrics.Noop{}, clock),
		reopenPeriod:    period.NewReopenPeriodUseCase(uow, periodRepo, metrics.Noop{}, clock),
	}
}

func (f *fixture) createOn(t *testing.T, owner uuid.UUID, date time.Time) (*TransactionOutput, error) {
	t.Helper()
	return f.create.Execute(context.Background(), CreateTransactionInput{
		UserID:      owner,
		Date:        date,
		Description: "Groceries",
		Amount:      decimal.NewFromInt(80),
		Type:        entity.TransactionTypeExpense,
	})
}

func TestLockInvariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	march := time.Date(2024, time.March, 20, 15, 4, 5, 0, time.UTC)
	april := time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)

	inMarch, err := f.createOn(t, owner, march)
	require.NoError(t, err)
	assert.True(t, inMarch.Amount.Equal(decimal.NewFromInt(-80)), "expenses are stored negative")
	assert.Equal(t, "2024-03-20", inMarch.Date.Format(time.DateOnly))

	inApril, err := f.createOn(t, owner, april)
	require.NoError(t, err)

	_, err = f.closePeriod.Execute(ctx, period.TransitionInput{OwnerID: owner, Year: 2024, Month: 3, ActorID: owner})
	require.NoError(t, err)

	t.Run("create in a closed period fails", func(t *testing.T) {
		_, err := f.createOn(t, owner, march)
		require.ErrorIs(t, err, domainerror.ErrPeriodLocked)
		assert.EqualError(t, err, "period 2024-03 is closed")
	})

	t.Run("update inside a closed period fails", func(t *testing.T) {
		description := "Edited"
		_, err := f.update.Execute(ctx, UpdateTransactionInput{TransactionID: inMarch.ID, UserID: owner, Description: &description})
		assert.ErrorIs(t, err, domainerror.ErrPeriodLocked)
	})

	t.Run("moving a transaction into a closed period fails", func(t *testing.T) {
		_, err := f.update.Execute(ctx, UpdateTransactionInput{TransactionID: inApril.ID, UserID: owner, Date: &march})
		assert.ErrorIs(t, err, domainerror.ErrPeriodLocked)

		stored, err := f.transactionRepo.FindByID(ctx, inApril.ID)
		require.NoError(t, err)
		assert.Equal(t, time.April, stored.Date.Month(), "rejected update leaves the row untouched")
	})

	t.Run("delete inside a closed period fails", func(t *testing.T) {
		_, err := f.delete.Execute(ctx, DeleteTransactionInput{TransactionID: inMarch.ID, UserID: owner})
		assert.ErrorIs(t, err, domainerror.ErrPeriodLocked)
	})

	t.Run("other periods and owners are unaffected", func(t *testing.T) {
		_, err := f.createOn(t, owner, april)
		assert.NoError(t, err)
		_, err = f.createOn(t, uuid.New(), march)
		assert.NoError(t, err)
	})

	t.Run("writes succeed again after reopen", func(t *testing.T) {
		_, err := f.reopenPeriod.Execute(ctx, period.TransitionInput{OwnerID: owner, Year: 2024, Month: 3, ActorID: owner})
		require.NoError(t, err)

		_, err = f.createOn(t, owner, march)
		assert.NoError(t, err)
		_, err = f.delete.Execute(ctx, DeleteTransactionInput{TransactionID: inMarch.ID, UserID: owner})
		assert.NoError(t, err)
	})
}

func TestCreateTransactionUseCase_Validation(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	foreignWallet := model.WalletModel{ID: uuid.New(), OwnerID: uuid.New(), Name: "Other", Type: string(entity.WalletTypeChecking)}
	require.NoError(t, f.db.Create(&foreignWallet).Error)

	tests := []struct {
		name  string
		input CreateTransactionInput
		code  domainerror.TransactionErrorCode
	}{
		{
			name:  "invalid type",
			input: CreateTransactionInput{UserID: owner, Date: date, Amount: decimal.NewFromInt(1), Type: "transfer"},
			code:  domainerror.ErrCodeInvalidTransactionType,
		},
		{
			name:  "zero amount",
			input: CreateTransactionInput{UserID: owner, Date: date, Amount: decimal.Zero, Type: entity.TransactionTypeIncome},
			code:  domainerror.ErrCodeInvalidTransactionAmount,
		},
		{
			name:  "missing date",
			input: CreateTransactionInput{UserID: owner, Amount: decimal.NewFromInt(1), Type: entity.TransactionTypeIncome},
			code:  domainerror.ErrCodeInvalidTransactionDate,
		},
		{
			name:  "wallet of another user",
			input: CreateTransactionInput{UserID: owner, WalletID: &foreignWallet.ID, Date: date, Amount: decimal.NewFromInt(1), Type: entity.TransactionTypeIncome},
			code:  domainerror.ErrCodeTxnWalletNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.create.Execute(context.Background(), tt.input)
			var txnErr *domainerror.TransactionError
			require.ErrorAs(t, err, &txnErr)
			assert.Equal(t, tt.code, txnErr.Code)
		})
	}
}

func TestLockInvariant_ConcurrentCloseAndWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	date := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	const writers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.createOn(t, owner, date)
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domainerror.ErrPeriodLocked)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		_, err := f.closePeriod.Execute(ctx, period.TransitionInput{OwnerID: owner, Year: 2024, Month: 6, ActorID: owner})
		assert.NoError(t, err)
	}()
	close(start)
	wg.Wait()

	var stored int64
	require.NoError(t, f.db.Model(&model.TransactionModel{}).Where("user_id = ?", owner).Count(&stored).Error)
	assert.Equal(t, int64(accepted), stored, "every accepted write committed before the close")

	_, err := f.createOn(t, owner, date)
	assert.ErrorIs(t, err, domainerror.ErrPeriodLocked)
}
