package rollover

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
	"github.com/finance-tracker/period-engine/internal/application/usecase/transaction"
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
	uow             adapter.UnitOfWork
	periodRepo      adapter.PeriodRepository
	transactionRepo adapter.TransactionRepository
	clock           fixedClock
	apply           *ApplyRolloverUseCase
	owner           uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	db := persistencetest.NewDB(t)
	uow := persistence.NewUnitOfWork(db)
	transactionRepo := persistence.NewTransactionRepository(db)
	clock := fixedClock{now: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	periodRepo := persistence.NewPeriodRepository(db, clock)
	guard := period.NewGuard(periodRepo, metrics.Noop{})
	writer := transaction.NewLedgerWriter(guard, transactionRepo)

	return &fixture{
		db:              db,
		uow:             uow,
		periodRepo:      periodRepo,
		transactionRepo: transactionRepo,
		clock:           clock,
		apply: NewApplyRolloverUseCase(
			uow, periodRepo, persistence.NewRolloverRepository(db), transactionRepo, writer, metrics.Noop{}, clock,
		),
		owner: uuid.New(),
	}
}

func (f *fixture) closePeriod(publisher adapter.PeriodEventPublisher) *period.ClosePeriodUseCase {
	return period.NewClosePeriodUseCase(f.uow, f.periodRepo, publisher, metrics.Noop{}, f.clock)
}

func (f *fixture) record(t *testing.T, date time.Time, amount int64) {
	t.Helper()
	transactionType := entity.TransactionTypeIncome
	if amount < 0 {
		transactionType = entity.TransactionTypeExpense
	}
	txn := entity.NewTransaction(f.owner, nil, date, "Seed", decimal.NewFromInt(amount), transactionType, nil, "")
	require.NoError(t, f.transactionRepo.Create(context.Background(), txn))
}

func (f *fixture) close(t *testing.T, year, month int) {
	t.Helper()
	_, err := f.closePeriod(nil).Execute(context.Background(), period.TransitionInput{OwnerID: f.owner, Year: year, Month: month, ActorID: f.owner})
	require.NoError(t, err)
}

func (f *fixture) rolloverTransactions(t *testing.T) []model.TransactionModel {
	t.Helper()
	var rows []model.TransactionModel
	require.NoError(t, f.db.Where("user_id = ? AND is_rollover = ?", f.owner, true).Order("date").Find(&rows).Error)
	return rows
}

func TestApplyRollover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	year, month := 2024, 3
	f.record(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 1000)
	f.record(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), -300)
	f.record(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), -50)

	t.Run("open period is rejected", func(t *testing.T) {
		_, err := f.apply.Execute(ctx, ApplyRolloverInput{OwnerID: f.owner, FromYear: year, FromMonth: month, Actor: f.owner})
		require.ErrorIs(t, err, domainerror.ErrPeriodNotClosed)
		assert.Empty(t, f.rolloverTransactions(t))
	})

	f.close(t, year, month)

	first, err := f.apply.Execute(ctx, ApplyRolloverInput{OwnerID: f.owner, FromYear: year, FromMonth: month, Actor: f.owner})
	require.NoError(t, err)
	assert.False(t, first.AlreadyApplied)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, "2024-04", first.To.String())
	require.NotNil(t, first.TransactionID)

	rows := f.rolloverTransactions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-04-01", rows[0].Date.Format(time.DateOnly))
	assert.Equal(t, string(entity.TransactionTypeIncome), rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(700)))

	second, err := f.apply.Execute(ctx, ApplyRolloverInput{OwnerID: f.owner, FromYear: year, FromMonth: month, Actor: uuid.New()})
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.rolloverTransactions(t), 1)

	t.Run("chained rollover carries the running balance", func(t *testing.T) {
		f.close(t, 2024, 4)
		output, err := f.apply.Execute(ctx, ApplyRolloverInput{OwnerID: f.owner, FromYear: 2024, FromMonth: 4, Actor: f.owner})
		require.NoError(t, err)
		assert.True(t, output.Amount.Equal(decimal.NewFromInt(650)))
	})
}

func TestApplyRollover_ZeroBalance(t *testing.T) {
	f := newFixture(t)
	f.record(t, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), 200)
	f.record(t, time.Date(2024, time.February, 11, 0, 0, 0, 0, time.UTC), -200)
	f.close(t, 2024, 2)

	output, err := f.apply.Execute(context.Background(), ApplyRolloverInput{OwnerID: f.owner, FromYear: 2024, FromMonth: 2, Actor: f.owner})
	require.NoError(t, err)
	assert.True(t, output.Amount.IsZero())
	assert.Nil(t, output.TransactionID)
	assert.Empty(t, f.rolloverTransactions(t))
}

func TestApplyRollover_NextPeriodLocked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.record(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), -90)
	f.close(t, 2024, 3)
	f.close(t, 2024, 4)

	_, err := f.apply.Execute(ctx, ApplyRolloverInput{OwnerID: f.owner, FromYear: 2024, FromMonth: 3, Actor: f.owner})
	require.ErrorIs(t, err, domainerror.ErrPeriodLocked)
	assert.EqualError(t, err, "period 2024-04 is closed")

	_, err = period.NewReopenPeriodUseCase(f.uow, f.periodRepo, metrics.Noop{}, f.clock).
		Execute(ctx, period.TransitionInput{OwnerID: f.owner, Year: 2024, Month: 4, ActorID: f.owner})
	require.NoError(t, err)

	output, err := f.apply.Execute(ctx, ApplyRolloverInput{OwnerID: f.owner, FromYear: 2024, FromMonth: 3, Actor: f.owner})
	require.NoError(t, err)
	assert.False(t, output.AlreadyApplied, "the rejected attempt recorded nothing")

	rows := f.rolloverTransactions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, string(entity.TransactionTypeExpense), rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(-90)))
}

func TestApplyRollover_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.record(t, time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC), 40)
	f.close(t, 2024, 5)

	const callers = 6
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[uuid.UUID]int{}
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			output, err := f.apply.Execute(ctx, ApplyRolloverInput{OwnerID: f.owner, FromYear: 2024, FromMonth: 5, Actor: f.owner})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[output.ID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1)
	assert.Len(t, f.rolloverTransactions(t), 1)
}

func TestApplyOnClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.record(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), 125)

	closePeriod := f.closePeriod(NewApplyOnClose(f.apply))
	output, err := closePeriod.Execute(ctx, period.TransitionInput{OwnerID: f.owner, Year: 2024, Month: 1, ActorID: f.owner})
	require.NoError(t, err)
	require.True(t, output.Transitioned)

	rows := f.rolloverTransactions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-02-01", rows[0].Date.Format(time.DateOnly))

	_, err = closePeriod.Execute(ctx, period.TransitionInput{OwnerID: f.owner, Year: 2024, Month: 1, ActorID: f.owner})
	require.NoError(t, err)
	assert.Len(t, f.rolloverTransactions(t), 1, "closing a closed period publishes nothing")
}

func TestApplyRollover_InvalidPeriod(t *testing.T) {
	f := newFixture(t)
	_, err := f.apply.Execute(context.Background(), ApplyRolloverInput{OwnerID: f.owner, FromYear: 2024, FromMonth: 0})
	assert.ErrorIs(t, err, domainerror.ErrInvalidPeriod)
}
