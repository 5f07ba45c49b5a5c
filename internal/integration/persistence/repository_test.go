package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/model"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/persistencetest"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestPeriodRepository_EnsureAndLock(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	clock := fixedClock{now: time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)}
	repo := NewPeriodRepository(db, clock)
	owner := uuid.New()
	key := valueobject.NewPeriodKey(2024, 3)

	_, err := repo.FindByKey(ctx, owner, key)
	require.ErrorIs(t, err, domainerror.ErrPeriodNotFound)

	first, err := repo.EnsureAndLock(ctx, owner, key, adapter.LockShare)
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodStatusOpen, first.Status)
	assert.Equal(t, key, first.Key)
	assert.True(t, first.CreatedAt.Equal(clock.now), "created_at comes from the injected clock")

	second, err := repo.EnsureAndLock(ctx, owner, key, adapter.LockUpdate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "ensuring twice must not create a second row")

	actor := uuid.New()
	now := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	require.True(t, second.Close(actor, now))
	require.NoError(t, repo.Update(ctx, second))

	stored, err := repo.FindByKey(ctx, owner, key)
	require.NoError(t, err)
	assert.True(t, stored.IsClosed())
	require.NotNil(t, stored.ClosedBy)
	assert.Equal(t, actor, *stored.ClosedBy)

	periods, err := repo.ListByOwner(ctx, owner, 2024)
	require.NoError(t, err)
	assert.Len(t, periods, 1)
}

func TestPeriodRepository_UnknownStoredStatus(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	repo := NewPeriodRepository(db, fixedClock{now: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)})
	owner := uuid.New()
	key := valueobject.NewPeriodKey(2024, 3)

	_, err := repo.EnsureAndLock(ctx, owner, key, adapter.LockUpdate)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.PeriodModel{}).
		Where("owner_id = ?", owner).
		Update("status", "archived").Error)

	_, err = repo.FindByKey(ctx, owner, key)
	assert.ErrorIs(t, err, domainerror.ErrInvalidPeriodStatus)

	_, err = repo.EnsureAndLock(ctx, owner, key, adapter.LockShare)
	assert.ErrorIs(t, err, domainerror.ErrInvalidPeriodStatus)

	_, err = repo.ListByOwner(ctx, owner, 2024)
	assert.ErrorIs(t, err, domainerror.ErrInvalidPeriodStatus)
}

func TestUnitOfWork_RollbackAndSavepoint(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	uow := NewUnitOfWork(db)
	repo := NewTransactionRepository(db)
	owner := uuid.New()
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("error rolls back every write", func(t *testing.T) {
		tx := entity.NewTransaction(owner, nil, date, "Rent", decimal.NewFromInt(-900), entity.TransactionTypeExpense, nil, "")
		boom := errors.New("boom")

		err := uow.Do(ctx, func(ctx context.Context) error {
			require.NoError(t, repo.Create(ctx, tx))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = repo.FindByID(ctx, tx.ID)
		assert.ErrorIs(t, err, domainerror.ErrTransactionNotFound)
	})

	t.Run("nested failure only rolls back the savepoint", func(t *testing.T) {
		kept := entity.NewTransaction(owner, nil, date, "Salary", decimal.NewFromInt(3000), entity.TransactionTypeIncome, nil, "")
		dropped := entity.NewTransaction(owner, nil, date, "Coffee", decimal.NewFromInt(-5), entity.TransactionTypeExpense, nil, "")

		err := uow.Do(ctx, func(ctx context.Context) error {
			if err := repo.Create(ctx, kept); err != nil {
				return err
			}
			nestedErr := uow.Do(ctx, func(ctx context.Context) error {
				if err := repo.Create(ctx, dropped); err != nil {
					return err
				}
				return errors.New("nested failure")
			})
			assert.Error(t, nestedErr)
			return nil
		})
		require.NoError(t, err)

		_, err = repo.FindByID(ctx, kept.ID)
		assert.NoError(t, err)
		_, err = repo.FindByID(ctx, dropped.ID)
		assert.ErrorIs(t, err, domainerror.ErrTransactionNotFound)
	})
}

func TestTransactionRepository_GetTotals(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	repo := NewTransactionRepository(db)
	owner := uuid.New()
	key := valueobject.NewPeriodKey(2024, 3)

	rows := []*entity.Transaction{
		entity.NewTransaction(owner, nil, key.DayClamped(1), "Salary", decimal.NewFromInt(3000), entity.TransactionTypeIncome, nil, ""),
		entity.NewTransaction(owner, nil, key.DayClamped(31), "Rent", decimal.NewFromInt(-900), entity.TransactionTypeExpense, nil, ""),
		entity.NewTransaction(owner, nil, key.Next().FirstDay(), "April rent", decimal.NewFromInt(-900), entity.TransactionTypeExpense, nil, ""),
		entity.NewTransaction(uuid.New(), nil, key.DayClamped(5), "Someone else", decimal.NewFromInt(-50), entity.TransactionTypeExpense, nil, ""),
	}
	for _, row := range rows {
		require.NoError(t, repo.Create(ctx, row))
	}
	require.NoError(t, repo.Delete(ctx, rows[1].ID))

	totals, err := repo.GetTotals(ctx, owner, key.FirstDay(), key.Next().FirstDay())
	require.NoError(t, err)
	assert.True(t, totals.IncomeTotal.Equal(decimal.NewFromInt(3000)), "income %s", totals.IncomeTotal)
	assert.True(t, totals.ExpenseTotal.IsZero(), "soft-deleted rows are excluded, got %s", totals.ExpenseTotal)
	assert.True(t, totals.NetTotal.Equal(decimal.NewFromInt(3000)))
}

func TestRecurringOccurrenceRepository_Save(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	repo := NewRecurringOccurrenceRepository(db)
	key := valueobject.NewPeriodKey(2024, 2)
	now := time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)
	template := entity.NewRecurringTemplate(
		uuid.New(), decimal.NewFromInt(-40), entity.TransactionTypeExpense, "Phone", nil, uuid.New(),
		entity.Cadence{Frequency: entity.RecurrenceMonthly, DayOfMonth: 1}, now, nil,
	)

	failed := entity.NewRecurringOccurrence(template, key, now)
	failed.MarkFailed(errors.New("temporary"), now)
	require.NoError(t, repo.Save(ctx, failed))
	assert.True(t, failed.IsPersisted())

	t.Run("second insert for the same template and period is a duplicate", func(t *testing.T) {
		other := entity.NewRecurringOccurrence(template, key, now)
		other.MarkGenerated(uuid.New(), now)
		assert.ErrorIs(t, repo.Save(ctx, other), domainerror.ErrDuplicateOccurrence)
	})

	t.Run("failed occurrence can be retried once", func(t *testing.T) {
		stored, err := repo.FindByTemplateAndPeriod(ctx, template.ID, key)
		require.NoError(t, err)
		require.True(t, stored.IsRetry())

		stale, err := repo.FindByTemplateAndPeriod(ctx, template.ID, key)
		require.NoError(t, err)

		txID := uuid.New()
		stored.MarkGenerated(txID, now)
		require.NoError(t, repo.Save(ctx, stored))

		stale.MarkGenerated(uuid.New(), now)
		assert.ErrorIs(t, repo.Save(ctx, stale), domainerror.ErrDuplicateOccurrence)

		final, err := repo.FindByTemplateAndPeriod(ctx, template.ID, key)
		require.NoError(t, err)
		assert.Equal(t, entity.OccurrenceGenerated, final.Outcome)
		assert.Equal(t, txID, *final.TransactionID)
		assert.Equal(t, 2, final.Attempts)
	})

	t.Run("list filters by template", func(t *testing.T) {
		occurrences, err := repo.List(ctx, adapter.OccurrenceFilter{OwnerID: template.OwnerID, TemplateID: &template.ID})
		require.NoError(t, err)
		assert.Len(t, occurrences, 1)

		otherTemplate := uuid.New()
		occurrences, err = repo.List(ctx, adapter.OccurrenceFilter{OwnerID: template.OwnerID, TemplateID: &otherTemplate})
		require.NoError(t, err)
		assert.Empty(t, occurrences)
	})
}

func TestRolloverRepository_Create(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	repo := NewRolloverRepository(db)
	owner := uuid.New()
	from := valueobject.NewPeriodKey(2024, 3)
	now := time.Now().UTC()

	_, err := repo.FindByPeriod(ctx, owner, from)
	require.ErrorIs(t, err, domainerror.ErrRolloverNotFound)

	first := entity.NewRolloverRecord(owner, from, decimal.NewFromInt(150), nil, owner, now)
	require.NoError(t, repo.Create(ctx, first))

	second := entity.NewRolloverRecord(owner, from, decimal.NewFromInt(150), nil, owner, now)
	assert.ErrorIs(t, repo.Create(ctx, second), domainerror.ErrDuplicateRollover)

	stored, err := repo.FindByPeriod(ctx, owner, from)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(150)))
}
