package recurring

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/application/usecase/period"
	"github.com/finance-tracker/period-engine/internal/application/usecase/transaction"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
	"github.com/finance-tracker/period-engine/internal/integration/adapters"
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
	db             *gorm.DB
	uow            adapter.UnitOfWork
	templateRepo   adapter.RecurringTemplateRepository
	occurrenceRepo adapter.RecurringOccurrenceRepository
	guard          *period.Guard
	writer         *transaction.LedgerWriter
	clock          fixedClock
	createTemplate *CreateTemplateUseCase
	closePeriod    *period.ClosePeriodUseCase
	reopenPeriod   *period.ReopenPeriodUseCase
	owner          uuid.UUID
	walletID       uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	db := persistencetest.NewDB(t)
	uow := persistence.NewUnitOfWork(db)
	templateRepo := persistence.NewRecurringTemplateRepository(db)
	walletRepo := persistence.NewWalletRepository(db)
	clock := fixedClock{now: time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)}
	periodRepo := persistence.NewPeriodRepository(db, clock)
	guard := period.NewGuard(periodRepo, metrics.Noop{})

	owner := uuid.New()
	wallet := model.WalletModel{ID: uuid.New(), OwnerID: owner, Name: "Checking", Type: string(entity.WalletTypeChecking)}
	require.NoError(t, db.Create(&wallet).Error)

	return &fixture{
		db:             db,
		uow:            uow,
		templateRepo:   templateRepo,
		occurrenceRepo: persistence.NewRecurringOccurrenceRepository(db),
		guard:          guard,
		writer:         transaction.NewLedgerWriter(guard, persistence.NewTransactionRepository(db)),
		clock:          clock,
		createTemplate: NewCreateTemplateUseCase(templateRepo, walletRepo),
		closePeriod:    period.NewClosePeriodUseCase(uow, periodRepo, nil, metrics.Noop{}, clock),
		reopenPeriod:   period.NewReopenPeriodUseCase(uow, periodRepo, metrics.Noop{}, clock),
		owner:          owner,
		walletID:       wallet.ID,
	}
}

func (f *fixture) generator(policy CrossBoundaryPolicy) *GenerateOccurrenceUseCase {
	return NewGenerateOccurrenceUseCase(f.uow, f.occurrenceRepo, f.guard, f.writer, metrics.Noop{}, f.clock, policy)
}

func (f *fixture) template(t *testing.T, day int) *entity.RecurringTemplate {
	t.Helper()
	output, err := f.createTemplate.Execute(context.Background(), CreateTemplateInput{
		OwnerID:     f.owner,
		Amount:      decimal.NewFromInt(1200),
		Type:        entity.TransactionTypeExpense,
		Description: "Rent",
		WalletID:    f.walletID,
		DayOfMonth:  day,
		StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	template, err := f.templateRepo.FindByID(context.Background(), output.ID)
	require.NoError(t, err)
	return template
}

func (f *fixture) close(t *testing.T, year, month int) {
	t.Helper()
	_, err := f.closePeriod.Execute(context.Background(), period.TransitionInput{OwnerID: f.owner, Year: year, Month: month, ActorID: f.owner})
	require.NoError(t, err)
}

func (f *fixture) generatedTransactions(t *testing.T, templateID uuid.UUID) []model.TransactionModel {
	t.Helper()
	var rows []model.TransactionModel
	require.NoError(t, f.db.Where("recurring_template_id = ?", templateID).Find(&rows).Error)
	return rows
}

func TestGenerateOccurrence_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	template := f.template(t, 31)
	generator := f.generator(CrossBoundaryStrict)
	february := valueobject.NewPeriodKey(2024, 2)

	first, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: february})
	require.NoError(t, err)
	assert.False(t, first.Existing)
	assert.Equal(t, entity.OccurrenceGenerated, first.Occurrence.Outcome)
	assert.Equal(t, "2024-02-29", first.Occurrence.ScheduledDate.Format(time.DateOnly))
	require.NotNil(t, first.Occurrence.TransactionID)

	second, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: february})
	require.NoError(t, err)
	assert.True(t, second.Existing)
	assert.Equal(t, first.Occurrence.ID, second.Occurrence.ID)

	rows := f.generatedTransactions(t, template.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, *first.Occurrence.TransactionID, rows[0].ID)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(-1200)))
	assert.True(t, rows[0].IsRecurring)
}

func TestGenerateOccurrence_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	template := f.template(t, 5)
	generator := f.generator(CrossBoundaryStrict)
	march := valueobject.NewPeriodKey(2024, 3)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		fresh     atomic.Int32
		winnerIDs sync.Map
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			output, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: march})
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, entity.OccurrenceGenerated, output.Occurrence.Outcome)
			if !output.Existing {
				fresh.Add(1)
			}
			winnerIDs.Store(output.Occurrence.ID, true)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), fresh.Load(), "exactly one attempt generates")
	assert.Len(t, f.generatedTransactions(t, template.ID), 1)

	var ids int
	winnerIDs.Range(func(_, _ any) bool {
		ids++
		return true
	})
	assert.Equal(t, 1, ids, "every attempt reports the same occurrence")
}

func TestGenerateOccurrence_ClosedPeriod(t *testing.T) {
	ctx := context.Background()
	march := valueobject.NewPeriodKey(2024, 3)

	t.Run("strict records a failed occurrence and retries after reopen", func(t *testing.T) {
		f := newFixture(t)
		template := f.template(t, 15)
		generator := f.generator(CrossBoundaryStrict)
		f.close(t, 2024, 3)

		output, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: march})
		require.NoError(t, err)
		assert.Equal(t, entity.OccurrenceFailed, output.Occurrence.Outcome)
		require.NotNil(t, output.Occurrence.ErrorMessage)
		assert.Equal(t, "period 2024-03 is closed", *output.Occurrence.ErrorMessage)
		assert.Empty(t, f.generatedTransactions(t, template.ID))

		_, err = f.reopenPeriod.Execute(ctx, period.TransitionInput{OwnerID: f.owner, Year: 2024, Month: 3, ActorID: f.owner})
		require.NoError(t, err)

		retry, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: march})
		require.NoError(t, err)
		assert.Equal(t, entity.OccurrenceGenerated, retry.Occurrence.Outcome)
		assert.Equal(t, output.Occurrence.ID, retry.Occurrence.ID)
		assert.Equal(t, 2, retry.Occurrence.Attempts)
		assert.Nil(t, retry.Occurrence.ErrorMessage)
	})

	t.Run("next_open posts into the first open period", func(t *testing.T) {
		f := newFixture(t)
		template := f.template(t, 31)
		generator := f.generator(CrossBoundaryNextOpen)
		f.close(t, 2024, 3)
		f.close(t, 2024, 4)

		output, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: march})
		require.NoError(t, err)
		assert.Equal(t, entity.OccurrenceGenerated, output.Occurrence.Outcome)
		assert.Equal(t, march, output.Occurrence.Period)
		assert.Equal(t, "2024-05-31", output.Occurrence.ScheduledDate.Format(time.DateOnly))

		rows := f.generatedTransactions(t, template.ID)
		require.Len(t, rows, 1)
		assert.Equal(t, "2024-05-31", rows[0].Date.Format(time.DateOnly))
	})
}

func TestGenerateOccurrence_Canceled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	template := f.template(t, 1)
	generator := f.generator(CrossBoundaryStrict)

	t.Run("period before the template start", func(t *testing.T) {
		output, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: valueobject.NewPeriodKey(2023, 12)})
		require.NoError(t, err)
		assert.Equal(t, entity.OccurrenceCanceled, output.Occurrence.Outcome)
	})

	t.Run("inactive template", func(t *testing.T) {
		setActive := NewSetTemplateActiveUseCase(f.templateRepo, f.clock)
		_, err := setActive.Execute(ctx, SetTemplateActiveInput{OwnerID: f.owner, TemplateID: template.ID, Active: false})
		require.NoError(t, err)

		stored, err := f.templateRepo.FindByID(ctx, template.ID)
		require.NoError(t, err)
		require.False(t, stored.Active)

		output, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: stored, Period: valueobject.NewPeriodKey(2024, 4)})
		require.NoError(t, err)
		assert.Equal(t, entity.OccurrenceCanceled, output.Occurrence.Outcome)
		assert.Empty(t, f.generatedTransactions(t, template.ID))

		again, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: valueobject.NewPeriodKey(2024, 4)})
		require.NoError(t, err)
		assert.True(t, again.Existing, "canceled is terminal")
	})
}

type flakyCreator struct {
	next  adapter.TransactionCreator
	fails atomic.Int32
}

func (c *flakyCreator) CreateTransaction(ctx context.Context, txn *entity.Transaction) (*entity.Transaction, error) {
	if c.fails.Add(-1) >= 0 {
		return nil, errors.New("ledger unavailable")
	}
	return c.next.CreateTransaction(ctx, txn)
}

func TestGenerateOccurrence_CreatorFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	template := f.template(t, 10)
	creator := &flakyCreator{next: f.writer}
	creator.fails.Store(1)
	generator := NewGenerateOccurrenceUseCase(f.uow, f.occurrenceRepo, f.guard, creator, metrics.Noop{}, f.clock, CrossBoundaryStrict)
	april := valueobject.NewPeriodKey(2024, 4)

	failed, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: april})
	require.NoError(t, err)
	assert.Equal(t, entity.OccurrenceFailed, failed.Occurrence.Outcome)
	assert.Equal(t, "ledger unavailable", *failed.Occurrence.ErrorMessage)

	history, err := NewListOccurrencesUseCase(f.occurrenceRepo).Execute(ctx, ListOccurrencesInput{OwnerID: f.owner, TemplateID: &template.ID})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.OccurrenceFailed, history[0].Outcome)

	generated, err := generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: april})
	require.NoError(t, err)
	assert.Equal(t, entity.OccurrenceGenerated, generated.Occurrence.Outcome)
	assert.Len(t, f.generatedTransactions(t, template.ID), 1)
}

// racingRepository hides the stored occurrence from the first lookup, so the attempt
// behaves like one that lost a race to a concurrent generator.
type racingRepository struct {
	adapter.RecurringOccurrenceRepository
	hidden atomic.Bool
}

func (r *racingRepository) FindByTemplateAndPeriod(ctx context.Context, templateID uuid.UUID, key valueobject.PeriodKey) (*entity.RecurringOccurrence, error) {
	if r.hidden.CompareAndSwap(false, true) {
		return nil, domainerror.ErrOccurrenceNotFound
	}
	return r.RecurringOccurrenceRepository.FindByTemplateAndPeriod(ctx, templateID, key)
}

func TestGenerateOccurrence_LostRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	template := f.template(t, 10)
	june := valueobject.NewPeriodKey(2024, 6)

	winner, err := f.generator(CrossBoundaryStrict).Execute(ctx, GenerateOccurrenceInput{Template: template, Period: june})
	require.NoError(t, err)

	loser := NewGenerateOccurrenceUseCase(f.uow, &racingRepository{RecurringOccurrenceRepository: f.occurrenceRepo}, f.guard, f.writer, metrics.Noop{}, f.clock, CrossBoundaryStrict)
	output, err := loser.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: june})
	require.NoError(t, err)
	assert.True(t, output.Existing)
	assert.Equal(t, winner.Occurrence.ID, output.Occurrence.ID)
	assert.Len(t, f.generatedTransactions(t, template.ID), 1, "the loser's transaction is rolled back")
}

func TestGenerateOccurrence_Canceled_Context(t *testing.T) {
	f := newFixture(t)
	template := f.template(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	output, err := f.generator(CrossBoundaryStrict).Execute(ctx, GenerateOccurrenceInput{Template: template, Period: valueobject.NewPeriodKey(2024, 5)})
	require.NoError(t, err)
	assert.Equal(t, entity.OccurrenceFailed, output.Occurrence.Outcome)
	assert.Contains(t, *output.Occurrence.ErrorMessage, context.Canceled.Error())
	assert.Empty(t, f.generatedTransactions(t, template.ID))
}

func TestGenerateOccurrence_InvalidInput(t *testing.T) {
	f := newFixture(t)
	generator := f.generator(CrossBoundaryStrict)

	_, err := generator.Execute(context.Background(), GenerateOccurrenceInput{Period: valueobject.NewPeriodKey(2024, 1)})
	assert.ErrorIs(t, err, domainerror.ErrTemplateRequired)

	_, err = generator.Execute(context.Background(), GenerateOccurrenceInput{Template: f.template(t, 1), Period: valueobject.NewPeriodKey(2024, 13)})
	assert.ErrorIs(t, err, domainerror.ErrInvalidPeriod)
}

func TestCreateTemplateUseCase_Validation(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)

	valid := func() CreateTemplateInput {
		return CreateTemplateInput{
			OwnerID:     f.owner,
			Amount:      decimal.NewFromInt(10),
			Type:        entity.TransactionTypeIncome,
			Description: "Salary",
			WalletID:    f.walletID,
			DayOfMonth:  5,
			StartDate:   start,
		}
	}

	tests := []struct {
		name   string
		mutate func(*CreateTemplateInput)
		code   domainerror.RecurringErrorCode
	}{
		{"empty description", func(in *CreateTemplateInput) { in.Description = "" }, domainerror.ErrCodeRecurringDescription},
		{"invalid type", func(in *CreateTemplateInput) { in.Type = "transfer" }, domainerror.ErrCodeInvalidRecurringType},
		{"zero amount", func(in *CreateTemplateInput) { in.Amount = decimal.Zero }, domainerror.ErrCodeInvalidRecurringAmount},
		{"day out of range", func(in *CreateTemplateInput) { in.DayOfMonth = 32 }, domainerror.ErrCodeInvalidCadence},
		{"end before start", func(in *CreateTemplateInput) { in.EndDate = &before }, domainerror.ErrCodeInvalidTemplateDates},
		{"foreign wallet", func(in *CreateTemplateInput) { in.OwnerID = uuid.New() }, domainerror.ErrCodeRecurringWalletNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			tt.mutate(&input)
			_, err := f.createTemplate.Execute(context.Background(), input)
			var recErr *domainerror.RecurringError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.code, recErr.Code)
		})
	}

	output, err := f.createTemplate.Execute(context.Background(), valid())
	require.NoError(t, err)
	assert.True(t, output.Amount.Equal(decimal.NewFromInt(10)), "income stays positive")
	assert.True(t, output.Active)
}

func TestTriggerOccurrenceUseCase_Ownership(t *testing.T) {
	f := newFixture(t)
	template := f.template(t, 1)
	trigger := NewTriggerOccurrenceUseCase(f.templateRepo, f.generator(CrossBoundaryStrict))

	_, err := trigger.Execute(context.Background(), TriggerOccurrenceInput{OwnerID: uuid.New(), TemplateID: template.ID, Year: 2024, Month: 2})
	assert.ErrorIs(t, err, domainerror.ErrNotAuthorizedToModifyTemplate)

	_, err = trigger.Execute(context.Background(), TriggerOccurrenceInput{OwnerID: f.owner, TemplateID: uuid.New(), Year: 2024, Month: 2})
	assert.ErrorIs(t, err, domainerror.ErrTemplateNotFound)

	output, err := trigger.Execute(context.Background(), TriggerOccurrenceInput{OwnerID: f.owner, TemplateID: template.ID, Year: 2024, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, entity.OccurrenceGenerated, output.Occurrence.Outcome)
}

func TestRunDueTemplatesUseCase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	early := f.template(t, 10)
	late := f.template(t, 25)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	runner := NewRunDueTemplatesUseCase(
		f.templateRepo,
		f.occurrenceRepo,
		f.generator(CrossBoundaryStrict),
		adapters.NewRedisLease(client),
		metrics.Noop{},
		f.clock,
		RunDueConfig{Concurrency: 3, UnitTimeout: 5 * time.Second, LookbackPeriods: 2, LeaseTTL: time.Minute},
	)

	// Clock is 2024-05-20: March, April and May are due for the 10th, only March and April for the 25th.
	output, err := runner.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, output.Templates)
	assert.Equal(t, 5, output.Dispatched)
	assert.Equal(t, 5, output.Generated)
	assert.Len(t, f.generatedTransactions(t, early.ID), 3)
	assert.Len(t, f.generatedTransactions(t, late.ID), 2)
	assert.Empty(t, server.Keys(), "leases are released")

	again, err := runner.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Dispatched, "terminal occurrences are not dispatched again")

	t.Run("held lease skips the unit", func(t *testing.T) {
		f := newFixture(t)
		template := f.template(t, 1)
		key := "period-engine:lease:recurring:" + template.ID.String() + ":2024-05"
		require.NoError(t, server.Set(key, "other-worker"))

		runner := NewRunDueTemplatesUseCase(
			f.templateRepo, f.occurrenceRepo, f.generator(CrossBoundaryStrict),
			adapters.NewRedisLease(client), metrics.Noop{}, f.clock,
			RunDueConfig{Concurrency: 1, LookbackPeriods: 0},
		)
		output, err := runner.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, output.Leased)
		assert.Zero(t, output.Generated)
	})
}
