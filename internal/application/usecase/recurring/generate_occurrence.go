package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// CrossBoundaryPolicy decides what happens when a cadence date falls in a closed period.
type CrossBoundaryPolicy string

const (
	// CrossBoundaryStrict records the occurrence as failed with the lock message.
	CrossBoundaryStrict CrossBoundaryPolicy = "strict"
	// CrossBoundaryNextOpen posts the transaction in the first open period after it.
	CrossBoundaryNextOpen CrossBoundaryPolicy = "next_open"
)

// IsValid reports whether the policy is known.
func (p CrossBoundaryPolicy) IsValid() bool {
	return p == CrossBoundaryStrict || p == CrossBoundaryNextOpen
}

const (
	// MaxForwardPeriods bounds the search for an open period under CrossBoundaryNextOpen.
	MaxForwardPeriods = 12

	failureRecordTimeout = 5 * time.Second
)

// GenerateOccurrenceInput represents the input for generating one template period.
type GenerateOccurrenceInput struct {
	Template *entity.RecurringTemplate
	Period   valueobject.PeriodKey
}

// GenerateOccurrenceOutput represents the occurrence stored for the template period.
type GenerateOccurrenceOutput struct {
	Occurrence *OccurrenceOutput
	// Existing is true when the returned occurrence was recorded by an earlier or
	// concurrent attempt and this call changed nothing.
	Existing bool
}

// GenerateOccurrenceUseCase materializes a recurring template into a period. Each
// (template, period) produces at most one ledger transaction however often or
// concurrently it is invoked.
type GenerateOccurrenceUseCase struct {
	uow            adapter.UnitOfWork
	occurrenceRepo adapter.RecurringOccurrenceRepository
	guard          adapter.PeriodGuard
	creator        adapter.TransactionCreator
	metrics        adapter.MetricsRecorder
	clock          adapter.Clock
	policy         CrossBoundaryPolicy
}

// NewGenerateOccurrenceUseCase creates a new GenerateOccurrenceUseCase instance.
func NewGenerateOccurrenceUseCase(
	uow adapter.UnitOfWork,
	occurrenceRepo adapter.RecurringOccurrenceRepository,
	guard adapter.PeriodGuard,
	creator adapter.TransactionCreator,
	metrics adapter.MetricsRecorder,
	clock adapter.Clock,
	policy CrossBoundaryPolicy,
) *GenerateOccurrenceUseCase {
	if !policy.IsValid() {
		policy = CrossBoundaryStrict
	}
	return &GenerateOccurrenceUseCase{
		uow:            uow,
		occurrenceRepo: occurrenceRepo,
		guard:          guard,
		creator:        creator,
		metrics:        metrics,
		clock:          clock,
		policy:         policy,
	}
}

// Execute generates the occurrence. Generation problems (closed period, collaborator
// failure, storage failure, cancellation) are recorded as a failed occurrence and
// returned without error; an error is only returned for invalid input or when even the
// failure could not be recorded.
func (uc *GenerateOccurrenceUseCase) Execute(ctx context.Context, input GenerateOccurrenceInput) (*GenerateOccurrenceOutput, error) {
	if input.Template == nil {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeTemplateRequired,
			"recurring template is required",
			domainerror.ErrTemplateRequired,
		)
	}
	if !input.Period.IsValid() {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidRecurringPeriod,
			fmt.Sprintf("invalid period %s", input.Period),
			domainerror.ErrInvalidPeriod,
		)
	}

	template := input.Template
	var (
		occurrence *entity.RecurringOccurrence
		existing   bool
	)
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		occurrence, existing, err = uc.generate(ctx, template, input.Period)
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, domainerror.ErrDuplicateOccurrence):
		// A concurrent attempt won; everything this attempt wrote was rolled back.
		winner, findErr := uc.occurrenceRepo.FindByTemplateAndPeriod(ctx, template.ID, input.Period)
		if findErr != nil {
			return nil, fmt.Errorf("failed to read concurrent occurrence: %w", findErr)
		}
		occurrence, existing = winner, true
	default:
		slog.ErrorContext(ctx, "Recurring generation aborted",
			"template_id", template.ID,
			"period", input.Period.String(),
			"error", err,
		)
		occurrence, existing, err = uc.recordFailure(ctx, template, input.Period, err)
		if err != nil {
			return nil, err
		}
	}

	if !existing {
		uc.metrics.RecordOccurrence(occurrence.Outcome)
	}

	return &GenerateOccurrenceOutput{
		Occurrence: toOccurrenceOutput(occurrence),
		Existing:   existing,
	}, nil
}

// generate runs inside the unit of work. Any returned error rolls back every write made
// by this attempt.
func (uc *GenerateOccurrenceUseCase) generate(
	ctx context.Context,
	template *entity.RecurringTemplate,
	key valueobject.PeriodKey,
) (*entity.RecurringOccurrence, bool, error) {
	now := uc.clock.Now().UTC()

	occurrence, err := uc.occurrenceRepo.FindByTemplateAndPeriod(ctx, template.ID, key)
	switch {
	case err == nil:
		if occurrence.Outcome.IsTerminal() {
			return occurrence, true, nil
		}
	case errors.Is(err, domainerror.ErrOccurrenceNotFound):
		occurrence = entity.NewRecurringOccurrence(template, key, now)
	default:
		return nil, false, fmt.Errorf("failed to read occurrence: %w", err)
	}

	if !template.Active {
		occurrence.MarkCanceled("template is inactive", now)
		return occurrence, false, uc.occurrenceRepo.Save(ctx, occurrence)
	}
	if !template.CoversPeriod(key) {
		occurrence.MarkCanceled(fmt.Sprintf("period %s is outside the template schedule", key), now)
		return occurrence, false, uc.occurrenceRepo.Save(ctx, occurrence)
	}

	scheduled, err := uc.schedule(ctx, template, key)
	if err != nil {
		if !domainerror.IsPeriodLocked(err) {
			return nil, false, err
		}
		occurrence.MarkFailed(err, now)
		return occurrence, false, uc.occurrenceRepo.Save(ctx, occurrence)
	}
	occurrence.ScheduledDate = scheduled

	transaction := entity.NewTransaction(
		template.OwnerID,
		&template.WalletID,
		scheduled,
		template.Description,
		template.Amount,
		template.Type,
		template.CategoryID,
		"",
	)
	transaction.IsRecurring = true
	transaction.RecurringTemplateID = &template.ID

	createErr := uc.uow.Do(ctx, func(ctx context.Context) error {
		_, err := uc.creator.CreateTransaction(ctx, transaction)
		return err
	})
	if createErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		slog.WarnContext(ctx, "Recurring transaction rejected",
			"template_id", template.ID,
			"period", key.String(),
			"error", createErr,
		)
		occurrence.MarkFailed(createErr, now)
	} else {
		occurrence.MarkGenerated(transaction.ID, now)
	}

	return occurrence, false, uc.occurrenceRepo.Save(ctx, occurrence)
}

// schedule returns the date the transaction is posted on. Under the strict policy a
// closed target period yields its lock error; under next_open the cadence date moves to
// the first open period within MaxForwardPeriods.
func (uc *GenerateOccurrenceUseCase) schedule(ctx context.Context, template *entity.RecurringTemplate, key valueobject.PeriodKey) (time.Time, error) {
	date := template.Cadence.ScheduledDate(key)
	err := uc.guard.AssertWritable(ctx, template.OwnerID, date)
	if err == nil || uc.policy != CrossBoundaryNextOpen || !domainerror.IsPeriodLocked(err) {
		return date, err
	}

	lockErr := err
	for step := 1; step <= MaxForwardPeriods; step++ {
		candidate := template.Cadence.ScheduledDate(key.AddMonths(step))
		err := uc.guard.AssertWritable(ctx, template.OwnerID, candidate)
		if err == nil {
			return candidate, nil
		}
		if !domainerror.IsPeriodLocked(err) {
			return time.Time{}, err
		}
	}
	return time.Time{}, lockErr
}

// recordFailure stores a failed outcome after the unit of work was aborted. It uses a
// context detached from the caller's cancellation so the audit record survives a timeout.
func (uc *GenerateOccurrenceUseCase) recordFailure(
	ctx context.Context,
	template *entity.RecurringTemplate,
	key valueobject.PeriodKey,
	cause error,
) (*entity.RecurringOccurrence, bool, error) {
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureRecordTimeout)
	defer cancel()

	var (
		occurrence *entity.RecurringOccurrence
		existing   bool
	)
	err := uc.uow.Do(recordCtx, func(ctx context.Context) error {
		now := uc.clock.Now().UTC()
		stored, err := uc.occurrenceRepo.FindByTemplateAndPeriod(ctx, template.ID, key)
		switch {
		case err == nil:
			if stored.Outcome.IsTerminal() {
				occurrence, existing = stored, true
				return nil
			}
			occurrence = stored
		case errors.Is(err, domainerror.ErrOccurrenceNotFound):
			occurrence = entity.NewRecurringOccurrence(template, key, now)
		default:
			return err
		}

		occurrence.MarkFailed(cause, now)
		return uc.occurrenceRepo.Save(ctx, occurrence)
	})
	if errors.Is(err, domainerror.ErrDuplicateOccurrence) {
		occurrence, err = uc.occurrenceRepo.FindByTemplateAndPeriod(recordCtx, template.ID, key)
		existing = true
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to record generation failure: %w", errors.Join(cause, err))
	}
	return occurrence, existing, nil
}
