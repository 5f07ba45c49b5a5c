package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// RunDueConfig holds the scheduler tuning.
type RunDueConfig struct {
	Concurrency     int
	UnitTimeout     time.Duration
	LookbackPeriods int
	LeaseTTL        time.Duration
}

// DefaultRunDueConfig returns the scheduler defaults.
func DefaultRunDueConfig() RunDueConfig {
	return RunDueConfig{
		Concurrency:     4,
		UnitTimeout:     30 * time.Second,
		LookbackPeriods: 3,
		LeaseTTL:        time.Minute,
	}
}

// RunDueOutput counts what a scheduler pass did.
type RunDueOutput struct {
	Templates  int
	Dispatched int
	Generated  int
	Failed     int
	Canceled   int
	Existing   int
	Leased     int // Skipped because another worker held the lease
	Errors     int
}

func (o *RunDueOutput) record(result *GenerateOccurrenceOutput) {
	if result.Existing {
		o.Existing++
		return
	}
	switch result.Occurrence.Outcome {
	case entity.OccurrenceGenerated:
		o.Generated++
	case entity.OccurrenceFailed:
		o.Failed++
	case entity.OccurrenceCanceled:
		o.Canceled++
	}
}

// RunDueTemplatesUseCase is one scheduler pass: every active template is generated into
// each elapsed period that has no terminal occurrence yet.
type RunDueTemplatesUseCase struct {
	templateRepo   adapter.RecurringTemplateRepository
	occurrenceRepo adapter.RecurringOccurrenceRepository
	generator      *GenerateOccurrenceUseCase
	lease          adapter.DispatchLease
	metrics        adapter.MetricsRecorder
	clock          adapter.Clock
	config         RunDueConfig
}

// NewRunDueTemplatesUseCase creates a new RunDueTemplatesUseCase instance. lease may be nil.
func NewRunDueTemplatesUseCase(
	templateRepo adapter.RecurringTemplateRepository,
	occurrenceRepo adapter.RecurringOccurrenceRepository,
	generator *GenerateOccurrenceUseCase,
	lease adapter.DispatchLease,
	metrics adapter.MetricsRecorder,
	clock adapter.Clock,
	config RunDueConfig,
) *RunDueTemplatesUseCase {
	defaults := DefaultRunDueConfig()
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.UnitTimeout <= 0 {
		config.UnitTimeout = defaults.UnitTimeout
	}
	if config.LookbackPeriods < 0 {
		config.LookbackPeriods = 0
	}
	if config.LeaseTTL <= 0 {
		config.LeaseTTL = defaults.LeaseTTL
	}
	return &RunDueTemplatesUseCase{
		templateRepo:   templateRepo,
		occurrenceRepo: occurrenceRepo,
		generator:      generator,
		lease:          lease,
		metrics:        metrics,
		clock:          clock,
		config:         config,
	}
}

type dueUnit struct {
	template *entity.RecurringTemplate
	period   valueobject.PeriodKey
}

// Execute dispatches every due unit and waits for them. Individual unit errors are logged
// and counted; only listing the templates can fail the pass.
func (uc *RunDueTemplatesUseCase) Execute(ctx context.Context) (*RunDueOutput, error) {
	started := uc.clock.Now()
	defer func() {
		uc.metrics.ObserveDispatch(uc.clock.Now().Sub(started))
	}()

	templates, err := uc.templateRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active templates: %w", err)
	}

	output := &RunDueOutput{Templates: len(templates)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(uc.config.Concurrency)

	for _, template := range templates {
		units, err := uc.dueUnits(ctx, template, started.UTC())
		if err != nil {
			slog.ErrorContext(ctx, "Failed to compute due periods",
				"template_id", template.ID,
				"error", err,
			)
			output.Errors++
			continue
		}

		for _, unit := range units {
			unit := unit
			if ctx.Err() != nil {
				break
			}
			mu.Lock()
			output.Dispatched++
			mu.Unlock()

			g.Go(func() error {
				result, leased, err := uc.dispatch(ctx, unit)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					output.Errors++
				case !leased:
					output.Leased++
				default:
					output.record(result)
				}
				return nil
			})
		}
	}

	_ = g.Wait()

	slog.InfoContext(ctx, "Recurring dispatch finished",
		"templates", output.Templates,
		"dispatched", output.Dispatched,
		"generated", output.Generated,
		"failed", output.Failed,
		"canceled", output.Canceled,
		"existing", output.Existing,
		"leased", output.Leased,
		"errors", output.Errors,
	)

	return output, ctx.Err()
}

// dueUnits lists the periods from the lookback window up to now whose cadence date has
// elapsed and that have no terminal occurrence.
func (uc *RunDueTemplatesUseCase) dueUnits(ctx context.Context, template *entity.RecurringTemplate, now time.Time) ([]dueUnit, error) {
	current := valueobject.PeriodKeyOf(now)
	from := current.AddMonths(-uc.config.LookbackPeriods)
	if first := template.FirstPeriod(); from.Before(first) {
		from = first
	}
	if current.Before(from) {
		return nil, nil
	}

	occurrences, err := uc.occurrenceRepo.List(ctx, adapter.OccurrenceFilter{
		OwnerID:    template.OwnerID,
		TemplateID: &template.ID,
		From:       &from,
	})
	if err != nil {
		return nil, err
	}
	done := make(map[valueobject.PeriodKey]bool, len(occurrences))
	for _, occurrence := range occurrences {
		if occurrence.Outcome.IsTerminal() {
			done[occurrence.Period] = true
		}
	}

	var units []dueUnit
	for key := from; !current.Before(key); key = key.Next() {
		if done[key] || !template.CoversPeriod(key) {
			continue
		}
		if template.Cadence.ScheduledDate(key).After(now) {
			continue
		}
		units = append(units, dueUnit{template: template, period: key})
	}
	return units, nil
}

// dispatch runs one unit under its timeout and, when configured, the dispatch lease.
// leased is false when another worker holds the lease.
func (uc *RunDueTemplatesUseCase) dispatch(ctx context.Context, unit dueUnit) (*GenerateOccurrenceOutput, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.config.UnitTimeout)
	defer cancel()

	if uc.lease != nil {
		key := fmt.Sprintf("recurring:%s:%s", unit.template.ID, unit.period)
		acquired, err := uc.lease.Acquire(ctx, key, uc.config.LeaseTTL)
		if err != nil {
			slog.WarnContext(ctx, "Dispatch lease unavailable, continuing without it",
				"key", key,
				"error", err,
			)
		} else if !acquired {
			return nil, false, nil
		} else {
			defer func() {
				if err := uc.lease.Release(context.WithoutCancel(ctx), key); err != nil {
					slog.WarnContext(ctx, "Failed to release dispatch lease", "key", key, "error", err)
				}
			}()
		}
	}

	result, err := uc.generator.Execute(ctx, GenerateOccurrenceInput{
		Template: unit.template,
		Period:   unit.period,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Recurring unit failed",
			"template_id", unit.template.ID,
			"period", unit.period.String(),
			"error", err,
		)
		return nil, true, err
	}
	return result, true, nil
}
