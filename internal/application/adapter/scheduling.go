package adapter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// DispatchLease is a best-effort cross-process lease used to avoid dispatching the same
// unit of work twice. Storage constraints stay authoritative.
type DispatchLease interface {
	// Acquire returns true when the caller now holds the lease for key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up a lease held by the caller.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder collects engine counters.
type MetricsRecorder interface {
	RecordOccurrence(outcome entity.OccurrenceOutcome)
	RecordPeriodTransition(status entity.PeriodStatus)
	RecordLockRejection()
	RecordRollover(amount decimal.Decimal)
	ObserveDispatch(duration time.Duration)
}
