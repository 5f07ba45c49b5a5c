// Package metrics exposes engine counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

const namespace = "period_engine"

// Recorder implements adapter.MetricsRecorder with Prometheus collectors.
type Recorder struct {
	occurrences       *prometheus.CounterVec
	periodTransitions *prometheus.CounterVec
	lockRejections    prometheus.Counter
	rollovers         *prometheus.CounterVec
	dispatchDuration  prometheus.Histogram
}

var _ adapter.MetricsRecorder = (*Recorder)(nil)

// NewRecorder registers the engine collectors on registerer.
func NewRecorder(registerer prometheus.Registerer) *Recorder {
	factory := promauto.With(registerer)

	return &Recorder{
		occurrences: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurring_occurrences_total",
			Help:      "Recurring occurrences recorded, by outcome",
		}, []string{"outcome"}),

		periodTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "period_transitions_total",
			Help:      "Period close and reopen transitions, by resulting status",
		}, []string{"status"}),

		lockRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "period_lock_rejections_total",
			Help:      "Writes rejected because their period is closed",
		}),

		rollovers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollovers_applied_total",
			Help:      "Rollovers applied, by whether an adjustment was carried",
		}, []string{"carried"}),

		dispatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recurring_dispatch_duration_seconds",
			Help:      "Duration of one scheduler dispatch of a template period",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		}),
	}
}

// RecordOccurrence counts an occurrence outcome.
func (r *Recorder) RecordOccurrence(outcome entity.OccurrenceOutcome) {
	r.occurrences.WithLabelValues(string(outcome)).Inc()
}

// RecordPeriodTransition counts a close or reopen.
func (r *Recorder) RecordPeriodTransition(status entity.PeriodStatus) {
	r.periodTransitions.WithLabelValues(string(status)).Inc()
}

// RecordLockRejection counts a write refused by a closed period.
func (r *Recorder) RecordLockRejection() {
	r.lockRejections.Inc()
}

// RecordRollover counts an applied rollover.
func (r *Recorder) RecordRollover(amount decimal.Decimal) {
	carried := "false"
	if !amount.IsZero() {
		carried = "true"
	}
	r.rollovers.WithLabelValues(carried).Inc()
}

// ObserveDispatch records how long one dispatch took.
func (r *Recorder) ObserveDispatch(duration time.Duration) {
	r.dispatchDuration.Observe(duration.Seconds())
}

// Noop discards every measurement.
type Noop struct{}

var _ adapter.MetricsRecorder = Noop{}

func (Noop) RecordOccurrence(entity.OccurrenceOutcome)  {}
func (Noop) RecordPeriodTransition(entity.PeriodStatus) {}
func (Noop) RecordLockRejection()                       {}
func (Noop) RecordRollover(decimal.Decimal)             {}
func (Noop) ObserveDispatch(time.Duration)              {}
