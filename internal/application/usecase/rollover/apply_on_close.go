package rollover

import (
	"context"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// ApplyOnClose is a period event publisher that applies the rollover synchronously in the
// closing process. It is used when no message broker is configured.
type ApplyOnClose struct {
	applier *ApplyRolloverUseCase
}

// NewApplyOnClose creates a new ApplyOnClose publisher.
func NewApplyOnClose(applier *ApplyRolloverUseCase) *ApplyOnClose {
	return &ApplyOnClose{applier: applier}
}

// PublishPeriodClosed applies the rollover of the closed period.
func (p *ApplyOnClose) PublishPeriodClosed(ctx context.Context, event entity.PeriodClosedEvent) error {
	return p.applier.HandlePeriodClosed(ctx, event)
}
