package adapters

import (
	"time"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
)

// SystemClock implements adapter.Clock with the wall clock in UTC.
type SystemClock struct{}

var _ adapter.Clock = SystemClock{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
