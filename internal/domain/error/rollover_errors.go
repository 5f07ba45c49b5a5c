package error

import "errors"

// ErrDuplicateRollover is returned by storage when the rollover of a period was already
// recorded by a concurrent attempt.
var ErrDuplicateRollover = errors.New("rollover already recorded")

// ErrRolloverNotFound is returned when no rollover was recorded for a period.
var ErrRolloverNotFound = errors.New("rollover not found")
