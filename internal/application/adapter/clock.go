package adapter

import "time"

// Clock supplies the current time. Tests replace it to pin "now".
type Clock interface {
	Now() time.Time
}
