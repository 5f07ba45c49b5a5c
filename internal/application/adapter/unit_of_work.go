package adapter

import "context"

// UnitOfWork runs a function inside a storage transaction. Repository calls made with the
// context passed to fn participate in that transaction. A nested Do runs in a savepoint
// of the enclosing transaction, so its failure can be rolled back on its own.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
