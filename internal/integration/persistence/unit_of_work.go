package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
)

type txContextKey struct{}

// unitOfWork implements the adapter.UnitOfWork interface on top of gorm transactions.
type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new unit of work instance.
func NewUnitOfWork(db *gorm.DB) adapter.UnitOfWork {
	return &unitOfWork{
		db: db,
	}
}

// Do runs fn inside a transaction. When ctx already carries one, gorm opens a savepoint
// instead, and an error from fn only rolls back to that savepoint.
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbFromContext(ctx, u.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFromContext returns the transaction carried by ctx, or the base connection.
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// withLock adds a row locking clause. SQLite has no row locks and serializes writers,
// so the clause is only added for PostgreSQL.
func withLock(db *gorm.DB, mode adapter.LockMode) *gorm.DB {
	if db.Dialector.Name() != "postgres" {
		return db
	}
	strength := clause.LockingStrengthShare
	if mode == adapter.LockUpdate {
		strength = clause.LockingStrengthUpdate
	}
	return db.Clauses(clause.Locking{Strength: strength})
}
