package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/model"
)

// rolloverRepository implements the adapter.RolloverRepository interface.
type rolloverRepository struct {
	db *gorm.DB
}

// NewRolloverRepository creates a new rollover repository instance.
func NewRolloverRepository(db *gorm.DB) adapter.RolloverRepository {
	return &rolloverRepository{
		db: db,
	}
}

// FindByPeriod retrieves the rollover recorded for a source period.
func (r *rolloverRepository) FindByPeriod(ctx context.Context, ownerID uuid.UUID, from valueobject.PeriodKey) (*entity.RolloverRecord, error) {
	var rolloverModel model.RolloverModel
	result := dbFromContext(ctx, r.db).
		Where("owner_id = ? AND from_year = ? AND from_month = ?", ownerID, from.Year, int(from.Month)).
		First(&rolloverModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrRolloverNotFound
		}
		return nil, result.Error
	}
	return rolloverModel.ToEntity(), nil
}

// Create inserts the record unless the source period already has one.
func (r *rolloverRepository) Create(ctx context.Context, record *entity.RolloverRecord) error {
	result := dbFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model.RolloverFromEntity(record))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrDuplicateRollover
	}
	return nil
}
