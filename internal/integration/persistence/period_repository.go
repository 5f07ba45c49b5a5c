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

// periodRepository implements the adapter.PeriodRepository interface.
type periodRepository struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewPeriodRepository creates a new period repository instance. Rows inserted by
// EnsureAndLock are stamped with clock.
func NewPeriodRepository(db *gorm.DB, clock adapter.Clock) adapter.PeriodRepository {
	return &periodRepository{
		db:    db,
		clock: clock,
	}
}

// FindByKey retrieves a period by owner and key.
func (r *periodRepository) FindByKey(ctx context.Context, ownerID uuid.UUID, key valueobject.PeriodKey) (*entity.Period, error) {
	var periodModel model.PeriodModel
	result := dbFromContext(ctx, r.db).
		Where("owner_id = ? AND year = ? AND month = ?", ownerID, key.Year, int(key.Month)).
		First(&periodModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrPeriodNotFound
		}
		return nil, result.Error
	}
	return periodModel.ToEntity()
}

// EnsureAndLock inserts the period as open when missing and reads it back under a row lock.
func (r *periodRepository) EnsureAndLock(ctx context.Context, ownerID uuid.UUID, key valueobject.PeriodKey, mode adapter.LockMode) (*entity.Period, error) {
	db := dbFromContext(ctx, r.db)

	periodModel := model.PeriodFromEntity(entity.NewOpenPeriod(ownerID, key, r.clock.Now().UTC()))
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(periodModel).Error; err != nil {
		return nil, err
	}

	var locked model.PeriodModel
	result := withLock(db, mode).
		Where("owner_id = ? AND year = ? AND month = ?", ownerID, key.Year, int(key.Month)).
		First(&locked)
	if result.Error != nil {
		return nil, result.Error
	}
	return locked.ToEntity()
}

// Update persists the status and audit fields of a period.
func (r *periodRepository) Update(ctx context.Context, period *entity.Period) error {
	result := dbFromContext(ctx, r.db).
		Model(&model.PeriodModel{}).
		Where("id = ?", period.ID).
		Updates(map[string]interface{}{
			"status":     string(period.Status),
			"closed_at":  period.ClosedAt,
			"closed_by":  period.ClosedBy,
			"updated_at": period.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrPeriodNotFound
	}
	return nil
}

// ListByOwner returns the stored periods of an owner for a year, ordered by month.
func (r *periodRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, year int) ([]*entity.Period, error) {
	var periodModels []model.PeriodModel
	result := dbFromContext(ctx, r.db).
		Where("owner_id = ? AND year = ?", ownerID, year).
		Order("month ASC").
		Find(&periodModels)
	if result.Error != nil {
		return nil, result.Error
	}

	periods := make([]*entity.Period, len(periodModels))
	for i, pm := range periodModels {
		period, err := pm.ToEntity()
		if err != nil {
			return nil, err
		}
		periods[i] = period
	}
	return periods, nil
}
