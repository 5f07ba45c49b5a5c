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

// recurringOccurrenceRepository implements the adapter.RecurringOccurrenceRepository interface.
type recurringOccurrenceRepository struct {
	db *gorm.DB
}

// NewRecurringOccurrenceRepository creates a new occurrence repository instance.
func NewRecurringOccurrenceRepository(db *gorm.DB) adapter.RecurringOccurrenceRepository {
	return &recurringOccurrenceRepository{
		db: db,
	}
}

// FindByTemplateAndPeriod retrieves the occurrence of a template in a period.
func (r *recurringOccurrenceRepository) FindByTemplateAndPeriod(ctx context.Context, templateID uuid.UUID, key valueobject.PeriodKey) (*entity.RecurringOccurrence, error) {
	var occurrenceModel model.RecurringOccurrenceModel
	result := withLock(dbFromContext(ctx, r.db), adapter.LockUpdate).
		Where("template_id = ? AND period_year = ? AND period_month = ?", templateID, key.Year, int(key.Month)).
		First(&occurrenceModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrOccurrenceNotFound
		}
		return nil, result.Error
	}
	return occurrenceModel.ToEntity(), nil
}

// Save inserts the occurrence if absent, or updates it while it is still failed.
func (r *recurringOccurrenceRepository) Save(ctx context.Context, occurrence *entity.RecurringOccurrence) error {
	db := dbFromContext(ctx, r.db)

	if !occurrence.IsPersisted() {
		result := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(model.RecurringOccurrenceFromEntity(occurrence))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerror.ErrDuplicateOccurrence
		}
		entity.RestoreRecurringOccurrence(occurrence)
		return nil
	}

	result := db.Model(&model.RecurringOccurrenceModel{}).
		Where("id = ? AND outcome = ?", occurrence.ID, string(entity.OccurrenceFailed)).
		Updates(map[string]interface{}{
			"scheduled_date": occurrence.ScheduledDate,
			"outcome":        string(occurrence.Outcome),
			"transaction_id": occurrence.TransactionID,
			"error_message":  occurrence.ErrorMessage,
			"attempts":       occurrence.Attempts,
			"generated_at":   occurrence.GeneratedAt,
			"updated_at":     occurrence.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrDuplicateOccurrence
	}
	return nil
}

// List retrieves occurrences matching the filter.
func (r *recurringOccurrenceRepository) List(ctx context.Context, filter adapter.OccurrenceFilter) ([]*entity.RecurringOccurrence, error) {
	query := dbFromContext(ctx, r.db).Where("owner_id = ?", filter.OwnerID)

	if filter.TemplateID != nil {
		query = query.Where("template_id = ?", *filter.TemplateID)
	}
	if filter.Period != nil {
		query = query.Where("period_year = ? AND period_month = ?", filter.Period.Year, int(filter.Period.Month))
	}
	if filter.From != nil {
		query = query.Where("(period_year > ?) OR (period_year = ? AND period_month >= ?)",
			filter.From.Year, filter.From.Year, int(filter.From.Month))
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", string(*filter.Outcome))
	}

	var occurrenceModels []model.RecurringOccurrenceModel
	result := query.
		Order("period_year DESC, period_month DESC, generated_at DESC").
		Find(&occurrenceModels)
	if result.Error != nil {
		return nil, result.Error
	}

	occurrences := make([]*entity.RecurringOccurrence, len(occurrenceModels))
	for i, om := range occurrenceModels {
		occurrences[i] = om.ToEntity()
	}
	return occurrences, nil
}
