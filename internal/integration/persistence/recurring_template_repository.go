package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/model"
)

// recurringTemplateRepository implements the adapter.RecurringTemplateRepository interface.
type recurringTemplateRepository struct {
	db *gorm.DB
}

// NewRecurringTemplateRepository creates a new recurring template repository instance.
func NewRecurringTemplateRepository(db *gorm.DB) adapter.RecurringTemplateRepository {
	return &recurringTemplateRepository{
		db: db,
	}
}

// Create stores a new template.
func (r *recurringTemplateRepository) Create(ctx context.Context, template *entity.RecurringTemplate) error {
	return dbFromContext(ctx, r.db).Create(model.RecurringTemplateFromEntity(template)).Error
}

// FindByID retrieves a template by its ID.
func (r *recurringTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RecurringTemplate, error) {
	var templateModel model.RecurringTemplateModel
	result := dbFromContext(ctx, r.db).Where("id = ?", id).First(&templateModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTemplateNotFound
		}
		return nil, result.Error
	}
	return templateModel.ToEntity(), nil
}

// FindByOwner retrieves the templates of an owner.
func (r *recurringTemplateRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*entity.RecurringTemplate, error) {
	query := dbFromContext(ctx, r.db).Where("owner_id = ?", ownerID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	return r.find(query)
}

// FindActive retrieves the active templates of every owner.
func (r *recurringTemplateRepository) FindActive(ctx context.Context) ([]*entity.RecurringTemplate, error) {
	return r.find(dbFromContext(ctx, r.db).Where("active = ?", true))
}

// Update persists the mutable fields of a template.
func (r *recurringTemplateRepository) Update(ctx context.Context, template *entity.RecurringTemplate) error {
	result := dbFromContext(ctx, r.db).
		Model(&model.RecurringTemplateModel{}).
		Where("id = ?", template.ID).
		Updates(map[string]interface{}{
			"amount":       template.Amount,
			"type":         string(template.Type),
			"description":  template.Description,
			"category_id":  template.CategoryID,
			"wallet_id":    template.WalletID,
			"day_of_month": template.Cadence.DayOfMonth,
			"end_date":     template.EndDate,
			"active":       template.Active,
			"updated_at":   template.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTemplateNotFound
	}
	return nil
}

func (r *recurringTemplateRepository) find(query *gorm.DB) ([]*entity.RecurringTemplate, error) {
	var templateModels []model.RecurringTemplateModel
	if err := query.Order("created_at ASC").Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]*entity.RecurringTemplate, len(templateModels))
	for i, tm := range templateModels {
		templates[i] = tm.ToEntity()
	}
	return templates, nil
}
