package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/infrastructure/models"
)

// PlanRepository implements plan data operations
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create inserts a plan and assigns its ID
func (r *PlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	m := r.toModel(plan)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	plan.ID = m.ID
	return nil
}

// Update rewrites a plan's terms. Running investments keep the terms they copied.
func (r *PlanRepository) Update(ctx context.Context, plan *entities.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.Plan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]interface{}{
			"name":             plan.Name,
			"min_amount":       plan.MinAmount,
			"max_amount":       plan.MaxAmount,
			"interest_rate":    plan.InterestRate,
			"duration_days":    plan.DurationDays,
			"payout_frequency": string(plan.PayoutFrequency),
			"is_active":        plan.IsActive,
			"updated_at":       plan.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes a plan. Plans referenced by investments cannot be deleted.
func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	result := GetDB(ctx, r.db).Delete(&models.Plan{}, "id = ?", id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return domainerrors.ErrPlanInUse
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// GetByID gets a plan by ID
func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*entities.Plan, error) {
	var m models.Plan
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List lists plans in creation order
func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]*entities.Plan, error) {
	query := GetDB(ctx, r.db).Order("id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var ms []models.Plan
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	plans := make([]*entities.Plan, 0, len(ms))
	for i := range ms {
		plans = append(plans, r.toEntity(&ms[i]))
	}
	return plans, nil
}

func (r *PlanRepository) toModel(p *entities.Plan) *models.Plan {
	return &models.Plan{
		ID:              p.ID,
		Name:            p.Name,
		MinAmount:       p.MinAmount,
		MaxAmount:       p.MaxAmount,
		InterestRate:    p.InterestRate,
		DurationDays:    p.DurationDays,
		PayoutFrequency: string(p.PayoutFrequency),
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r *PlanRepository) toEntity(m *models.Plan) *entities.Plan {
	return &entities.Plan{
		ID:              m.ID,
		Name:            m.Name,
		MinAmount:       m.MinAmount,
		MaxAmount:       m.MaxAmount,
		InterestRate:    m.InterestRate,
		DurationDays:    m.DurationDays,
		PayoutFrequency: entities.PayoutFrequency(m.PayoutFrequency),
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
