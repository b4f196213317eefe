package repositories

import (
	"context"

	"yieldvault.backend/internal/domain/entities"
)

// PlanRepository stores investment plans
type PlanRepository interface {
	Create(ctx context.Context, plan *entities.Plan) error
	Update(ctx context.Context, plan *entities.Plan) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*entities.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]*entities.Plan, error)
}
