package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"yieldvault.backend/internal/domain/entities"
)

// InvestmentRepository stores investments
type InvestmentRepository interface {
	Create(ctx context.Context, inv *entities.Investment) error
	// Update persists the mutable lifecycle fields (status, earnings, payout dates, closed_at).
	Update(ctx context.Context, inv *entities.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error)
	LockByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus) ([]*entities.Investment, error)
	// ListDue returns active investments whose next payout or end date is at or before now,
	// ordered by id and starting strictly after the given id (uuid.Nil for the first page).
	ListDue(ctx context.Context, now time.Time, after uuid.UUID, limit int) ([]*entities.Investment, error)
	CountByPlan(ctx context.Context, planID int64) (int64, error)
}
