package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/infrastructure/models"
)

// InvestmentRepository implements investment data operations
type InvestmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// Create inserts an investment
func (r *InvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	err := GetDB(ctx, r.db).Omit(clause.Associations).Create(r.toModel(inv)).Error
	if err != nil && isForeignKeyViolation(err) {
		return domainerrors.ErrNotFound
	}
	return err
}

// Update persists the lifecycle fields. Terms and principal are never rewritten.
func (r *InvestmentRepository) Update(ctx context.Context, inv *entities.Investment) error {
	inv.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.Investment{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"status":           string(inv.Status),
			"earned_amount":    inv.EarnedAmount,
			"last_payout_date": inv.LastPayoutDate,
			"next_payout_date": inv.NextPayoutDate,
			"closed_at":        inv.ClosedAt,
			"updated_at":       inv.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// GetByID gets an investment by ID
func (r *InvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	return r.first(GetDB(ctx, r.db).Where("id = ?", id))
}

// LockByID selects the investment FOR UPDATE inside the current unit of work
func (r *InvestmentRepository) LockByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	q, err := lockingQuery(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return r.first(q.Where("id = ?", id))
}

// ListByUser lists a user's investments, newest first. An empty status lists all.
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus) ([]*entities.Investment, error) {
	query := GetDB(ctx, r.db).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var ms []models.Investment
	if err := query.Order("start_date DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// ListDue returns one id-ordered page of active investments with a payout or maturity
// at or before now. Paging by id lets a run walk past rows that keep failing.
func (r *InvestmentRepository) ListDue(ctx context.Context, now time.Time, after uuid.UUID, limit int) ([]*entities.Investment, error) {
	var ms []models.Investment
	err := GetDB(ctx, r.db).
		Where("status = ?", string(entities.InvestmentStatusActive)).
		Where("next_payout_date <= ? OR end_date <= ?", now.UTC(), now.UTC()).
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// CountByPlan counts investments of any status that reference a plan
func (r *InvestmentRepository) CountByPlan(ctx context.Context, planID int64) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Investment{}).Where("plan_id = ?", planID).Count(&count).Error
	return count, err
}

func (r *InvestmentRepository) first(q *gorm.DB) (*entities.Investment, error) {
	var m models.Investment
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *InvestmentRepository) toEntities(ms []models.Investment) []*entities.Investment {
	out := make([]*entities.Investment, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out
}

func (r *InvestmentRepository) toModel(inv *entities.Investment) *models.Investment {
	return &models.Investment{
		ID:              inv.ID,
		UserID:          inv.UserID,
		PlanID:          inv.PlanID,
		Amount:          inv.Amount,
		Currency:        inv.Currency,
		InterestRate:    inv.InterestRate,
		DurationDays:    inv.DurationDays,
		PayoutFrequency: string(inv.PayoutFrequency),
		Status:          string(inv.Status),
		StartDate:       inv.StartDate,
		EndDate:         inv.EndDate,
		EarnedAmount:    inv.EarnedAmount,
		LastPayoutDate:  inv.LastPayoutDate,
		NextPayoutDate:  inv.NextPayoutDate,
		AutoRenew:       inv.AutoRenew,
		RenewedFromID:   inv.RenewedFromID,
		ClosedAt:        inv.ClosedAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

func (r *InvestmentRepository) toEntity(m *models.Investment) *entities.Investment {
	return &entities.Investment{
		ID:              m.ID,
		UserID:          m.UserID,
		PlanID:          m.PlanID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		InterestRate:    m.InterestRate,
		DurationDays:    m.DurationDays,
		PayoutFrequency: entities.PayoutFrequency(m.PayoutFrequency),
		Status:          entities.InvestmentStatus(m.Status),
		StartDate:       m.StartDate.UTC(),
		EndDate:         m.EndDate.UTC(),
		EarnedAmount:    m.EarnedAmount,
		LastPayoutDate:  utcPtr(m.LastPayoutDate),
		NextPayoutDate:  m.NextPayoutDate.UTC(),
		AutoRenew:       m.AutoRenew,
		RenewedFromID:   m.RenewedFromID,
		ClosedAt:        utcPtr(m.ClosedAt),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
