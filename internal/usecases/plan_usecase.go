package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/domain/repositories"
)

// interest_rate is stored as decimal(10,4)
const rateScale = 4

var rateUpperBound = decimal.New(1, 10-rateScale)

// PlanUsecase manages the plan catalogue
type PlanUsecase struct {
	planRepo       repositories.PlanRepository
	investmentRepo repositories.InvestmentRepository
}

// NewPlanUsecase creates a new plan usecase
func NewPlanUsecase(planRepo repositories.PlanRepository, investmentRepo repositories.InvestmentRepository) *PlanUsecase {
	return &PlanUsecase{planRepo: planRepo, investmentRepo: investmentRepo}
}

func (u *PlanUsecase) List(ctx context.Context, activeOnly bool) ([]*entities.Plan, error) {
	return u.planRepo.List(ctx, activeOnly)
}

func (u *PlanUsecase) Get(ctx context.Context, id int64) (*entities.Plan, error) {
	return u.planRepo.GetByID(ctx, id)
}

func (u *PlanUsecase) Create(ctx context.Context, in entities.PlanInput) (*entities.Plan, error) {
	plan, err := buildPlan(in)
	if err != nil {
		return nil, err
	}
	if err := u.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Update replaces a plan's terms. Open investments keep the terms they were created with.
func (u *PlanUsecase) Update(ctx context.Context, id int64, in entities.PlanInput) (*entities.Plan, error) {
	existing, err := u.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := buildPlan(in)
	if err != nil {
		return nil, err
	}
	plan.ID = existing.ID
	plan.CreatedAt = existing.CreatedAt
	if err := u.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete removes a plan no investment has ever referenced
func (u *PlanUsecase) Delete(ctx context.Context, id int64) error {
	n, err := u.investmentRepo.CountByPlan(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d investments reference plan %d", domainerrors.ErrPlanInUse, n, id)
	}
	return u.planRepo.Delete(ctx, id)
}

func buildPlan(in entities.PlanInput) (*entities.Plan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", domainerrors.ErrBadRequest)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(in.InterestRate))
	if err != nil || rate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate must be a non-negative number", domainerrors.ErrBadRequest)
	}
	if !rate.Equal(rate.Truncate(rateScale)) || !rate.LessThan(rateUpperBound) {
		return nil, fmt.Errorf("%w: interest rate allows %d decimal places and must be below %s",
			domainerrors.ErrBadRequest, rateScale, rateUpperBound)
	}
	if in.DurationDays < 1 {
		return nil, fmt.Errorf("%w: duration must be at least one day", domainerrors.ErrBadRequest)
	}
	if !in.PayoutFrequency.Valid() {
		return nil, fmt.Errorf("%w: unknown payout frequency %q", domainerrors.ErrBadRequest, in.PayoutFrequency)
	}
	if !in.MinAmount.IsPositive() || in.MaxAmount.LessThan(in.MinAmount) {
		return nil, fmt.Errorf("%w: require 0 < min_amount <= max_amount", domainerrors.ErrInvalidAmount)
	}
	return &entities.Plan{
		Name:            name,
		MinAmount:       in.MinAmount,
		MaxAmount:       in.MaxAmount,
		InterestRate:    rate,
		DurationDays:    in.DurationDays,
		PayoutFrequency: in.PayoutFrequency,
		IsActive:        in.IsActive,
	}, nil
}
