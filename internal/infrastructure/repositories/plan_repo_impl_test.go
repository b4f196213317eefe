package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/pkg/money"
)

func TestPlanRepository_CRUD(t *testing.T) {
	db := newLedgerDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	starter := seedPlan(t, repo, "Starter", entities.PayoutDaily, 30)
	assert.NotZero(t, starter.ID)

	dup := *starter
	dup.ID = 0
	assert.ErrorIs(t, repo.Create(ctx, &dup), domainerrors.ErrAlreadyExists)

	premium := seedPlan(t, repo, "Premium", entities.PayoutMonthly, 90)
	premium.MinAmount = money.FromInt(5000)
	premium.IsActive = false
	require.NoError(t, repo.Update(ctx, premium))

	got, err := repo.GetByID(ctx, premium.ID)
	require.NoError(t, err)
	assert.Equal(t, "5000", got.MinAmount.String())
	assert.False(t, got.IsActive)
	assert.Equal(t, entities.PayoutMonthly, got.PayoutFrequency)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Starter", active[0].Name)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, premium.ID))
	_, err = repo.GetByID(ctx, premium.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, premium.ID), domainerrors.ErrNotFound)

	ghost := *starter
	ghost.ID = 999
	assert.ErrorIs(t, repo.Update(ctx, &ghost), domainerrors.ErrNotFound)
}

func TestPlanRepository_DeleteReferencedPlan(t *testing.T) {
	db := newLedgerDB(t)
	plans := NewPlanRepository(db)
	investments := NewInvestmentRepository(db)
	ctx := context.Background()

	plan := seedPlan(t, plans, "Locked", entities.PayoutMaturity, 10)
	inv := entities.NewInvestment(uuid.New(), seedUserID(t, db), plan, money.FromInt(200), "USDT", false, time.Now())
	require.NoError(t, investments.Create(ctx, inv))

	assert.ErrorIs(t, plans.Delete(ctx, plan.ID), domainerrors.ErrPlanInUse)
}
