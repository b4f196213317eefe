package usecases_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/infrastructure/pricing"
	"yieldvault.backend/internal/usecases"
	"yieldvault.backend/pkg/money"
)

func validPlanInput() entities.PlanInput {
	return entities.PlanInput{
		Name:            "Starter",
		MinAmount:       money.FromInt(100),
		MaxAmount:       money.FromInt(5000),
		InterestRate:    "5",
		DurationDays:    30,
		PayoutFrequency: entities.PayoutDaily,
		IsActive:        true,
	}
}

func TestPlanUsecase_CreateValidation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*entities.PlanInput)
		err    error
	}{
		{"blank name", func(in *entities.PlanInput) { in.Name = "  " }, domainerrors.ErrBadRequest},
		{"negative rate", func(in *entities.PlanInput) { in.InterestRate = "-1" }, domainerrors.ErrBadRequest},
		{"rate not numeric", func(in *entities.PlanInput) { in.InterestRate = "five" }, domainerrors.ErrBadRequest},
		{"rate too precise", func(in *entities.PlanInput) { in.InterestRate = "5.123456" }, domainerrors.ErrBadRequest},
		{"rate too large", func(in *entities.PlanInput) { in.InterestRate = "1000000" }, domainerrors.ErrBadRequest},
		{"zero duration", func(in *entities.PlanInput) { in.DurationDays = 0 }, domainerrors.ErrBadRequest},
		{"unknown frequency", func(in *entities.PlanInput) { in.PayoutFrequency = "hourly" }, domainerrors.ErrBadRequest},
		{"zero minimum", func(in *entities.PlanInput) { in.MinAmount = money.Zero }, domainerrors.ErrInvalidAmount},
		{"max below min", func(in *entities.PlanInput) { in.MaxAmount = money.FromInt(50) }, domainerrors.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPlanInput()
			tt.mutate(&in)
			_, err := f.plans.Create(ctx, in)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	plan, err := f.plans.Create(ctx, validPlanInput())
	require.NoError(t, err)
	assert.NotZero(t, plan.ID)
	assert.True(t, plan.InterestRate.Equal(decimal.NewFromInt(5)))

	fine := validPlanInput()
	fine.Name = "Fine grained"
	fine.InterestRate = "999999.1250"
	plan, err = f.plans.Create(ctx, fine)
	require.NoError(t, err)
	assert.Equal(t, "999999.125", plan.InterestRate.String())

	listed, err := f.plans.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestPlanUsecase_UpdateLeavesOpenInvestmentsAlone(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice@mail.com")
	plan := f.seedPlan(t, entities.PayoutDaily, 30, "5", "100", "5000")
	f.fund(t, alice, "USDT", "500")
	inv := f.invest(t, alice, plan, "500", false)

	in := validPlanInput()
	in.InterestRate = "12.5"
	in.DurationDays = 90
	updated, err := f.plans.Update(ctx, plan.ID, in)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, updated.ID)

	got, err := f.plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.InterestRate.String())

	stored, err := f.ledger.GetInvestment(ctx, alice, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "5", stored.InterestRate.String())
	assert.Equal(t, 30, stored.DurationDays)

	_, err = f.plans.Update(ctx, plan.ID+99, in)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPlanUsecase_DeleteRefusesReferencedPlans(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice@mail.com")
	used := f.seedPlan(t, entities.PayoutDaily, 30, "5", "100", "5000")
	unused := f.seedPlan(t, entities.PayoutWeekly, 14, "3", "100", "5000")
	f.fund(t, alice, "USDT", "100")
	inv := f.invest(t, alice, used, "100", false)

	// even a closed investment keeps its plan alive
	_, err := f.ledger.EarlyWithdraw(ctx, alice, inv.ID)
	require.NoError(t, err)

	err = f.plans.Delete(ctx, used.ID)
	assert.ErrorIs(t, err, domainerrors.ErrPlanInUse)

	require.NoError(t, f.plans.Delete(ctx, unused.ID))
	_, err = f.plans.Get(ctx, unused.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPortfolio_ValuesHoldingsAndFlagsMissingPrices(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice@mail.com")
	plan := f.seedPlan(t, entities.PayoutDaily, 30, "5", "100", "5000")
	f.fund(t, alice, "USDT", "1000")
	f.fund(t, alice, "DOGE", "42")
	inv := f.invest(t, alice, plan, "600", false)
	f.clock.AdvanceDays(1)

	oracle := pricing.NewStaticOracle(map[string]decimal.Decimal{"usdt": decimal.RequireFromString("0.999")})
	portfolio := usecases.NewPortfolioUsecase(f.wallets, f.investments, oracle)

	_, err := f.ledger.AccruePayout(ctx, inv.ID)
	require.NoError(t, err)

	p, err := portfolio.Get(ctx, alice)
	require.NoError(t, err)
	assert.False(t, p.Complete)
	require.Len(t, p.Holdings, 2)

	byCurrency := map[string]*entities.Holding{}
	for _, h := range p.Holdings {
		byCurrency[h.Currency] = h
	}

	usdt := byCurrency["USDT"]
	require.NotNil(t, usdt)
	assert.True(t, usdt.PriceAvailable)
	assert.Equal(t, "600", usdt.Invested.String())
	assert.Equal(t, "600", usdt.LockedBalance.String())
	assert.False(t, usdt.Earned.IsZero())
	require.NotNil(t, usdt.ValueUSD)
	// (400 + earnings + 600) × 0.999
	assert.Equal(t, "999.08", *usdt.ValueUSD)

	doge := byCurrency["DOGE"]
	require.NotNil(t, doge)
	assert.False(t, doge.PriceAvailable)
	assert.Nil(t, doge.ValueUSD)

	assert.Equal(t, "999.08", p.TotalValueUSD)

	empty, err := usecases.NewPortfolioUsecase(f.wallets, f.investments, nil).Get(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "0.00", empty.TotalValueUSD)
	assert.False(t, empty.Complete)
}
