package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldvault.backend/internal/domain/entities"
	"yieldvault.backend/internal/domain/repositories"
	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/money"
)

var errNoOracle = errors.New("no price oracle configured")

// PriceOracle supplies USD spot prices for valuation
type PriceOracle interface {
	SpotPrice(ctx context.Context, currency string) (decimal.Decimal, error)
}

// PortfolioUsecase values a user's holdings. Prices never influence ledger state.
type PortfolioUsecase struct {
	walletRepo     repositories.WalletRepository
	investmentRepo repositories.InvestmentRepository
	oracle         PriceOracle
}

// NewPortfolioUsecase creates a new portfolio usecase
func NewPortfolioUsecase(walletRepo repositories.WalletRepository, investmentRepo repositories.InvestmentRepository, oracle PriceOracle) *PortfolioUsecase {
	return &PortfolioUsecase{walletRepo: walletRepo, investmentRepo: investmentRepo, oracle: oracle}
}

// Get values every wallet at spot. A missing price marks the holding unpriced
// and the portfolio incomplete instead of failing.
func (u *PortfolioUsecase) Get(ctx context.Context, userID uuid.UUID) (*entities.Portfolio, error) {
	wallets, err := u.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, err := u.investmentRepo.ListByUser(ctx, userID, entities.InvestmentStatusActive)
	if err != nil {
		return nil, err
	}

	invested := map[string]money.Amount{}
	for _, inv := range active {
		invested[inv.Currency] = invested[inv.Currency].Add(inv.Amount)
	}
	all, err := u.investmentRepo.ListByUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	earned := map[string]money.Amount{}
	for _, inv := range all {
		earned[inv.Currency] = earned[inv.Currency].Add(inv.EarnedAmount)
	}

	p := &entities.Portfolio{UserID: userID, Holdings: make([]*entities.Holding, 0, len(wallets)), Complete: true}
	total := decimal.Zero
	for _, w := range wallets {
		h := &entities.Holding{
			Currency:      w.Currency,
			Balance:       w.Balance,
			LockedBalance: w.LockedBalance,
			Invested:      invested[w.Currency],
			Earned:        earned[w.Currency],
		}
		price, err := u.spotPrice(ctx, w.Currency)
		if err != nil {
			p.Complete = false
		} else {
			value := w.Total().Decimal().Mul(price).Round(2)
			ps, vs := price.String(), value.StringFixed(2)
			h.PriceUSD, h.ValueUSD, h.PriceAvailable = &ps, &vs, true
			total = total.Add(value)
		}
		p.Holdings = append(p.Holdings, h)
	}
	p.TotalValueUSD = total.StringFixed(2)
	return p, nil
}

func (u *PortfolioUsecase) spotPrice(ctx context.Context, currency string) (decimal.Decimal, error) {
	if u.oracle == nil {
		return decimal.Zero, errNoOracle
	}
	price, err := u.oracle.SpotPrice(ctx, currency)
	if err != nil {
		logger.Warn(ctx, "Price unavailable", zap.String("currency", currency), zap.Error(err))
	}
	return price, err
}
