package app

import (
	"gorm.io/gorm"

	"yieldvault.backend/internal/config"
	"yieldvault.backend/internal/infrastructure/blockchain"
	"yieldvault.backend/internal/infrastructure/jobs"
	"yieldvault.backend/internal/infrastructure/pricing"
	"yieldvault.backend/internal/infrastructure/repositories"
	"yieldvault.backend/internal/usecases"
)

// Services is the ledger engine and its readers, built over one database
type Services struct {
	Ledger      *usecases.LedgerUsecase
	Settlement  *usecases.SettlementUsecase
	Plans       *usecases.PlanUsecase
	Portfolio   *usecases.PortfolioUsecase
	Investments *repositories.InvestmentRepository
}

// Options carries the optional collaborators of the engine
type Options struct {
	Notifier   usecases.EventNotifier
	Metrics    usecases.LedgerMetrics
	PriceCache pricing.Cache
}

// Build wires repositories, the retrying unit of work and the usecases
func Build(cfg *config.Config, db *gorm.DB, opts Options) *Services {
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	investmentRepo := repositories.NewInvestmentRepository(db)
	planRepo := repositories.NewPlanRepository(db)

	uow := repositories.NewRetryingUnitOfWork(
		repositories.NewUnitOfWork(db, repositories.WithLockTimeout(cfg.Database.LockTimeout)),
		repositories.RetryPolicy{
			MaxAttempts: cfg.Ledger.RetryMaxAttempts,
			BaseDelay:   cfg.Ledger.RetryBaseDelay,
		},
	)

	ledger := usecases.NewLedgerUsecase(
		walletRepo, txRepo, investmentRepo, planRepo, userRepo, uow,
		blockchain.NewAddressGenerator(cfg.Ledger.DepositAddressSalt),
		usecases.LedgerPolicy{
			WithdrawalFeeRate:   cfg.Ledger.WithdrawalFeeRate,
			TransferFeeRate:     cfg.Ledger.TransferFeeRate,
			EarlyWithdrawalRate: cfg.Ledger.EarlyWithdrawalRate,
			MaxCatchUpPeriods:   cfg.Ledger.MaxCatchUpPeriods,
		},
	)
	if opts.Notifier != nil {
		ledger.SetNotifier(opts.Notifier)
	}
	if opts.Metrics != nil {
		ledger.SetMetrics(opts.Metrics)
	}

	var oracle pricing.Oracle = pricing.NewStaticOracle(cfg.Pricing.StaticPrices)
	if opts.PriceCache != nil {
		oracle = pricing.NewCachedOracle(oracle, opts.PriceCache, cfg.Pricing.CacheTTL)
	}

	return &Services{
		Ledger:      ledger,
		Settlement:  usecases.NewSettlementUsecase(ledger),
		Plans:       usecases.NewPlanUsecase(planRepo, investmentRepo),
		Portfolio:   usecases.NewPortfolioUsecase(walletRepo, investmentRepo, oracle),
		Investments: investmentRepo,
	}
}

// PayoutJob builds the accrual scheduler from cfg.Payout
func (s *Services) PayoutJob(cfg config.PayoutConfig, metrics jobs.PayoutMetrics) *jobs.PayoutJob {
	return jobs.NewPayoutJob(s.Investments, s.Ledger, cfg.Interval, cfg.BatchSize, cfg.Workers, metrics)
}
