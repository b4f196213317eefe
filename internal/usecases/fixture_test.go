package usecases_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yieldvault.backend/internal/domain/entities"
	domainrepos "yieldvault.backend/internal/domain/repositories"
	"yieldvault.backend/internal/infrastructure/blockchain"
	"yieldvault.backend/internal/infrastructure/repositories"
	"yieldvault.backend/internal/usecases"
	"yieldvault.backend/pkg/money"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *testClock) AdvanceDays(n int) {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, n)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []entities.LedgerEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev entities.LedgerEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) Types() []entities.LedgerEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entities.LedgerEventType, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

type ledgerFixture struct {
	db          *gorm.DB
	ledger      *usecases.LedgerUsecase
	settlement  *usecases.SettlementUsecase
	plans       *usecases.PlanUsecase
	users       *repositories.UserRepository
	wallets     *repositories.WalletRepository
	txs         *repositories.TransactionRepository
	investments *repositories.InvestmentRepository
	planRepo    *repositories.PlanRepository
	clock       *testClock
	events      *recordingNotifier
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	policy usecases.LedgerPolicy
	wrapTx func(domainrepos.TransactionRepository) domainrepos.TransactionRepository
}

func withWithdrawalFee(rate string) fixtureOption {
	return func(c *fixtureConfig) { c.policy.WithdrawalFeeRate = decimal.RequireFromString(rate) }
}

func withTransferFee(rate string) fixtureOption {
	return func(c *fixtureConfig) { c.policy.TransferFeeRate = decimal.RequireFromString(rate) }
}

func withMaxCatchUp(n int) fixtureOption {
	return func(c *fixtureConfig) { c.policy.MaxCatchUpPeriods = n }
}

func withTxRepo(wrap func(domainrepos.TransactionRepository) domainrepos.TransactionRepository) fixtureOption {
	return func(c *fixtureConfig) { c.wrapTx = wrap }
}

// newLedgerFixture wires the engine to a private in-memory database with one connection
func newLedgerFixture(t *testing.T, opts ...fixtureOption) *ledgerFixture {
	t.Helper()
	cfg := fixtureConfig{policy: usecases.LedgerPolicy{
		WithdrawalFeeRate:   decimal.RequireFromString("0.01"),
		TransferFeeRate:     decimal.Zero,
		EarlyWithdrawalRate: decimal.RequireFromString("0.2"),
		MaxCatchUpPeriods:   366,
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repositories.CreateSQLiteSchema(db))

	f := &ledgerFixture{
		db:          db,
		users:       repositories.NewUserRepository(db),
		wallets:     repositories.NewWalletRepository(db),
		txs:         repositories.NewTransactionRepository(db),
		investments: repositories.NewInvestmentRepository(db),
		planRepo:    repositories.NewPlanRepository(db),
		clock:       &testClock{now: epoch},
		events:      &recordingNotifier{},
	}

	var txRepo domainrepos.TransactionRepository = f.txs
	if cfg.wrapTx != nil {
		txRepo = cfg.wrapTx(txRepo)
	}
	f.ledger = usecases.NewLedgerUsecase(
		f.wallets, txRepo, f.investments, f.planRepo, f.users,
		repositories.NewUnitOfWork(db),
		blockchain.NewAddressGenerator("test"),
		cfg.policy,
	)
	f.ledger.SetClock(f.clock.Now)
	f.ledger.SetNotifier(f.events)
	f.settlement = usecases.NewSettlementUsecase(f.ledger)
	f.plans = usecases.NewPlanUsecase(f.planRepo, f.investments)
	return f
}

func (f *ledgerFixture) seedUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	u := &entities.User{ID: uuid.New(), Email: email, Name: strings.Split(email, "@")[0]}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *ledgerFixture) seedPlan(t *testing.T, freq entities.PayoutFrequency, days int, rate, min, max string) *entities.Plan {
	t.Helper()
	plan := &entities.Plan{
		Name:            fmt.Sprintf("%s-%d", freq, days),
		MinAmount:       money.MustParse(min),
		MaxAmount:       money.MustParse(max),
		InterestRate:    decimal.RequireFromString(rate),
		DurationDays:    days,
		PayoutFrequency: freq,
		IsActive:        true,
	}
	require.NoError(t, f.planRepo.Create(context.Background(), plan))
	return plan
}

func (f *ledgerFixture) fund(t *testing.T, userID uuid.UUID, currency, amount string) {
	t.Helper()
	_, err := f.ledger.Deposit(context.Background(), entities.DepositInput{
		UserID:   userID,
		Currency: currency,
		Amount:   money.MustParse(amount),
		Rail:     entities.DepositRailTrusted,
	})
	require.NoError(t, err)
}

func (f *ledgerFixture) wallet(t *testing.T, userID uuid.UUID, currency string) *entities.Wallet {
	t.Helper()
	w, err := f.wallets.GetByUserAndCurrency(context.Background(), userID, currency)
	require.NoError(t, err)
	return w
}

func (f *ledgerFixture) requireBalances(t *testing.T, userID uuid.UUID, currency, balance, locked string) {
	t.Helper()
	w := f.wallet(t, userID, currency)
	require.Equal(t, balance, w.Balance.String(), "balance")
	require.Equal(t, locked, w.LockedBalance.String(), "locked balance")
}

func (f *ledgerFixture) history(t *testing.T, userID uuid.UUID, typ entities.TransactionType) []*entities.Transaction {
	t.Helper()
	txs, _, err := f.txs.ListByUser(context.Background(), userID, entities.TransactionFilter{Type: typ, Limit: 100})
	require.NoError(t, err)
	return txs
}
