package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"yieldvault.backend/internal/domain/entities"
	"yieldvault.backend/internal/interfaces/http/middleware"
	"yieldvault.backend/pkg/utils"
)

var testUserID = uuid.MustParse("0190c0de-0000-7000-8000-0000000000aa")

func init() {
	gin.SetMode(gin.TestMode)
}

func asUser(c *gin.Context) {
	c.Set(middleware.UserIDKey, testUserID)
	c.Next()
}

func call(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type ledgerStub struct {
	depositFn      func(ctx context.Context, in entities.DepositInput) (*entities.Transaction, error)
	withdrawFn     func(ctx context.Context, in entities.WithdrawInput) (*entities.Transaction, error)
	cancelFn       func(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error)
	transferFn     func(ctx context.Context, in entities.TransferInput) (*entities.TransferResult, error)
	walletsFn      func(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	walletFn       func(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error)
	listTxFn       func(ctx context.Context, userID uuid.UUID, f entities.TransactionFilter) ([]*entities.Transaction, utils.PaginationMeta, error)
	getTxFn        func(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error)
	createInvFn    func(ctx context.Context, in entities.CreateInvestmentInput) (*entities.Investment, error)
	listInvFn      func(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus) ([]*entities.Investment, error)
	getInvFn       func(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error)
	earlyFn        func(ctx context.Context, userID, id uuid.UUID) (*entities.EarlyWithdrawResult, error)
	accrueFn       func(ctx context.Context, id uuid.UUID) (*entities.AccrualResult, error)
	confirmByRefFn func(ctx context.Context, ref string) (*entities.Transaction, error)
}

func (s *ledgerStub) Deposit(ctx context.Context, in entities.DepositInput) (*entities.Transaction, error) {
	return s.depositFn(ctx, in)
}
func (s *ledgerStub) Withdraw(ctx context.Context, in entities.WithdrawInput) (*entities.Transaction, error) {
	return s.withdrawFn(ctx, in)
}
func (s *ledgerStub) CancelWithdrawal(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error) {
	return s.cancelFn(ctx, userID, txID)
}
func (s *ledgerStub) Transfer(ctx context.Context, in entities.TransferInput) (*entities.TransferResult, error) {
	return s.transferFn(ctx, in)
}
func (s *ledgerStub) GetWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return s.walletsFn(ctx, userID)
}
func (s *ledgerStub) GetWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	return s.walletFn(ctx, userID, currency)
}
func (s *ledgerStub) ListTransactions(ctx context.Context, userID uuid.UUID, f entities.TransactionFilter) ([]*entities.Transaction, utils.PaginationMeta, error) {
	return s.listTxFn(ctx, userID, f)
}
func (s *ledgerStub) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error) {
	return s.getTxFn(ctx, userID, id)
}
func (s *ledgerStub) CreateInvestment(ctx context.Context, in entities.CreateInvestmentInput) (*entities.Investment, error) {
	return s.createInvFn(ctx, in)
}
func (s *ledgerStub) ListInvestments(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus) ([]*entities.Investment, error) {
	return s.listInvFn(ctx, userID, status)
}
func (s *ledgerStub) GetInvestment(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error) {
	return s.getInvFn(ctx, userID, id)
}
func (s *ledgerStub) EarlyWithdraw(ctx context.Context, userID, id uuid.UUID) (*entities.EarlyWithdrawResult, error) {
	return s.earlyFn(ctx, userID, id)
}
func (s *ledgerStub) AccruePayout(ctx context.Context, id uuid.UUID) (*entities.AccrualResult, error) {
	return s.accrueFn(ctx, id)
}
func (s *ledgerStub) ConfirmDepositByReference(ctx context.Context, ref string) (*entities.Transaction, error) {
	return s.confirmByRefFn(ctx, ref)
}

type portfolioStub struct {
	getFn func(ctx context.Context, userID uuid.UUID) (*entities.Portfolio, error)
}

func (s *portfolioStub) Get(ctx context.Context, userID uuid.UUID) (*entities.Portfolio, error) {
	return s.getFn(ctx, userID)
}

type planStub struct {
	listFn   func(ctx context.Context, activeOnly bool) ([]*entities.Plan, error)
	getFn    func(ctx context.Context, id int64) (*entities.Plan, error)
	createFn func(ctx context.Context, in entities.PlanInput) (*entities.Plan, error)
	updateFn func(ctx context.Context, id int64, in entities.PlanInput) (*entities.Plan, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *planStub) List(ctx context.Context, activeOnly bool) ([]*entities.Plan, error) {
	return s.listFn(ctx, activeOnly)
}
func (s *planStub) Get(ctx context.Context, id int64) (*entities.Plan, error) {
	return s.getFn(ctx, id)
}
func (s *planStub) Create(ctx context.Context, in entities.PlanInput) (*entities.Plan, error) {
	return s.createFn(ctx, in)
}
func (s *planStub) Update(ctx context.Context, id int64, in entities.PlanInput) (*entities.Plan, error) {
	return s.updateFn(ctx, id, in)
}
func (s *planStub) Delete(ctx context.Context, id int64) error { return s.deleteFn(ctx, id) }

type settlementStub struct {
	approveFn    func(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	rejectFn     func(ctx context.Context, id uuid.UUID, remarks string) (*entities.Transaction, error)
	processingFn func(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
}

func (s *settlementStub) Approve(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return s.approveFn(ctx, id)
}
func (s *settlementStub) Reject(ctx context.Context, id uuid.UUID, remarks string) (*entities.Transaction, error) {
	return s.rejectFn(ctx, id, remarks)
}
func (s *settlementStub) MarkProcessing(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return s.processingFn(ctx, id)
}
