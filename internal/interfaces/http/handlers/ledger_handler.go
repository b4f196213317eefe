package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/interfaces/http/middleware"
	"yieldvault.backend/internal/interfaces/http/response"
	"yieldvault.backend/pkg/money"
	"yieldvault.backend/pkg/utils"
)

type ledgerService interface {
	Deposit(ctx context.Context, in entities.DepositInput) (*entities.Transaction, error)
	Withdraw(ctx context.Context, in entities.WithdrawInput) (*entities.Transaction, error)
	CancelWithdrawal(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error)
	Transfer(ctx context.Context, in entities.TransferInput) (*entities.TransferResult, error)
	GetWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, utils.PaginationMeta, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error)
}

type portfolioService interface {
	Get(ctx context.Context, userID uuid.UUID) (*entities.Portfolio, error)
}

// LedgerHandler serves wallet balances and money movements
type LedgerHandler struct {
	ledger    ledgerService
	portfolio portfolioService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger ledgerService, portfolio portfolioService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, portfolio: portfolio}
}

type depositRequest struct {
	Currency    string       `json:"currency" binding:"required"`
	Amount      money.Amount `json:"amount"`
	ExternalRef string       `json:"externalRef" binding:"required"`
	FromAddress string       `json:"fromAddress"`
}

type withdrawRequest struct {
	Currency  string       `json:"currency" binding:"required"`
	Amount    money.Amount `json:"amount"`
	ToAddress string       `json:"toAddress" binding:"required"`
}

type transferRequest struct {
	RecipientEmail string       `json:"recipientEmail" binding:"required,email"`
	Currency       string       `json:"currency" binding:"required"`
	Amount         money.Amount `json:"amount"`
}

// ListWallets lists the caller's wallets
// GET /api/v1/wallets
func (h *LedgerHandler) ListWallets(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	wallets, err := h.ledger.GetWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if wallets == nil {
		wallets = []*entities.Wallet{}
	}
	response.Success(c, http.StatusOK, gin.H{"wallets": wallets})
}

// GetWallet returns the caller's wallet in one currency, opening it on first access
// GET /api/v1/wallets/:currency
func (h *LedgerHandler) GetWallet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	wallet, err := h.ledger.GetWallet(c.Request.Context(), userID, c.Param("currency"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wallet": wallet})
}

// Deposit records an on-chain deposit that waits for confirmation
// POST /api/v1/deposits
func (h *LedgerHandler) Deposit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.ledger.Deposit(c.Request.Context(), entities.DepositInput{
		UserID:      userID,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Rail:        entities.DepositRailOnchain,
		ExternalRef: req.ExternalRef,
		FromAddress: req.FromAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"transaction": tx})
}

// Withdraw requests a withdrawal; funds are held until an operator settles it
// POST /api/v1/withdrawals
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.ledger.Withdraw(c.Request.Context(), entities.WithdrawInput{
		UserID:    userID,
		Currency:  req.Currency,
		Amount:    req.Amount,
		ToAddress: req.ToAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"transaction": tx})
}

// CancelWithdrawal cancels one of the caller's pending withdrawals
// POST /api/v1/withdrawals/:id/cancel
func (h *LedgerHandler) CancelWithdrawal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txID, ok := uuidParam(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}

	tx, err := h.ledger.CancelWithdrawal(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// Transfer sends funds to another user by email
// POST /api/v1/transfers
func (h *LedgerHandler) Transfer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.ledger.Transfer(c.Request.Context(), entities.TransferInput{
		SenderID:       userID,
		RecipientEmail: req.RecipientEmail,
		Amount:         req.Amount,
		Currency:       req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// ListTransactions pages through the caller's history
// GET /api/v1/transactions?type=&status=&currency=&page=&limit=
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	filter := entities.TransactionFilter{
		Type:     entities.TransactionType(c.Query("type")),
		Status:   entities.TransactionStatus(c.Query("status")),
		Currency: c.Query("currency"),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		response.Error(c, domainerrors.BadRequest("Unknown transaction type"))
		return
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultLimit)))

	txs, meta, err := h.ledger.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if txs == nil {
		txs = []*entities.Transaction{}
	}
	response.Paginated(c, "transactions", txs, meta)
}

// GetTransaction returns one of the caller's transactions
// GET /api/v1/transactions/:id
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txID, ok := uuidParam(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}

	tx, err := h.ledger.GetTransaction(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// GetPortfolio values the caller's holdings in USD
// GET /api/v1/portfolio
func (h *LedgerHandler) GetPortfolio(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	portfolio, err := h.portfolio.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, portfolio)
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
	}
	return userID, ok
}

func uuidParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest(message))
		return uuid.Nil, false
	}
	return id, true
}

func int64Param(c *gin.Context, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, domainerrors.BadRequest(message))
		return 0, false
	}
	return id, true
}
