package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/interfaces/http/response"
	"yieldvault.backend/pkg/money"
)

type settlementService interface {
	Approve(ctx context.Context, txID uuid.UUID) (*entities.Transaction, error)
	Reject(ctx context.Context, txID uuid.UUID, remarks string) (*entities.Transaction, error)
	MarkProcessing(ctx context.Context, txID uuid.UUID) (*entities.Transaction, error)
}

type operatorLedger interface {
	Deposit(ctx context.Context, in entities.DepositInput) (*entities.Transaction, error)
	AccruePayout(ctx context.Context, investmentID uuid.UUID) (*entities.AccrualResult, error)
}

// AdminHandler serves operator actions: settlement, credits, plan management
type AdminHandler struct {
	settlement settlementService
	ledger     operatorLedger
	plans      planService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(settlement settlementService, ledger operatorLedger, plans planService) *AdminHandler {
	return &AdminHandler{settlement: settlement, ledger: ledger, plans: plans}
}

type rejectRequest struct {
	Remarks string `json:"remarks"`
}

type creditDepositRequest struct {
	UserID      uuid.UUID    `json:"userId" binding:"required"`
	Currency    string       `json:"currency" binding:"required"`
	Amount      money.Amount `json:"amount"`
	ExternalRef string       `json:"externalRef"`
}

type planRequest struct {
	Name            string                   `json:"name" binding:"required"`
	MinAmount       money.Amount             `json:"minAmount"`
	MaxAmount       money.Amount             `json:"maxAmount"`
	InterestRate    string                   `json:"interestRate" binding:"required"`
	DurationDays    int                      `json:"durationDays"`
	PayoutFrequency entities.PayoutFrequency `json:"payoutFrequency" binding:"required"`
	IsActive        *bool                    `json:"isActive"`
}

func (r planRequest) toInput() entities.PlanInput {
	in := entities.PlanInput{
		Name:            r.Name,
		MinAmount:       r.MinAmount,
		MaxAmount:       r.MaxAmount,
		InterestRate:    r.InterestRate,
		DurationDays:    r.DurationDays,
		PayoutFrequency: r.PayoutFrequency,
		IsActive:        true,
	}
	if r.IsActive != nil {
		in.IsActive = *r.IsActive
	}
	return in
}

// Approve completes a pending deposit or withdrawal
// POST /api/v1/admin/transactions/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}

	tx, err := h.settlement.Approve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// Reject fails a pending transaction and releases any held funds
// POST /api/v1/admin/transactions/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}
	var req rejectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, domainerrors.BadRequest(err.Error()))
			return
		}
	}

	tx, err := h.settlement.Reject(c.Request.Context(), id, req.Remarks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// MarkProcessing moves a pending withdrawal out of the owner's reach
// POST /api/v1/admin/transactions/:id/processing
func (h *AdminHandler) MarkProcessing(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}

	tx, err := h.settlement.MarkProcessing(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// CreditDeposit credits a user's wallet directly
// POST /api/v1/admin/deposits
func (h *AdminHandler) CreditDeposit(c *gin.Context) {
	var req creditDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.ledger.Deposit(c.Request.Context(), entities.DepositInput{
		UserID:      req.UserID,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Rail:        entities.DepositRailTrusted,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"transaction": tx})
}

// ListPlans lists every plan, including inactive ones
// GET /api/v1/admin/plans
func (h *AdminHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	if plans == nil {
		plans = []*entities.Plan{}
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

// CreatePlan creates a plan
// POST /api/v1/admin/plans
func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	plan, err := h.plans.Create(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"plan": plan})
}

// UpdatePlan replaces a plan's terms
// PUT /api/v1/admin/plans/:id
func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	id, ok := int64Param(c, "id", "Invalid plan ID")
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	plan, err := h.plans.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plan": plan})
}

// DeletePlan removes a plan that no investment references
// DELETE /api/v1/admin/plans/:id
func (h *AdminHandler) DeletePlan(c *gin.Context) {
	id, ok := int64Param(c, "id", "Invalid plan ID")
	if !ok {
		return
	}

	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AccrueInvestment runs accrual for one investment outside the payout schedule
// POST /api/v1/admin/investments/:id/accrue
func (h *AdminHandler) AccrueInvestment(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Invalid investment ID")
	if !ok {
		return
	}

	result, err := h.ledger.AccruePayout(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
