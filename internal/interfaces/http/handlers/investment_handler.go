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

type investmentService interface {
	CreateInvestment(ctx context.Context, in entities.CreateInvestmentInput) (*entities.Investment, error)
	ListInvestments(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus) ([]*entities.Investment, error)
	GetInvestment(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error)
	EarlyWithdraw(ctx context.Context, userID, investmentID uuid.UUID) (*entities.EarlyWithdrawResult, error)
}

type planService interface {
	List(ctx context.Context, activeOnly bool) ([]*entities.Plan, error)
	Get(ctx context.Context, id int64) (*entities.Plan, error)
	Create(ctx context.Context, in entities.PlanInput) (*entities.Plan, error)
	Update(ctx context.Context, id int64, in entities.PlanInput) (*entities.Plan, error)
	Delete(ctx context.Context, id int64) error
}

// InvestmentHandler serves plans and the caller's investments
type InvestmentHandler struct {
	investments investmentService
	plans       planService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investments investmentService, plans planService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments, plans: plans}
}

// createInvestmentRequest accepts both camelCase and snake_case field names.
type createInvestmentRequest struct {
	PlanID         *int64       `json:"planId"`
	PlanIDSnake    *int64       `json:"plan_id"`
	Amount         money.Amount `json:"amount"`
	Currency       string       `json:"currency" binding:"required"`
	AutoRenew      *bool        `json:"autoRenew"`
	AutoRenewSnake *bool        `json:"auto_renew"`
}

func (r createInvestmentRequest) toInput(userID uuid.UUID) (entities.CreateInvestmentInput, error) {
	planID := r.PlanID
	if planID == nil {
		planID = r.PlanIDSnake
	}
	if planID == nil || *planID <= 0 {
		return entities.CreateInvestmentInput{}, domainerrors.BadRequest("planId is required")
	}
	autoRenew := r.AutoRenew
	if autoRenew == nil {
		autoRenew = r.AutoRenewSnake
	}

	in := entities.CreateInvestmentInput{
		UserID:   userID,
		PlanID:   *planID,
		Amount:   r.Amount,
		Currency: r.Currency,
	}
	if autoRenew != nil {
		in.AutoRenew = *autoRenew
	}
	return in, nil
}

// ListPlans lists plans open for new investments
// GET /api/v1/plans
func (h *InvestmentHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	if plans == nil {
		plans = []*entities.Plan{}
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

// GetPlan returns a single plan
// GET /api/v1/plans/:id
func (h *InvestmentHandler) GetPlan(c *gin.Context) {
	id, ok := int64Param(c, "id", "Invalid plan ID")
	if !ok {
		return
	}

	plan, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plan": plan})
}

// CreateInvestment locks principal from the caller's wallet into a plan
// POST /api/v1/investments
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req createInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	in, err := req.toInput(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	inv, err := h.investments.CreateInvestment(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"investment": inv})
}

// ListInvestments lists the caller's investments, optionally by status
// GET /api/v1/investments?status=
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	investments, err := h.investments.ListInvestments(c.Request.Context(), userID, entities.InvestmentStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	if investments == nil {
		investments = []*entities.Investment{}
	}
	response.Success(c, http.StatusOK, gin.H{"investments": investments})
}

// GetInvestment returns one of the caller's investments
// GET /api/v1/investments/:id
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Invalid investment ID")
	if !ok {
		return
	}

	inv, err := h.investments.GetInvestment(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"investment": inv})
}

// EarlyWithdraw closes an active investment before maturity, keeping the penalty
// POST /api/v1/investments/:id/early-withdraw
func (h *InvestmentHandler) EarlyWithdraw(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Invalid investment ID")
	if !ok {
		return
	}

	result, err := h.investments.EarlyWithdraw(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
