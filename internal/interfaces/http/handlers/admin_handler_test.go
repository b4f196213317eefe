package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
)

func adminRouter(h *AdminHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/v1/admin")
	g.POST("/transactions/:id/approve", h.Approve)
	g.POST("/transactions/:id/reject", h.Reject)
	g.POST("/transactions/:id/processing", h.MarkProcessing)
	g.POST("/deposits", h.CreditDeposit)
	g.GET("/plans", h.ListPlans)
	g.POST("/plans", h.CreatePlan)
	g.PUT("/plans/:id", h.UpdatePlan)
	g.DELETE("/plans/:id", h.DeletePlan)
	g.POST("/investments/:id/accrue", h.AccrueInvestment)
	return r
}

func TestAdminHandler_Settlement(t *testing.T) {
	txID := uuid.New()
	var remarks string
	settlement := &settlementStub{
		approveFn: func(_ context.Context, id uuid.UUID) (*entities.Transaction, error) {
			return &entities.Transaction{ID: id, Status: entities.TransactionStatusCompleted}, nil
		},
		rejectFn: func(_ context.Context, id uuid.UUID, r string) (*entities.Transaction, error) {
			remarks = r
			return &entities.Transaction{ID: id, Status: entities.TransactionStatusFailed}, nil
		},
		processingFn: func(_ context.Context, id uuid.UUID) (*entities.Transaction, error) {
			return nil, fmt.Errorf("%w: already completed", domainerrors.ErrNotPending)
		},
	}
	r := adminRouter(NewAdminHandler(settlement, &ledgerStub{}, &planStub{}))
	base := "/api/v1/admin/transactions/" + txID.String()

	w := call(r, http.MethodPost, base+"/approve", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = call(r, http.MethodPost, base+"/reject", `{"remarks":"address flagged"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "address flagged", remarks)

	w = call(r, http.MethodPost, base+"/reject", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, remarks)

	w = call(r, http.MethodPost, base+"/processing", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeNotPending)

	w = call(r, http.MethodPost, "/api/v1/admin/transactions/xyz/approve", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_CreditDepositUsesTrustedRail(t *testing.T) {
	userID := uuid.New()
	var got entities.DepositInput
	ledger := &ledgerStub{depositFn: func(_ context.Context, in entities.DepositInput) (*entities.Transaction, error) {
		got = in
		return &entities.Transaction{ID: uuid.New(), Status: entities.TransactionStatusCompleted}, nil
	}}
	r := adminRouter(NewAdminHandler(&settlementStub{}, ledger, &planStub{}))

	w := call(r, http.MethodPost, "/api/v1/admin/deposits", `{"userId":"`+userID.String()+`","currency":"USDT","amount":"100"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, entities.DepositRailTrusted, got.Rail)
	assert.Equal(t, userID, got.UserID)

	w = call(r, http.MethodPost, "/api/v1/admin/deposits", `{"currency":"USDT","amount":"100"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_PlanManagement(t *testing.T) {
	var created entities.PlanInput
	plans := &planStub{
		listFn: func(_ context.Context, activeOnly bool) ([]*entities.Plan, error) {
			assert.False(t, activeOnly)
			return nil, nil
		},
		createFn: func(_ context.Context, in entities.PlanInput) (*entities.Plan, error) {
			created = in
			return &entities.Plan{ID: 4, Name: in.Name, IsActive: in.IsActive}, nil
		},
		updateFn: func(_ context.Context, id int64, in entities.PlanInput) (*entities.Plan, error) {
			return &entities.Plan{ID: id, Name: in.Name, IsActive: in.IsActive}, nil
		},
		deleteFn: func(_ context.Context, id int64) error {
			if id == 4 {
				return fmt.Errorf("%w: 2 investments", domainerrors.ErrPlanInUse)
			}
			return nil
		},
	}
	r := adminRouter(NewAdminHandler(&settlementStub{}, &ledgerStub{}, plans))

	w := call(r, http.MethodGet, "/api/v1/admin/plans", "")
	assert.JSONEq(t, `{"plans":[]}`, w.Body.String())

	body := `{"name":"Gold","minAmount":"100","maxAmount":"10000","interestRate":"12.5","durationDays":30,"payoutFrequency":"daily"}`
	w = call(r, http.MethodPost, "/api/v1/admin/plans", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, created.IsActive)
	assert.Equal(t, "12.5", created.InterestRate)
	assert.Equal(t, entities.PayoutDaily, created.PayoutFrequency)
	assert.Equal(t, 30, created.DurationDays)

	w = call(r, http.MethodPut, "/api/v1/admin/plans/4", `{"name":"Gold","interestRate":"10","payoutFrequency":"weekly","isActive":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isActive":false`)

	w = call(r, http.MethodPost, "/api/v1/admin/plans", `{"interestRate":"10"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodDelete, "/api/v1/admin/plans/4", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodePlanInUse)

	w = call(r, http.MethodDelete, "/api/v1/admin/plans/5", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminHandler_AccrueInvestment(t *testing.T) {
	invID := uuid.New()
	ledger := &ledgerStub{accrueFn: func(_ context.Context, id uuid.UUID) (*entities.AccrualResult, error) {
		if id != invID {
			return nil, domainerrors.ErrNotFound
		}
		return &entities.AccrualResult{Investment: &entities.Investment{ID: id}, Matured: true}, nil
	}}
	r := adminRouter(NewAdminHandler(&settlementStub{}, ledger, &planStub{}))

	w := call(r, http.MethodPost, "/api/v1/admin/investments/"+invID.String()+"/accrue", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"matured":true`)

	w = call(r, http.MethodPost, "/api/v1/admin/investments/"+uuid.NewString()+"/accrue", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
