package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"yieldvault.backend/internal/infrastructure/metrics"
	"yieldvault.backend/internal/interfaces/http/handlers"
	"yieldvault.backend/internal/interfaces/http/middleware"
	"yieldvault.backend/pkg/jwt"
)

func emptyDeps() routeDeps {
	return routeDeps{
		ledgerHandler:     &handlers.LedgerHandler{},
		investmentHandler: &handlers.InvestmentHandler{},
		adminHandler:      &handlers.AdminHandler{},
		webhookHandler:    handlers.NewWebhookHandler(nil, ""),
		authMiddleware:    func(c *gin.Context) { c.Next() },
	}
}

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, emptyDeps())

	routes := r.Routes()
	if len(routes) < 25 {
		t.Fatalf("expected every ledger route registered, got %d", len(routes))
	}

	expects := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/wallets"},
		{"GET", "/api/v1/wallets/:currency"},
		{"GET", "/api/v1/portfolio"},
		{"POST", "/api/v1/deposits"},
		{"POST", "/api/v1/withdrawals"},
		{"POST", "/api/v1/withdrawals/:id/cancel"},
		{"POST", "/api/v1/transfers"},
		{"GET", "/api/v1/transactions"},
		{"GET", "/api/v1/transactions/:id"},
		{"GET", "/api/v1/plans"},
		{"POST", "/api/v1/investments"},
		{"GET", "/api/v1/investments/:id"},
		{"POST", "/api/v1/investments/:id/early-withdraw"},
		{"POST", "/api/v1/admin/transactions/:id/approve"},
		{"POST", "/api/v1/admin/transactions/:id/reject"},
		{"POST", "/api/v1/admin/transactions/:id/processing"},
		{"POST", "/api/v1/admin/deposits"},
		{"PUT", "/api/v1/admin/plans/:id"},
		{"DELETE", "/api/v1/admin/plans/:id"},
		{"POST", "/api/v1/admin/investments/:id/accrue"},
		{"POST", "/api/v1/webhooks/deposits/confirm"},
	}

	for _, exp := range expects {
		found := false
		for _, route := range routes {
			if route.Method == exp.method && route.Path == exp.path {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("route %s %s not registered", exp.method, exp.path)
		}
	}
}

func TestNewRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := jwt.NewTokenService("secret", "yieldvault", time.Hour)
	d := emptyDeps()
	d.authMiddleware = middleware.AuthMiddleware(tokens)
	r := newRouter(d)

	token, _, err := tokens.Issue(uuid.New(), "user@mail.com", "USER")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/deposits", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestNewRouter_ServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.NewLedger(reg)
	m.PayoutRun()

	d := emptyDeps()
	d.registry = reg
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "yieldvault_payout_runs_total 1") {
		t.Fatalf("payout counter missing from exposition:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
