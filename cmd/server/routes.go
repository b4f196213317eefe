package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yieldvault.backend/internal/interfaces/http/handlers"
	"yieldvault.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	ledgerHandler     *handlers.LedgerHandler
	investmentHandler *handlers.InvestmentHandler
	adminHandler      *handlers.AdminHandler
	webhookHandler    *handlers.WebhookHandler
	authMiddleware    gin.HandlerFunc
	idempotency       gin.HandlerFunc
	registry          *prometheus.Registry
	healthCheck       func(ctx context.Context) error
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r, d.healthCheck)
	if d.registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))
	}
	registerAPIV1Routes(r, d)
	return r
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	idempotent := d.idempotency
	if idempotent == nil {
		idempotent = func(c *gin.Context) { c.Next() }
	}

	v1 := r.Group("/api/v1")
	{
		// Public catalogue
		v1.GET("/plans", d.investmentHandler.ListPlans)
		v1.GET("/plans/:id", d.investmentHandler.GetPlan)

		// Chain watcher callback, authenticated by shared secret
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/deposits/confirm", d.webhookHandler.ConfirmDeposit)
		}

		user := v1.Group("")
		user.Use(d.authMiddleware)
		{
			user.GET("/wallets", d.ledgerHandler.ListWallets)
			user.GET("/wallets/:currency", d.ledgerHandler.GetWallet)
			user.GET("/portfolio", d.ledgerHandler.GetPortfolio)

			user.POST("/deposits", idempotent, d.ledgerHandler.Deposit)
			user.POST("/withdrawals", idempotent, d.ledgerHandler.Withdraw)
			user.POST("/withdrawals/:id/cancel", d.ledgerHandler.CancelWithdrawal)
			user.POST("/transfers", idempotent, d.ledgerHandler.Transfer)

			user.GET("/transactions", d.ledgerHandler.ListTransactions)
			user.GET("/transactions/:id", d.ledgerHandler.GetTransaction)

			user.POST("/investments", idempotent, d.investmentHandler.CreateInvestment)
			user.GET("/investments", d.investmentHandler.ListInvestments)
			user.GET("/investments/:id", d.investmentHandler.GetInvestment)
			user.POST("/investments/:id/early-withdraw", d.investmentHandler.EarlyWithdraw)
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("/transactions/:id/approve", d.adminHandler.Approve)
			admin.POST("/transactions/:id/reject", d.adminHandler.Reject)
			admin.POST("/transactions/:id/processing", d.adminHandler.MarkProcessing)

			admin.POST("/deposits", idempotent, d.adminHandler.CreditDeposit)

			admin.GET("/plans", d.adminHandler.ListPlans)
			admin.POST("/plans", d.adminHandler.CreatePlan)
			admin.PUT("/plans/:id", d.adminHandler.UpdatePlan)
			admin.DELETE("/plans/:id", d.adminHandler.DeletePlan)

			admin.POST("/investments/:id/accrue", d.adminHandler.AccrueInvestment)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.IdempotencyHeader+", "+middleware.RequestIDHeader)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine, check func(ctx context.Context) error) {
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok", "service": "yieldvault-backend"}
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				body["status"] = "degraded"
				body["database"] = "unavailable"
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
			body["database"] = "ok"
		}
		c.JSON(http.StatusOK, body)
	})
}
