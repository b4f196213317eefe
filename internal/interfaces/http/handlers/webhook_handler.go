package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/interfaces/http/response"
	"yieldvault.backend/pkg/logger"
)

// WebhookSecretHeader carries the shared secret of the deposit confirmation feed
const WebhookSecretHeader = "X-Webhook-Secret"

type depositConfirmer interface {
	ConfirmDepositByReference(ctx context.Context, externalRef string) (*entities.Transaction, error)
}

// WebhookHandler receives deposit confirmations from the chain watcher
type WebhookHandler struct {
	confirmer depositConfirmer
	secret    []byte
}

// NewWebhookHandler creates a new webhook handler. An empty secret rejects every call.
func NewWebhookHandler(confirmer depositConfirmer, secret string) *WebhookHandler {
	return &WebhookHandler{confirmer: confirmer, secret: []byte(secret)}
}

type confirmDepositRequest struct {
	ExternalRef      string `json:"externalRef"`
	ExternalRefSnake string `json:"external_ref"`
}

// ConfirmDeposit completes the pending deposit with the given external reference.
// Repeated confirmations return the completed record.
// POST /api/v1/webhooks/deposits/confirm
func (h *WebhookHandler) ConfirmDeposit(c *gin.Context) {
	got := []byte(c.GetHeader(WebhookSecretHeader))
	if len(h.secret) == 0 || subtle.ConstantTimeCompare(got, h.secret) != 1 {
		logger.Warn(c.Request.Context(), "Webhook rejected", zap.String("client_ip", c.ClientIP()))
		response.Error(c, domainerrors.Unauthorized("Invalid webhook secret"))
		return
	}

	var req confirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	ref := strings.TrimSpace(req.ExternalRef)
	if ref == "" {
		ref = strings.TrimSpace(req.ExternalRefSnake)
	}
	if ref == "" {
		response.Error(c, domainerrors.BadRequest("externalRef is required"))
		return
	}

	tx, err := h.confirmer.ConfirmDepositByReference(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}
