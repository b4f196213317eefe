package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldvault.backend/internal/interfaces/http/response"
	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "X-Idempotency-Replayed"
	// LockDuration is how long a key stays claimed while its request runs
	LockDuration = 30 * time.Second

	codeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	processingMarker        = "processing"
)

// IdempotencyStore keeps claimed keys and finished responses
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a request already completed with the
// same Idempotency-Key. Keys are scoped per user, method and route. A store outage lets the
// request through rather than failing it.
func IdempotencyMiddleware(store IdempotencyStore, retention time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || store == nil {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		storageKey := fmt.Sprintf("%s:%s:%s:%s", userID, c.Request.Method, c.FullPath(), key)
		// the ledger commits even if the client goes away, so the stored outcome must too
		ctx := context.WithoutCancel(c.Request.Context())

		val, err := store.Get(ctx, storageKey)
		switch {
		case err == nil:
			replay(c, val)
			return
		case !errors.Is(err, redis.ErrCacheMiss):
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		claimed, err := store.SetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil {
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			response.Abort(c, http.StatusConflict, codeIdempotencyConflict, "Request already in progress")
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			raw, _ := json.Marshal(storedResponse{Status: status, Body: w.body.String()})
			if err := store.Set(ctx, storageKey, string(raw), retention); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		// let the client retry a failed request
		_ = store.Del(ctx, storageKey)
	}
}

func replay(c *gin.Context, val string) {
	if val == processingMarker {
		response.Abort(c, http.StatusConflict, codeIdempotencyConflict, "Request already in progress")
		return
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil || stored.Status == 0 {
		response.Abort(c, http.StatusConflict, codeIdempotencyConflict, "Stored response is unreadable")
		return
	}
	c.Header(ReplayHeader, "true")
	c.Data(stored.Status, "application/json; charset=utf-8", []byte(stored.Body))
	c.Abort()
}
