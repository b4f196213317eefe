package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a page of items with its metadata
func Paginated(c *gin.Context, key string, items interface{}, meta utils.PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		key:          items,
		"pagination": meta,
	})
}

// Error maps err to its stable code and status. Internal errors are logged and
// reported without their cause.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	if appErr == nil {
		appErr = domainerrors.InternalError(errors.New("unknown error"))
	}

	message := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("code", appErr.Code),
			zap.Error(appErr.Err),
		)
		if appErr.Code == domainerrors.CodeInternalError {
			message = "internal server error"
		}
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": message,
	})
}

// ErrorWithError sends an error response with a specific status, code and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// Abort is ErrorWithError for middleware
func Abort(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
