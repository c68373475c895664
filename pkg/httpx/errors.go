package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
)

// WriteError maps the error taxonomy onto HTTP status codes. Validation and
// state-conflict errors carry enough detail for the caller to act; gateway
// errors are surfaced as retryable.
func WriteError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       validationErr.Message,
			"requirement": validationErr.Requirement,
		})
		return
	}

	var conflictErr *apperrors.StateConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          conflictErr.Error(),
			"current_state":  conflictErr.Current,
			"required_state": conflictErr.Required,
		})
		return
	}

	var gatewayErr *apperrors.GatewayError
	if errors.As(err, &gatewayErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     gatewayErr.Error(),
			"retryable": true,
		})
		return
	}

	var authErr *apperrors.AuthorizationError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": authErr.Error()})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
