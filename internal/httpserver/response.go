package httpserver

import (
	"errors"
	"net/http"

	"market-api/internal/domain"
	"market-api/internal/paygate"
	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var apiErr *paygate.APIError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicatePaymentIntent):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, domain.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.As(err, &apiErr):
		// Provider failures carry the provider's own status and body.
		c.JSON(http.StatusInternalServerError, gin.H{"error": apiErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
