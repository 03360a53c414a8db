package httpserver

import (
	"net/http"

	"market-api/internal/service/wishlist"
	"github.com/gin-gonic/gin"
)

func listWishlistHandler(wishlists *wishlist.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := wishlists.List(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": entries, "count": len(entries)})
	}
}

type addWishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func addWishlistHandler(wishlists *wishlist.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addWishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		item, err := wishlists.Add(c.Request.Context(), callerID(c), req.ProductID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func removeWishlistHandler(wishlists *wishlist.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := wishlists.Remove(c.Request.Context(), callerID(c), c.Param("productId")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
