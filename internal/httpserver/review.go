package httpserver

import (
	"net/http"

	"market-api/internal/service/review"
	"github.com/gin-gonic/gin"
)

func listReviewsHandler(reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := reviews.ListByProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": list, "count": len(list)})
	}
}

type addReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func addReviewHandler(reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := reviews.Add(c.Request.Context(), callerID(c), c.Param("id"), req.Rating, req.Comment)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func reviewEligibilityHandler(reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := reviews.CanReview(c.Request.Context(), callerID(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"canReview": ok})
	}
}

func deleteReviewHandler(reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := reviews.Delete(c.Request.Context(), callerID(c), callerRole(c), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
