package httpserver

import (
	"io"
	"net/http"
	"strconv"

	"market-api/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type createPaymentRequest struct {
	Currency string `json:"currency" binding:"required"`
}

func createPaymentHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := payments.CreatePayment(c.Request.Context(), callerID(c), req.Currency)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func checkOrderHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := payments.CheckOrder(c.Request.Context(), callerID(c), c.Param("orderId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ord)
	}
}

func listOrdersHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := payments.ListOrders(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
	}
}

func orderItemsHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := payments.OrderItems(c.Request.Context(), callerID(c), c.Param("orderId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
	}
}

// webhookHandler acknowledges every delivery with 200 so the provider does
// not retry. Reconciliation failures are handled and logged inside the
// service.
func webhookHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "success"})
			return
		}
		payments.ApplyWebhook(c.Request.Context(), body)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func currenciesHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		currencies := payments.Currencies(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"currencies": currencies})
	}
}

func testCompleteHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := payments.TestComplete(c.Request.Context(), callerID(c), c.Param("orderId")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "completed"})
	}
}

func fakePaymentHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := payments.FakePayment(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ord)
	}
}

func adminOrdersHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
		res, err := payments.AdminListOrders(c.Request.Context(), c.Query("status"), page, pageSize)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
