package httpserver

import (
	"net/http"

	deliveryrepo "market-api/internal/repository/delivery"
	"market-api/internal/service/delivery"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createDeliveryRequest struct {
	OrderID           string          `json:"orderId" binding:"required"`
	Method            string          `json:"deliveryMethod"`
	Type              string          `json:"deliveryType"`
	RecipientFullName string          `json:"recipientFullName" binding:"required"`
	RecipientPhone    string          `json:"recipientPhone" binding:"required"`
	CityRef           string          `json:"cityRef"`
	CityName          string          `json:"cityName"`
	WarehouseRef      string          `json:"warehouseRef"`
	WarehouseAddress  string          `json:"warehouseAddress"`
	Address           string          `json:"deliveryAddress"`
	Cost              decimal.Decimal `json:"deliveryCost"`
	Data              map[string]any  `json:"additionalData"`
}

func createDeliveryHandler(deliveries *delivery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := deliveries.Create(c.Request.Context(), callerID(c), deliveryrepo.CreateDeliveryInput{
			OrderID:           req.OrderID,
			Method:            req.Method,
			Type:              req.Type,
			RecipientFullName: req.RecipientFullName,
			RecipientPhone:    req.RecipientPhone,
			CityRef:           req.CityRef,
			CityName:          req.CityName,
			WarehouseRef:      req.WarehouseRef,
			WarehouseAddress:  req.WarehouseAddress,
			Address:           req.Address,
			Cost:              req.Cost,
			Data:              req.Data,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func getDeliveryHandler(deliveries *delivery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := deliveries.GetForOrder(c.Request.Context(), callerID(c), c.Param("orderId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

type updateDeliveryRequest struct {
	RecipientFullName *string `json:"recipientFullName"`
	RecipientPhone    *string `json:"recipientPhone"`
	CityRef           *string `json:"cityRef"`
	CityName          *string `json:"cityName"`
	WarehouseRef      *string `json:"warehouseRef"`
	WarehouseAddress  *string `json:"warehouseAddress"`
	Address           *string `json:"deliveryAddress"`
}

func updateDeliveryHandler(deliveries *delivery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updated, err := deliveries.Update(c.Request.Context(), callerID(c), c.Param("orderId"), deliveryrepo.UpdateDeliveryInput{
			RecipientFullName: req.RecipientFullName,
			RecipientPhone:    req.RecipientPhone,
			CityRef:           req.CityRef,
			CityName:          req.CityName,
			WarehouseRef:      req.WarehouseRef,
			WarehouseAddress:  req.WarehouseAddress,
			Address:           req.Address,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func trackDeliveryHandler(deliveries *delivery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := deliveries.Track(c.Request.Context(), c.Param("trackingNumber"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

type setTrackingRequest struct {
	TrackingNumber string `json:"trackingNumber" binding:"required"`
}

func setTrackingHandler(deliveries *delivery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setTrackingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := deliveries.SetTracking(c.Request.Context(), c.Param("id"), req.TrackingNumber); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

type setDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func setDeliveryStatusHandler(deliveries *delivery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setDeliveryStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := deliveries.SetStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}
