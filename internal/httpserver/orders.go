package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/domain"
	ordersvc "marketplace-backend/internal/service/order"
	shipmentsvc "marketplace-backend/internal/service/shipment"
)

func listOrdersHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		orders, err := svc.ListByUser(c.Request.Context(), uid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		order, err := svc.Get(c.Request.Context(), c.Param("number"))
		if err != nil {
			fail(c, err)
			return
		}
		if order.UserID != uid {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func cancelOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req cancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		number := c.Param("number")
		order, err := svc.Get(c.Request.Context(), number)
		if err != nil {
			fail(c, err)
			return
		}
		if order.UserID != uid {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		cancelled, err := svc.Cancel(c.Request.Context(), number, req.Reason)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": cancelled})
	}
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateOrderStatusHandler accepts vendor-side fulfillment progress. Vendor
// authentication is handled upstream, like customer auth.
func updateOrderStatusHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("number"), domain.FulfillmentStatus(req.Status))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func trackShipmentHandler(svc *shipmentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := userID(c); !ok {
			return
		}
		status, err := svc.Track(c.Request.Context(), c.Param("number"), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}
