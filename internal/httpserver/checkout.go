package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/domain"
	checkoutsvc "marketplace-backend/internal/service/checkout"
)

type addressRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	Country string `json:"country" binding:"required"`
	ZipCode string `json:"zipCode"`
}

func (r addressRequest) toDomain() domain.Address {
	return domain.Address{
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Street:  r.Street,
		City:    r.City,
		State:   r.State,
		Country: r.Country,
		ZipCode: r.ZipCode,
	}
}

type quoteRequest struct {
	Destination addressRequest `json:"destination" binding:"required"`
}

func quoteHandler(svc *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		quote, err := svc.Quote(c.Request.Context(), uid, req.Destination.toDomain())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

type checkoutRequest struct {
	Email         string         `json:"email" binding:"required"`
	PaymentMethod string         `json:"paymentMethod" binding:"required"`
	DeliveryType  string         `json:"deliveryType"`
	Destination   addressRequest `json:"destination"`
}

func checkoutHandler(svc *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		method, ok := parsePaymentMethod(req.PaymentMethod)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment method"})
			return
		}
		deliveryType := domain.DeliveryType(req.DeliveryType)
		if req.DeliveryType == "" {
			deliveryType = domain.DeliveryStandard
		}
		result, err := svc.Checkout(c.Request.Context(), checkoutsvc.Input{
			UserID:        uid,
			Email:         req.Email,
			PaymentMethod: method,
			DeliveryType:  deliveryType,
			Destination:   req.Destination.toDomain(),
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func verifyPaymentHandler(svc *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reference := c.Query("reference")
		if reference == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference query parameter required"})
			return
		}
		order, err := svc.VerifyPayment(c.Request.Context(), reference)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func parsePaymentMethod(raw string) (domain.PaymentMethod, bool) {
	switch domain.PaymentMethod(raw) {
	case domain.MethodGateway, domain.MethodWallet, domain.MethodCashOnDelivery:
		return domain.PaymentMethod(raw), true
	default:
		return "", false
	}
}
