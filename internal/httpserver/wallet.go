package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace-backend/internal/domain"
	walletsvc "marketplace-backend/internal/service/wallet"
)

func getWalletHandler(svc *walletsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		w, err := svc.Get(c.Request.Context(), uid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": w})
	}
}

type topUpRequest struct {
	AmountCents int64  `json:"amountCents" binding:"required,gt=0"`
	Reference   string `json:"reference" binding:"required"`
}

func topUpWalletHandler(svc *walletsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req topUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		txn, err := svc.Credit(c.Request.Context(), uid, req.AmountCents, domain.PurposeTopUp, req.Reference)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"transaction": txn})
	}
}

type withdrawalRequest struct {
	AmountCents int64 `json:"amountCents" binding:"required,gt=0"`
}

func requestWithdrawalHandler(svc *walletsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req withdrawalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		txn, err := svc.RequestWithdrawal(c.Request.Context(), uid, req.AmountCents, "WD-"+uuid.NewString()[:8])
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"transaction": txn})
	}
}

type resolveWithdrawalRequest struct {
	Approved bool `json:"approved"`
}

// resolveWithdrawalHandler is the admin resolution of a pending
// withdrawal; admin authorization is enforced upstream.
func resolveWithdrawalHandler(svc *walletsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req resolveWithdrawalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.ResolveWithdrawal(c.Request.Context(), uid, c.Param("id"), req.Approved); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "resolved"})
	}
}
