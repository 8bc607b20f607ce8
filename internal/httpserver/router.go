package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	licenserepo "marketplace-backend/internal/repository/license"
	vendorrepo "marketplace-backend/internal/repository/vendor"
	checkoutsvc "marketplace-backend/internal/service/checkout"
	ordersvc "marketplace-backend/internal/service/order"
	shipmentsvc "marketplace-backend/internal/service/shipment"
	walletsvc "marketplace-backend/internal/service/wallet"
)

// Deps carries the services the router exposes. Licenses and Vendors are
// plain repositories; their read endpoints have no business logic to wrap.
type Deps struct {
	CheckoutSvc *checkoutsvc.Service
	OrderSvc    *ordersvc.Service
	ShipmentSvc *shipmentsvc.Service
	WalletSvc   *walletsvc.Service
	Licenses    licenserepo.Repository
	Vendors     vendorrepo.Repository
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	v1 := router.Group("/v1")
	{
		v1.POST("/checkout/quote", quoteHandler(deps.CheckoutSvc))
		v1.POST("/checkout", checkoutHandler(deps.CheckoutSvc))
		v1.GET("/payments/verify", verifyPaymentHandler(deps.CheckoutSvc))

		v1.GET("/orders", listOrdersHandler(deps.OrderSvc))
		v1.GET("/orders/:number", getOrderHandler(deps.OrderSvc))
		v1.POST("/orders/:number/cancel", cancelOrderHandler(deps.OrderSvc))
		v1.PATCH("/orders/:number/status", updateOrderStatusHandler(deps.OrderSvc))
		v1.GET("/orders/:number/shipments/:id/tracking", trackShipmentHandler(deps.ShipmentSvc))

		v1.GET("/licenses", listLicensesHandler(deps.Licenses))
		v1.GET("/vendors/:id", getVendorHandler(deps.Vendors))

		v1.GET("/wallet", getWalletHandler(deps.WalletSvc))
		v1.POST("/wallet/topup", topUpWalletHandler(deps.WalletSvc))
		v1.POST("/wallet/withdrawals", requestWithdrawalHandler(deps.WalletSvc))
		v1.PATCH("/wallet/withdrawals/:id", resolveWithdrawalHandler(deps.WalletSvc))
	}

	return router
}
