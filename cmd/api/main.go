package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"marketplace-backend/internal/cache"
	"marketplace-backend/internal/carrier"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/db"
	"marketplace-backend/internal/httpserver"
	"marketplace-backend/internal/payment"
	cartrepo "marketplace-backend/internal/repository/cart"
	licenserepo "marketplace-backend/internal/repository/license"
	orderrepo "marketplace-backend/internal/repository/order"
	outboxrepo "marketplace-backend/internal/repository/outbox"
	productrepo "marketplace-backend/internal/repository/product"
	vendorrepo "marketplace-backend/internal/repository/vendor"
	walletrepo "marketplace-backend/internal/repository/wallet"
	checkoutsvc "marketplace-backend/internal/service/checkout"
	ordersvc "marketplace-backend/internal/service/order"
	ratessvc "marketplace-backend/internal/service/rates"
	shipmentsvc "marketplace-backend/internal/service/shipment"
	walletsvc "marketplace-backend/internal/service/wallet"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var addressCache cache.Cache
	if cfg.RedisAddr != "" {
		addressCache = cache.NewRedis(cfg.RedisAddr)
		logger.Printf("using redis cache at %s", cfg.RedisAddr)
	} else {
		addressCache = cache.NewMemory(1024)
		logger.Printf("using in-memory cache")
	}

	carrierClient := carrier.NewHTTP(cfg.CarrierBaseURL, cfg.CarrierAPIKey, addressCache, logger)
	gateway := payment.NewHTTP(cfg.GatewayBaseURL, cfg.GatewaySecret)

	cartRepo := cartrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	vendorRepo := vendorrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	walletRepo := walletrepo.NewPostgres(dbpool, logger)
	licenseRepo := licenserepo.NewPostgres(dbpool)
	outboxRepo := outboxrepo.NewPostgres(dbpool, logger)

	rateService := ratessvc.New(carrierClient, logger)
	checkoutService := checkoutsvc.New(checkoutsvc.Deps{
		Carts:    cartRepo,
		Products: productRepo,
		Vendors:  vendorRepo,
		Orders:   orderRepo,
		Wallets:  walletRepo,
		Licenses: licenseRepo,
		Outbox:   outboxRepo,
		Rates:    rateService,
		Gateway:  gateway,
	}, cfg.PaymentCallback, cfg.TaxRateBps, logger)
	orderService := ordersvc.New(orderRepo, productRepo, walletRepo, carrierClient, logger)
	shipmentService := shipmentsvc.New(orderRepo, carrierClient, logger)
	walletService := walletsvc.New(walletRepo)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CheckoutSvc: checkoutService,
		OrderSvc:    orderService,
		ShipmentSvc: shipmentService,
		WalletSvc:   walletService,
		Licenses:    licenseRepo,
		Vendors:     vendorRepo,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
