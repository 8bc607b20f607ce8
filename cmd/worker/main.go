package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketplace-backend/internal/cache"
	"marketplace-backend/internal/carrier"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/db"
	orderrepo "marketplace-backend/internal/repository/order"
	outboxrepo "marketplace-backend/internal/repository/outbox"
	"marketplace-backend/internal/rewards"
	shipmentsvc "marketplace-backend/internal/service/shipment"
	"marketplace-backend/internal/worker"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[worker] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var addressCache cache.Cache
	if cfg.RedisAddr != "" {
		addressCache = cache.NewRedis(cfg.RedisAddr)
	} else {
		addressCache = cache.NewMemory(1024)
	}

	carrierClient := carrier.NewHTTP(cfg.CarrierBaseURL, cfg.CarrierAPIKey, addressCache, logger)
	rewardsClient := rewards.NewHTTP(cfg.RewardsBaseURL, cfg.RewardsAPIKey)

	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	outboxRepo := outboxrepo.NewPostgres(dbpool, logger)
	shipmentService := shipmentsvc.New(orderRepo, carrierClient, logger)

	dispatcher := worker.NewDispatcher(outboxRepo, cfg.WorkerPollInterval, logger)
	dispatcher.Register(outboxrepo.TaskBookShipment, worker.BookShipmentHandler(shipmentService))
	dispatcher.Register(outboxrepo.TaskAwardPoints, worker.AwardPointsHandler(rewardsClient))

	logger.Printf("worker polling every %s", cfg.WorkerPollInterval)
	if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatalf("dispatcher stopped: %v", err)
	}
	logger.Println("worker stopped")
}
