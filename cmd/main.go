package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gigbridge/gigbridge/config"
	"github.com/gigbridge/gigbridge/internal/api/v1/handlers"
	"github.com/gigbridge/gigbridge/internal/api/v1/routes"
	"github.com/gigbridge/gigbridge/internal/app"
	"github.com/gigbridge/gigbridge/internal/db"
	"github.com/gigbridge/gigbridge/internal/db/repos"
	"github.com/gigbridge/gigbridge/internal/events"
	"github.com/gigbridge/gigbridge/internal/logger"
	"github.com/gigbridge/gigbridge/internal/notify"
	"github.com/gigbridge/gigbridge/internal/payments"
	"github.com/gigbridge/gigbridge/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logger.InitializeAndConfigure()

	dbPort, err := strconv.Atoi(config.GetEnv("DB_PORT", "5432"))
	if err != nil {
		logger.Fatalf("Invalid DB_PORT: %v", err)
	}
	gormDB, err := db.New(db.Options{
		Host:     config.GetEnv("DB_HOST", db.DefaultHost),
		User:     config.GetEnv("DB_USER", db.DefaultUser),
		Password: config.GetEnv("DB_PASSWORD", db.DefaultPassword),
		DBName:   config.GetEnv("DB_NAME", db.DefaultDBName),
		Port:     dbPort,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	jobRepo := repos.NewJobRepository(gormDB)
	bidRepo := repos.NewBidRepository(gormDB)
	workerRepo := repos.NewWorkerRepository(gormDB)
	ledgerRepo := repos.NewLedgerRepository(gormDB)

	var dispatcher notify.Dispatcher = &notify.LogDispatcher{}
	if url := config.GetEnv("NOTIFY_WEBHOOK_URL", ""); url != "" {
		dispatcher = notify.NewWebhookDispatcher(url)
	}

	// TODO: swap the fake gateway for the production payment adapter once
	// its credentials flow is settled.
	gateway := payments.NewFakeGateway()

	jobService := services.NewJobService(jobRepo, bidRepo, workerRepo, ledgerRepo, gateway, dispatcher)
	bidService := services.NewBidService(bidRepo, jobRepo, workerRepo, dispatcher)
	accountService := services.NewAccountService(workerRepo, ledgerRepo)
	settlementService := services.NewSettlementService(jobRepo, ledgerRepo, workerRepo, jobService, gateway, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events.Start(ctx)

	sweepInterval := services.DefaultSweepInterval
	if raw := config.GetEnv("SWEEP_INTERVAL", ""); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logger.Fatalf("Invalid SWEEP_INTERVAL: %v", err)
		}
		sweepInterval = parsed
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go services.LaunchSettlementWorker(ctx, &wg, settlementService, sweepInterval)

	fiberApp := app.New(routes.Handlers{
		Job:    handlers.NewJobHandler(jobService),
		Bid:    handlers.NewBidHandler(bidService),
		Worker: handlers.NewWorkerHandler(accountService),
		Admin:  handlers.NewAdminHandler(jobService, accountService, settlementService),
	})

	go func() {
		addr := ":" + config.GetEnv("PORT", "8080")
		if err := fiberApp.Listen(addr); err != nil {
			logger.Fatalf("Server stopped: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")
	cancel()
	wg.Wait()
	if err := fiberApp.Shutdown(); err != nil {
		logger.Errorf("Failed to shut down server: %v", err)
	}
}
