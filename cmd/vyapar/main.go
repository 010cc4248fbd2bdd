package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ganesh5491/vyapar-sub000/internal/app"
	"github.com/ganesh5491/vyapar-sub000/internal/billing"
	"github.com/ganesh5491/vyapar-sub000/internal/masterdata"
	"github.com/ganesh5491/vyapar-sub000/internal/platform/store"
	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var st store.Store
	if cfg.PGDSN != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pgStore.Close()
		st = pgStore
		logger.Info("using postgres store")
	} else {
		fileStore, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Error("open data directory", slog.Any("error", err))
			os.Exit(1)
		}
		st = fileStore
		logger.Info("using file store", slog.String("dir", cfg.DataDir))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping", slog.Any("error", err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}
	idempotencyStore := shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)

	clock := shared.SystemClock{}

	masterDataService := masterdata.NewService(st, clock)
	masterDataHandler := masterdata.NewHandler(logger, masterDataService)

	documentRepo := billing.NewDocumentRepository(st)
	paymentRepo := billing.NewPaymentRepository(st)
	sequences := billing.NewSequenceGenerator(st, clock)
	billingService := billing.NewService(documentRepo, paymentRepo, masterDataService, clock, billing.ServiceConfig{
		StrictTransitions: cfg.StrictTransitions,
	})
	billingHandler := billing.NewHandler(logger, billingService, sequences, idempotencyStore)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		BillingHandler:    billingHandler,
		MasterDataHandler: masterDataHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
