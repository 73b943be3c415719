package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/retailbooks/retailbooks/internal/app"
	"github.com/retailbooks/retailbooks/internal/gst"
	"github.com/retailbooks/retailbooks/internal/insights"
	"github.com/retailbooks/retailbooks/internal/ledger"
	"github.com/retailbooks/retailbooks/internal/observability"
	"github.com/retailbooks/retailbooks/internal/platform/cache"
	"github.com/retailbooks/retailbooks/internal/platform/db"
	"github.com/retailbooks/retailbooks/internal/stock"
	"github.com/retailbooks/retailbooks/internal/store"
	"github.com/retailbooks/retailbooks/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Reports stay available without Redis, every request just
		// recomputes from events.
		logger.Warn("redis unavailable, filing cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	st := store.NewPostgres(pool)

	ledgerService := ledger.NewService(st, logger)
	ledgerHandler := ledger.NewHandler(ledgerService, logger)

	stockService := stock.NewService(st, logger)
	stockHandler := stock.NewHandler(stockService, logger)

	gstCache := gst.NewCache(redisClient, cfg.CacheTTL)
	gstService := gst.NewService(st, gstCache, logger, cfg.QueryBudget)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	gstHandler := gst.NewHandler(gstService, jobClient, logger)

	insightsService := insights.NewService(st, logger, nil)
	insightsHandler := insights.NewHandler(insightsService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		LedgerHandler:   ledgerHandler,
		StockHandler:    stockHandler,
		GSTHandler:      gstHandler,
		InsightsHandler: insightsHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
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
