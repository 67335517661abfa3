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
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	"github.com/strata-books/strata-books/internal/accounts"
	"github.com/strata-books/strata-books/internal/app"
	"github.com/strata-books/strata-books/internal/auth"
	"github.com/strata-books/strata-books/internal/history"
	"github.com/strata-books/strata-books/internal/ledger"
	"github.com/strata-books/strata-books/internal/observability"
	"github.com/strata-books/strata-books/internal/platform/db"
	"github.com/strata-books/strata-books/internal/reports"
	"github.com/strata-books/strata-books/internal/shared"
	"github.com/strata-books/strata-books/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	tokenIssuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokenIssuer)
	authHandler := auth.NewHandler(logger, authService)

	accountsService := accounts.NewService(accounts.NewRepository(pool), auditLogger)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reports.NewRepository(pool), reportsCache)
	exporter := reports.NewExporter(language.English)
	reportsHandler := reports.NewHandler(logger, reportsService, exporter)

	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger, metrics)
	ledgerService.WithCache(reportsService)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	historyService := history.NewService(history.NewRepository(pool), logger)
	historyHandler := history.NewHandler(logger, historyService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
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
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Config:          cfg,
		Metrics:         metrics,
		AuthHandler:     authHandler,
		AuthMiddleware:  auth.Middleware(authService),
		AccountsHandler: accountsHandler,
		LedgerHandler:   ledgerHandler,
		ReportsHandler:  reportsHandler,
		HistoryHandler:  historyHandler,
		JobHandler:      jobHandler,
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
