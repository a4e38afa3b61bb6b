package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jcmexdev/bakeryspot/internal/audit/sqlite"
	"github.com/jcmexdev/bakeryspot/internal/config"
	"github.com/jcmexdev/bakeryspot/internal/httpx"
	"github.com/jcmexdev/bakeryspot/internal/idempotency"
	"github.com/jcmexdev/bakeryspot/internal/payments"
	"github.com/jcmexdev/bakeryspot/internal/pkg/telemetry"
	"github.com/jcmexdev/bakeryspot/internal/ratelimit"
	"github.com/jcmexdev/bakeryspot/internal/repository"
	"github.com/jcmexdev/bakeryspot/internal/resilience"
	"github.com/jcmexdev/bakeryspot/internal/service"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	users := repository.NewUsers()
	if err := service.SeedUsers(users); err != nil {
		slog.Error("failed to seed users", "error", err)
		os.Exit(1)
	}
	orders := repository.NewOrders()
	paymentRepo := repository.NewPayments()
	cat := repository.NewCatalog()
	cat.SeedBakery()

	var idemStore idempotency.Store
	if cfg.RedisAddr != "" {
		redisStore := idempotency.NewRedisStore(cfg.RedisAddr, cfg.ServiceName, cfg.IdempotencyTTL())
		defer redisStore.Close()
		idemStore = redisStore
		slog.Info("idempotency store: redis", "addr", cfg.RedisAddr)
	} else {
		idemStore = idempotency.NewMemoryStore(cfg.IdempotencyTTL())
		slog.Info("idempotency store: in-memory")
	}

	limiter := ratelimit.NewDisabled()
	if cfg.RateLimitEnabled {
		limiter = ratelimit.New(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.AuditDBPath), 0o755); err != nil {
		slog.Error("failed to create audit trail directory", "path", cfg.AuditDBPath, "error", err)
		os.Exit(1)
	}
	auditLog, err := sqlite.Open(cfg.AuditDBPath)
	if err != nil {
		slog.Error("failed to open audit trail", "path", cfg.AuditDBPath, "error", err)
		os.Exit(1)
	}
	defer auditLog.Close()

	payClient := payments.NewClient(
		payments.StubGateway{},
		resilience.NewBreaker("payment_gateway", cfg.BreakerFailureThreshold, cfg.BreakerCooldown()),
		resilience.RetryPolicy{
			MaxRetries: cfg.RetryMaxRetries,
			BaseDelay:  cfg.RetryBaseDelay(),
			MaxDelay:   cfg.RetryMaxDelay(),
			Multiplier: cfg.RetryMultiplier,
			Retryable:  payments.Retryable,
		},
	)

	auth := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenExpiry())
	orderSvc := service.NewOrderService(orders, paymentRepo, cat, idemStore, limiter, auditLog)
	paymentSvc := service.NewPaymentService(paymentRepo, orders, payClient)

	handler := httpx.NewHandler(auth, orderSvc, paymentSvc, payClient, int(cfg.TokenExpiry().Seconds()))
	router := httpx.NewRouter(handler, auth)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("bakeryspot HTTP server running", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}
