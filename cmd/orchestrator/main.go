package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/threedfly/order-orchestrator/internal/config"
	"github.com/threedfly/order-orchestrator/internal/orchestrator/auditlog"
	auditsqlite "github.com/threedfly/order-orchestrator/internal/orchestrator/auditlog/sqlite"
	"github.com/threedfly/order-orchestrator/internal/orchestrator/httpx"
	"github.com/threedfly/order-orchestrator/internal/orchestrator/saga"
	"github.com/threedfly/order-orchestrator/internal/orderservice"
	"github.com/threedfly/order-orchestrator/internal/paymentservice"
	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
	"github.com/threedfly/order-orchestrator/internal/pkg/cache"
	"github.com/threedfly/order-orchestrator/internal/pkg/resilience"
	"github.com/threedfly/order-orchestrator/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "order-orchestrator"))
	if err != nil {
		// Tracing is best-effort; the orchestrator runs without it.
		slog.Warn("failed to initialise tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	auditRepo, err := auditsqlite.Open(cfg.Audit.Path)
	if err != nil {
		slog.Error("failed to open audit store", "path", cfg.Audit.Path, "error", err)
		os.Exit(1)
	}
	defer auditRepo.Close()

	var supplierCache cache.Cache
	if cfg.Redis.Addr != "" {
		supplierCache = cache.NewRedisCache(cfg.Redis.Addr, "orchestrator")
	} else {
		slog.Warn("redis not configured, supplier fallback cache disabled")
	}

	registry := resilience.NewRegistry(cfg.ResilienceDefaults(), cfg.ResilienceOverrides(), apperr.Transient)

	orders := orderservice.New(cfg.OrderService.BaseURL, registry, supplierCache, cfg.Redis.SupplierTTL.Std())
	payments := paymentservice.New(cfg.PaymentService.BaseURL, registry)

	coordinator := saga.NewCoordinator(orders, payments, auditlog.NewRecorder(auditRepo))

	handler := httpx.NewHandler(coordinator, orders, payments)
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("order orchestrator running", "addr", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
