// Command devstack runs in-memory stand-ins for the supplier/order service
// and the payment service on two local ports.
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

	"github.com/threedfly/order-orchestrator/internal/devstack"
	"github.com/threedfly/order-orchestrator/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orderAddr := getEnv("ORDER_STUB_ADDR", ":8081")
	paymentAddr := getEnv("PAYMENT_STUB_ADDR", ":8082")

	orderSrv := &http.Server{Addr: orderAddr, Handler: devstack.NewOrderService().Routes()}
	paymentSrv := &http.Server{Addr: paymentAddr, Handler: devstack.NewPaymentService().Routes()}

	g, gCtx := errgroup.WithContext(ctx)

	for _, srv := range []*http.Server{orderSrv, paymentSrv} {
		srv := srv
		g.Go(func() error {
			slog.Info("devstack service running", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("devstack exited with error", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
