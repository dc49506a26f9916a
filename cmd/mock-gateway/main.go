// Command mock-gateway runs an in-memory HCGateway v2 lookalike for local
// development of the dashboard. Point HCGW_BASE_URL at it and log in with
// the credentials it was started with.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/mockgw"
	"github.com/aingelmo/HCGateway-dashboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr       = ":9080"
	defaultUser       = "demo"
	defaultPass       = "demo"
	defaultSeedDays   = 45
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	var (
		addr     = flag.String("addr", defaultAddr, "Listen address")
		username = flag.String("user", defaultUser, "Accepted username")
		password = flag.String("pass", defaultPass, "Accepted password")
		seedDays = flag.Int("days", defaultSeedDays, "Days of step records to seed")
		tokenTTL = flag.Duration("token-ttl", mockgw.DefaultTokenTTL, "Lifetime of issued tokens")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get().Named("mockgw")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw := mockgw.New(*username, *password,
		mockgw.WithTokenTTL(*tokenTTL),
		mockgw.WithRecords(mockgw.Seed(*seedDays, time.Now())),
	)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting mock gateway",
			logger.String("addr", *addr),
			logger.Int("seed_days", *seedDays))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("mock gateway failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down mock gateway...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "mock gateway shutdown failed", logger.Error(err))
	}
}
