package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/adapters/http/api"
	"github.com/aingelmo/HCGateway-dashboard/internal/adapters/http/site"
	"github.com/aingelmo/HCGateway-dashboard/internal/adapters/http/swagger"
	service "github.com/aingelmo/HCGateway-dashboard/internal/app"
	"github.com/aingelmo/HCGateway-dashboard/internal/config"
	"github.com/aingelmo/HCGateway-dashboard/internal/gateway"
	"github.com/aingelmo/HCGateway-dashboard/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// One HTTP client shared by the token manager and the fetch client so
	// the configured timeout bounds every upstream call.
	upstream := &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutMS) * time.Millisecond}

	tokens, err := gateway.NewManager(
		gateway.Credentials{Username: cfg.Username, Password: cfg.Password},
		cfg.BaseURL,
		gateway.WithHTTPClient(upstream),
		gateway.WithExpiryMargin(time.Duration(cfg.TokenExpiryMarginSec)*time.Second),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build token manager: " + err.Error() + "\n")
		return
	}

	client, err := gateway.NewClient(tokens, cfg.BaseURL, gateway.WithClientHTTPClient(upstream))
	if err != nil {
		os.Stderr.WriteString("failed to build gateway client: " + err.Error() + "\n")
		return
	}

	// Create and start the service wired to the gateway client.
	svc := service.New(
		service.WithFetcher(client),
		service.WithLogger(log.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// API docs under /api-docs.
	swagger.Register(ctx, mux)

	// Root redirect to the dashboard.
	site.Register(ctx, mux)

	// Business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("base_url", cfg.BaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
