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

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/storefront"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel, "storefront")

	ctx := context.Background()
	app, err := storefront.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start storefront", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("storefront ready",
		slog.String("storage", cfg.StorageDriver),
		slog.String("bus", cfg.BusDriver),
		slog.String("admin", cfg.AdminMode),
		slog.String("origin", app.Origin))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      app.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront listening", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := app.Close(); err != nil {
		log.Error("failed to release resources", slog.String("error", err.Error()))
	}

	log.Info("server exited")
}
