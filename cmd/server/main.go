package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docpipe/internal/config"
	"docpipe/internal/handler"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container := config.NewContainer()
	defer func() {
		if err := container.Close(); err != nil {
			container.Logger.Error("Failed to release resources", err)
		}
	}()

	// Handlers
	documentHandler := handler.NewDocumentHandler(
		container.Pipeline,
		container.Config.GetMaxFileSize(),
		container.Logger,
	)
	modelHandler := handler.NewModelHandler(
		container.Meter,
		container.Config.GetDefaultModel(),
	)

	// Router
	router := handler.NewRouter(documentHandler, modelHandler, handler.RouterConfig{
		CORSOrigins: container.Config.GetCORSOrigins(),
		Metrics:     container.Metrics.Handler(),
		Logger:      container.Logger,
	})

	server := &http.Server{
		Addr:              ":" + container.Config.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	serverErr := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// SIGHUP reloads the pricing table; SIGINT and SIGTERM shut down.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err := <-serverErr:
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				if err := container.ReloadPricing(); err != nil {
					container.Logger.Error("Pricing reload failed, keeping current table", err)
					continue
				}
				container.Logger.Info("Pricing table reloaded", "models", len(container.Meter.Models()))
				continue
			}

			container.Logger.Info("Shutting down server...", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := server.Shutdown(ctx); err != nil {
				container.Logger.Error("Graceful shutdown failed", err)
				_ = server.Close()
			}
			cancel()
			container.Logger.Info("Server exited")
			return
		}
	}
}
