package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"membergraph/backend/internal/api"
	"membergraph/backend/internal/gql"
	"membergraph/backend/internal/metrics"
	"membergraph/backend/internal/resolve"
	"membergraph/backend/internal/seed"
	"membergraph/backend/internal/storage"
	"membergraph/backend/internal/store"
	"membergraph/backend/pkg/config"
	"membergraph/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting GraphQL server...", zap.String("backend", cfg.StoreBackend))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s, err := storage.Open(ctx, cfg)
	if err != nil {
		cancel()
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer s.Close(context.Background())

	if err := seed.Prepare(ctx, s); err != nil {
		cancel()
		log.Fatal("Failed to prepare store", zap.Error(err))
	}
	if cfg.SeedDemoData {
		if _, err := seed.Demo(ctx, s); err != nil {
			log.Warn("Failed to seed demo data", zap.Error(err))
		}
	}
	cancel()

	srv, err := newServer(cfg, s, log)
	if err != nil {
		log.Fatal("Failed to build server", zap.Error(err))
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// newServer wires the resolver stack over s into an HTTP server
func newServer(cfg *config.Config, s store.Store, log *zap.Logger) (*http.Server, error) {
	collector := metrics.New()
	dispatcher := resolve.NewDispatcher(s, log.Named("resolve"), collector)

	executor, err := gql.NewExecutor(dispatcher, log.Named("gql"))
	if err != nil {
		return nil, err
	}

	router := api.NewRouter(api.Options{
		Executor:       executor,
		Metrics:        collector,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		Production:     cfg.IsProduction(),
	})

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
