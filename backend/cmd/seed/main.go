package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"membergraph/backend/internal/seed"
	"membergraph/backend/internal/storage"
	"membergraph/backend/pkg/config"
	"membergraph/backend/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "Delete all users, posts, profiles and subscriptions first")
	demo := flag.Bool("demo", false, "Insert demo users, posts and subscriptions")
	timeout := flag.Duration("timeout", time.Minute, "Overall timeout")
	flag.Parse()

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
	log.Info("Starting database seeding...", zap.String("backend", cfg.StoreBackend))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer s.Close(context.Background())

	if err := seed.Prepare(ctx, s); err != nil {
		log.Fatal("Failed to prepare store", zap.Error(err))
	}

	if *reset {
		log.Info("Resetting store...")
		if err := seed.Reset(ctx, s); err != nil {
			log.Fatal("Failed to reset store", zap.Error(err))
		}
	}

	if *demo || cfg.SeedDemoData {
		if _, err := seed.Demo(ctx, s); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	log.Info("Seeding completed successfully!")
}
