// Package storage opens the Entity Store backend named by the configuration
package storage

import (
	"context"

	"go.uber.org/zap"

	"membergraph/backend/internal/graph"
	"membergraph/backend/internal/relational"
	"membergraph/backend/internal/store"
	"membergraph/backend/internal/store/memory"
	"membergraph/backend/pkg/config"
	apperrors "membergraph/backend/pkg/errors"
	"membergraph/backend/pkg/logger"
)

// Open connects to cfg.StoreBackend
func Open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	log := logger.Named("storage")

	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Info("Using in-memory store")
		return memory.New(), nil

	case config.BackendNeo4j:
		driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to Neo4j", zap.String("uri", cfg.Neo4jURI))
		return graph.NewRepository(driver, cfg.Neo4jDatabase), nil

	case config.BackendPostgres:
		s, err := relational.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to PostgreSQL")
		return s, nil
	}

	return nil, apperrors.NewConfigValidationFailed("STORE_BACKEND", "unknown backend "+cfg.StoreBackend)
}
