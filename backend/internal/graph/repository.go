// Package graph is the Neo4j Entity Store. Users, posts, profiles and
// member tiers are nodes; a subscription is a SUBSCRIBED_TO relationship
// from subscriber to author, which makes the neighborhood fetch a single
// variable-length pattern match.
package graph

import (
	"context"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
	"membergraph/backend/pkg/logger"
)

// BackendName identifies this store in logs, errors and metrics
const BackendName = "neo4j"

// Repository handles all Neo4j database operations
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
	newID    func() string
}

var (
	_ store.Store              = (*Repository)(nil)
	_ store.UserProfileCreator = (*Repository)(nil)
)

// NewRepository creates a new graph repository. database may be empty for
// the server default.
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Named("neo4j-store"),
		newID:    uuid.NewString,
	}
}

// Connect opens a driver and verifies the server is reachable
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewStoreConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewStoreConnectionFailed(uri, err)
	}
	return driver, nil
}

// Backend implements store.Store
func (r *Repository) Backend() string { return BackendName }

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

func (r *Repository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: r.database,
	})
}

// read runs a single read query and collects its records
func (r *Repository) read(ctx context.Context, op, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, r.storeError(op, err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, r.storeError(op, err)
	}
	return records, nil
}

// write runs work in a managed write transaction
func (r *Repository) write(ctx context.Context, op string, work func(tx neo4j.ManagedTransaction) (interface{}, error)) (interface{}, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, work)
	if err != nil {
		return nil, r.storeError(op, err)
	}
	return out, nil
}
