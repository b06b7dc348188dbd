package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membergraph/backend/internal/store"
	"membergraph/backend/internal/store/storetest"
	apperrors "membergraph/backend/pkg/errors"
)

// These tests require a running Neo4j instance they may wipe.
// Set NEO4J_TEST_URI (and NEO4J_USER, NEO4J_PASSWORD) to enable them.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver, err := Connect(ctx, uri, envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASSWORD", "password"))
	if err != nil {
		t.Skipf("Neo4j unavailable: %v", err)
	}
	repo := NewRepository(driver, os.Getenv("NEO4J_DATABASE"))
	t.Cleanup(func() { _ = repo.Close(context.Background()) })

	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Reset(ctx))
	require.NoError(t, repo.SeedMemberTypes(ctx, store.SeedMemberTypes()))
	return repo
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestRepository_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestRepository(t) })
}

func TestRepository_CreateUserWithProfileRollsBack(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, _, err := repo.CreateUserWithProfile(ctx,
		store.UserInput{Name: "ada", Balance: 1},
		store.ProfileInput{YearOfBirth: 1815, MemberTypeID: "GOLD"},
	)
	assert.True(t, apperrors.IsConstraintViolation(err))

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRepository_FetchNeighborhoodOrdersEdges(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ids := make([]string, 3)
	for i, name := range []string{"a", "b", "c"} {
		u, err := repo.CreateUser(ctx, store.UserInput{Name: name})
		require.NoError(t, err)
		ids[i] = u.ID
	}
	require.NoError(t, repo.Subscribe(ctx, ids[2], ids[0]))
	require.NoError(t, repo.Subscribe(ctx, ids[0], ids[1]))

	g, err := repo.FetchNeighborhood(ctx, ids[0], store.IncludeBoth(1))
	require.NoError(t, err)
	assert.Equal(t, []store.Subscription{
		{SubscriberID: ids[2], AuthorID: ids[0]},
		{SubscriberID: ids[0], AuthorID: ids[1]},
	}, g.Subscriptions)
	assert.Len(t, g.Users, 3)
}
