package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage/migrations"
)

// setupTestDB creates a PostgreSQL container for testing and applies migrations.
// Returns a cleanup function that must be called after tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	require.NoError(t, migrations.RunPostgres(ctx, pool), "failed to run migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// seedKeyword inserts a keyword and returns it with its assigned ID.
func seedKeyword(t *testing.T, pool *Pool, text string) *domain.Keyword {
	t.Helper()

	k := &domain.Keyword{
		Text:        text,
		Marketplace: "US",
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, NewKeywordStore(pool).Insert(context.Background(), k))
	return k
}

// seedProduct inserts a minimal product row.
func seedProduct(t *testing.T, pool *Pool, asin string) {
	t.Helper()

	now := time.Now().UTC()
	p := &domain.Product{ASIN: asin, FirstSeen: now, LastUpdated: now}
	require.NoError(t, NewProductStore(pool).Insert(context.Background(), p))
}

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}
