package orders

import (
	"context"
	"testing"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/storage"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &storage.Credentials{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	// Subtests share the container; each one starts from empty tables.
	setup := func(t *testing.T) *Repository {
		repo, err := NewPostgresRepository(creds)
		require.NoError(t, err)
		require.NoError(t, repo.RunMigrations())
		_, err = repo.db.ExecContext(ctx, `TRUNCATE order_events, orders RESTART IDENTITY`)
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	}

	testRepositoryContract(t, setup)
}
