package state

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// postgresDSNEnv names the variable holding a DSN of a disposable test database.
const postgresDSNEnv = "CATPOINT_TEST_POSTGRES_DSN"

// TestPostgresRepository_Contract runs the shared contract against a real database.
// The tables are dropped before and after the run.
func TestPostgresRepository_Contract(t *testing.T) {
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", postgresDSNEnv)
	}

	ctx := context.Background()

	repo, err := NewPostgresRepository(ctx, dsn)
	require.NoError(t, err)

	drop := func() {
		_, err := repo.db.ExecContext(ctx, `DROP TABLE IF EXISTS catpoint_sensors, catpoint_status`)
		require.NoError(t, err)
	}

	drop()
	require.NoError(t, repo.Init(ctx))
	// Init is repeatable.
	require.NoError(t, repo.Init(ctx))

	t.Cleanup(func() {
		drop()
		require.NoError(t, repo.Close())
	})

	testRepositoryContract(t, repo)
}
