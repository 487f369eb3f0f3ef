package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	_ "github.com/lib/pq"
)

// TestPostgresStores runs the store suite against a throwaway Postgres
// container. It is skipped when Docker is not reachable.
func TestPostgresStores(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=focusflow",
			"POSTGRES_PASSWORD=focusflow",
			"POSTGRES_DB=focusflow",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(120)

	dsn := fmt.Sprintf("host=localhost port=%s user=focusflow password=focusflow dbname=focusflow sslmode=disable",
		resource.GetPort("5432/tcp"))

	var db *sql.DB
	pool.MaxWait = 60 * time.Second
	require.NoError(t, pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		return db.Ping()
	}))
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, CreateTableIfNotExists(ctx, db, Postgres))
	t.Cleanup(func() { _ = DeleteAllTable(ctx, db) })

	storeSuite(t, db, Postgres)
}
