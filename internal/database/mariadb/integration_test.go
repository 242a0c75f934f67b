//go:build integration

package mariadb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/database/historytest"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mariadb:11",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_ROOT_PASSWORD": "root",
			"MARIADB_DATABASE":      "photosheet",
			"MARIADB_USER":          "test",
			"MARIADB_PASSWORD":      "test",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.MariaDBConfig{
		DSN:          fmt.Sprintf("test:test@tcp(%s:%s)/photosheet", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}
	var pool *Pool
	// The port opens before the server accepts logins.
	for attempt := 0; attempt < 30; attempt++ {
		pool, err = NewPool(cfg)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if _, err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func TestHistoryRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	historytest.Run(t, func(t *testing.T) database.HistoryWriter {
		if _, err := pool.db.ExecContext(context.Background(), "DELETE FROM photosheets"); err != nil {
			t.Fatalf("clear photosheets: %v", err)
		}
		return NewHistoryRepository(pool)
	})
}
