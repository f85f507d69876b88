package testhelpers

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:16-alpine"

var (
	sharedDSN     string
	sharedDSNOnce sync.Once
	sharedDSNErr  error
)

// PostgresDSN returns a connection string for database integration
// tests. RAGTEL_TEST_DATABASE_URL takes priority; otherwise a shared
// throwaway container is started when RAGTEL_TEST_CONTAINERS=1. With
// neither set the calling test is skipped, so a plain `go test ./...`
// never needs Docker or a running Postgres.
func PostgresDSN(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if dsn := os.Getenv("RAGTEL_TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	if os.Getenv("RAGTEL_TEST_CONTAINERS") != "1" {
		t.Skip("Skipping: set RAGTEL_TEST_DATABASE_URL or RAGTEL_TEST_CONTAINERS=1 to run database tests")
	}

	sharedDSNOnce.Do(func() {
		sharedDSN, sharedDSNErr = startPostgres()
	})
	if sharedDSNErr != nil {
		t.Fatalf("Failed to start test database: %v", sharedDSNErr)
	}
	return sharedDSN
}

// startPostgres launches one container for the whole test run; the
// reaper cleans it up when the run ends.
func startPostgres() (string, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "ragtel_test",
			"POSTGRES_USER":     "ragtel",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}

	return fmt.Sprintf("postgres://ragtel:test_password@%s:%s/ragtel_test?sslmode=disable",
		host, port.Port()), nil
}
