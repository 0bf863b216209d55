//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pitgrid/boostrace-service-go/pkg/db/migrate"
	database "github.com/pitgrid/boostrace-service-go/pkg/db/postgres"
)

// create a pg connection pool for the boostrace testdatabase
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("boostrace-service-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())

	if err = migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}

	pool := database.InitWithURL(dbURL)
	return pool
}

// SetupExternalTestDb connects to the database referenced by TESTDB_URL.
// Used on CI where a database is already provisioned.
func SetupExternalTestDb() *pgxpool.Pool {
	dbURL := os.Getenv("TESTDB_URL")
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}
	return database.InitWithURL(dbURL)
}

func ClearTurnHistoryTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from turn_history")
}

func ClearRaceTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearTurnHistoryTable(pool)
	ClearRaceTable(pool)
}
