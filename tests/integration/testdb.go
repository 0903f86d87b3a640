// Package integration runs the mill services against a real PostgreSQL
// database started with testcontainers and migrated with the SQL files
// under migrations/.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/oilmill/backend/internal/infrastructure/config"
	"github.com/oilmill/backend/internal/infrastructure/migration"
	"github.com/oilmill/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// seeded tables survive CleanTables
var keepTables = map[string]bool{
	"schema_migrations": true,
	"writeoff_reasons":  true,
}

// TestDB is a migrated database in its own container
type TestDB struct {
	DB        *gorm.DB
	Database  *persistence.Database
	Migrator  *migration.Migrator
	Container testcontainers.Container
	t         *testing.T
}

// NewTestDB starts a PostgreSQL container and applies every migration.
// Tests using it are skipped in -short mode.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("oilmill_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	tdb := &TestDB{Container: container, t: t}
	t.Cleanup(tdb.Close)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	logLevel := "silent"
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logLevel = "info"
	}

	database, err := persistence.NewDatabase(config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          "oilmill_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		SlowQueryThresh: time.Second,
	}, persistence.Options{Logger: zap.NewNop(), LogLevel: logLevel})
	require.NoError(t, err, "Failed to connect to database")
	tdb.Database = database
	tdb.DB = database.DB

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "Could not find migrations directory")

	m, err := migration.New(sqlDB, migrationsPath, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
	tdb.Migrator = m

	return tdb
}

// Close releases the pool and terminates the container. The migrator is
// not closed since it shares the pool.
func (tdb *TestDB) Close() {
	if tdb.Database != nil {
		_ = tdb.Database.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CleanTables truncates everything except the migration state and seeded masters
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`SELECT tablename FROM pg_tables WHERE schemaname = 'public'`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		if keepTables[table] {
			continue
		}
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		require.NoError(tdb.t, err, "Failed to truncate %s", table)
	}
}

// findMigrationsPath walks up from this file to the module's migrations directory
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 4; i++ {
		path := filepath.Join(dir, "migrations")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
