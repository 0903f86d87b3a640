// Package testutil provides shared fixtures for the mill's tests: in-memory
// and mocked databases, seeded master data, HTTP request helpers, a redis
// container and a recording event handler.
package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewMockSqlx returns an sqlx handle over sqlmock using postgres bind vars.
// Unmet expectations fail the test at cleanup.
func NewMockSqlx(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "Unmet database expectations")
		_ = mockDB.Close()
	})
	return sqlx.NewDb(mockDB, "pgx"), mock
}
