package testutil

import (
	"testing"

	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// WriteoffReasons is the reason master seeded into every test database,
// matching the rows the migrations insert.
var WriteoffReasons = []models.WriteoffReasonModel{
	{Code: "DAMAGE", Description: "Physical damage in storage or handling", Category: "Physical", Active: true},
	{Code: "EXPIRY", Description: "Shelf life exceeded", Category: "Quality", Active: true},
	{Code: "QUALITY", Description: "Failed quality inspection", Category: "Quality", Active: true},
	{Code: "SPILLAGE", Description: "Spillage or leakage", Category: "Handling", Active: true},
	{Code: "PEST", Description: "Pest or moisture infestation", Category: "Physical", Active: true},
	{Code: "OBSOLETE", Description: "Discontinued item", Category: "Other", Active: false},
}

// NewSQLiteDB opens a private in-memory sqlite database with the full schema
// and the writeoff reason master. A single connection keeps every
// transaction on the same in-memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open sqlite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate schema")
	reasons := make([]models.WriteoffReasonModel, len(WriteoffReasons))
	copy(reasons, WriteoffReasons)
	require.NoError(t, db.Create(&reasons).Error, "Failed to seed writeoff reasons")
	// gorm skips zero-valued fields that carry a column default on insert
	for _, r := range WriteoffReasons {
		if !r.Active {
			require.NoError(t, db.Model(&models.WriteoffReasonModel{}).
				Where("reason_code = ?", r.Code).Update("active", false).Error)
		}
	}
	return db
}

// CreateMaterial inserts a material and returns it
func CreateMaterial(t *testing.T, db *gorm.DB, name string, category masterdata.MaterialCategory, shortCode string) *masterdata.Material {
	t.Helper()

	m, err := masterdata.NewMaterial(name, "kg", category, shortCode, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, db.Create(models.MaterialModelFromDomain(m)).Error)
	return m
}

// CreateSupplier inserts a supplier and returns it
func CreateSupplier(t *testing.T, db *gorm.DB, name, shortCode string) *masterdata.Supplier {
	t.Helper()

	s, err := masterdata.NewSupplier(name, shortCode)
	require.NoError(t, err)
	require.NoError(t, db.Create(models.SupplierModelFromDomain(s)).Error)
	return s
}

// CreateCostElement inserts a batch cost element and returns it
func CreateCostElement(t *testing.T, db *gorm.DB, name string, method costing.CalculationMethod, rate string, optional bool) *costing.CostElement {
	t.Helper()

	e, err := costing.NewCostElement(name, "Processing", "kg", method, decimal.RequireFromString(rate), costing.ApplicableBatch, optional)
	require.NoError(t, err)
	require.NoError(t, db.Create(models.CostElementModelFromDomain(e)).Error)
	return e
}
