package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/infrastructure/strategy/cost"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staleLots never sees an existing lot, as a transaction that read the key
// before a concurrent first receipt committed.
type staleLots struct {
	*GormInventoryLotRepository
}

func (staleLots) FindByKeyForUpdate(context.Context, string) (*inventory.InventoryLot, error) {
	return nil, shared.ErrNotFound
}

func TestLedger_ConcurrentFirstReceiptIsConflict(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	lots := NewGormInventoryLotRepository(db)
	movements := NewGormStockMovementRepository(db)
	strategy := cost.NewWeightedAverageCostStrategy()

	cmd := inventory.ReceiveCommand{
		Lot: inventory.LotSpec{
			Key:     inventory.ExtractionLotKey("Groundnut"),
			Type:    inventory.LotTypeBulkOil,
			Source:  inventory.LotSourceExtraction,
			OilType: inventory.NormalizeOilType("Groundnut"),
		},
		Quantity: decimal.NewFromInt(300),
		UnitCost: decimal.NewFromInt(40),
		Date:     valueobject.MustParseDate("2025-08-06"),
	}

	_, err := inventory.NewLedger(lots, movements, strategy).Receive(ctx, cmd)
	require.NoError(t, err)

	_, err = inventory.NewLedger(staleLots{lots}, movements, strategy).Receive(ctx, cmd)
	require.Error(t, err)
	assert.True(t, shared.IsConcurrencyConflict(err), "got %v", err)

	lot, err := lots.FindByKey(ctx, cmd.Lot.Key)
	require.NoError(t, err)
	assert.True(t, lot.ClosingStock.Equal(decimal.NewFromInt(300)))
}

func TestGormBatchRepository_DuplicateCodeIsConflict(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewGormBatchRepository(db)

	newBatch := func() *production.Batch {
		b, err := production.NewBatch(production.BatchInput{
			OilType:             "Groundnut",
			Description:         "Morning",
			ProductionDate:      valueobject.MustParseDate("2025-08-06"),
			SeedMaterialID:      uuid.New(),
			SeedLotID:           uuid.New(),
			SeedQtyBeforeDrying: decimal.NewFromInt(100),
			SeedQtyAfterDrying:  decimal.NewFromInt(100),
			SeedCostTotal:       decimal.NewFromInt(5000),
			OilYield:            decimal.NewFromInt(40),
		})
		require.NoError(t, err)
		return b
	}

	require.NoError(t, repo.Create(ctx, newBatch()))
	err := repo.Create(ctx, newBatch())
	assert.True(t, shared.IsConcurrencyConflict(err), "got %v", err)
}

func TestGormMaterialRepository_DuplicateNameIsValidation(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewGormMaterialRepository(db)

	first, err := masterdata.NewMaterial("Groundnut Seed", "kg", masterdata.CategorySeeds, "GNS-K", decimal.Zero)
	require.NoError(t, err)
	again, err := masterdata.NewMaterial("Groundnut Seed", "kg", masterdata.CategorySeeds, "GNS-K", decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, first))
	err = repo.Create(ctx, again)
	assert.True(t, shared.IsValidation(err), "got %v", err)
	assert.Contains(t, err.Error(), "already exists")
}
