package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	blendingapp "github.com/oilmill/backend/internal/application/blending"
	byproductapp "github.com/oilmill/backend/internal/application/byproduct"
	inventoryapp "github.com/oilmill/backend/internal/application/inventory"
	productionapp "github.com/oilmill/backend/internal/application/production"
	purchaseapp "github.com/oilmill/backend/internal/application/purchase"
	writeoffapp "github.com/oilmill/backend/internal/application/writeoff"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/infrastructure/lock"
	"github.com/oilmill/backend/internal/infrastructure/persistence"
	"github.com/oilmill/backend/internal/infrastructure/strategy/allocation"
	"github.com/oilmill/backend/internal/infrastructure/strategy/cost"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mill wires the application services to the container database
type mill struct {
	db         *TestDB
	inventory  *inventoryapp.InventoryService
	purchases  *purchaseapp.PurchaseService
	production *productionapp.ProductionService
	blending   *blendingapp.BlendingService
	byproducts *byproductapp.ByProductService
	writeoffs  *writeoffapp.WriteoffService
	seed       *masterdata.Material
	supplier   *masterdata.Supplier
}

func newMill(t *testing.T) *mill {
	t.Helper()
	tdb := NewTestDB(t)

	reports, err := persistence.NewSqlxReportRepositoryFromGorm(tdb.DB)
	require.NoError(t, err)
	scope := persistence.NewGormTransactionScope(tdb.DB)
	repos := persistence.NewGormRepositories(tdb.DB)
	costStrategy := cost.NewWeightedAverageCostStrategy()

	return &mill{
		db:        tdb,
		inventory: inventoryapp.NewInventoryService(scope, repos, costStrategy),
		purchases: purchaseapp.NewPurchaseService(scope, repos, reports, costStrategy),
		production: productionapp.NewProductionService(scope, repos, reports, costStrategy,
			productionapp.Settings{UnitCode: "PUV"}),
		blending: blendingapp.NewBlendingService(scope, repos, reports, costStrategy, "PUV"),
		byproducts: byproductapp.NewByProductService(scope, repos, reports,
			allocation.NewFIFOLotAllocationStrategy(),
			byproductapp.WithLocker(lock.NewLocalLocker(), 5*time.Second)),
		writeoffs: writeoffapp.NewWriteoffService(scope, repos, reports, costStrategy),
		seed:      testutil.CreateMaterial(t, tdb.DB, "Groundnut Seed", masterdata.CategorySeeds, "GNS-K"),
		supplier:  testutil.CreateSupplier(t, tdb.DB, "Sri Krishna Mills", "SKM"),
	}
}

func (m *mill) buy(t *testing.T, material *masterdata.Material, qty, rate int64, date string) *purchaseapp.PurchaseResponse {
	t.Helper()
	resp, err := m.purchases.Record(context.Background(), purchaseapp.RecordPurchaseRequest{
		SupplierID:   m.supplier.ID,
		InvoiceRef:   "INV-" + date,
		PurchaseDate: valueobject.MustParseDate(date),
		Items: []purchaseapp.PurchaseItemRequest{{
			MaterialID: material.ID,
			Quantity:   decimal.NewFromInt(qty),
			Rate:       decimal.NewFromInt(rate),
		}},
		CreatedBy: "ravi",
	})
	require.NoError(t, err)
	return resp
}

func (m *mill) crush(t *testing.T) *productionapp.BatchResponse {
	t.Helper()
	cakeRate := decimal.NewFromInt(10)
	sludgeRate := decimal.Zero
	seedCost := decimal.NewFromInt(20000)
	batch, err := m.production.RecordBatch(context.Background(), productionapp.RecordBatchRequest{
		OilType:             "Groundnut",
		Description:         "Morning",
		ProductionDate:      valueobject.MustParseDate("2025-08-06"),
		SeedMaterialID:      m.seed.ID,
		SeedQtyBeforeDrying: decimal.NewFromInt(1000),
		SeedQtyAfterDrying:  decimal.NewFromInt(950),
		SeedCostTotal:       &seedCost,
		OilYield:            decimal.NewFromInt(300),
		CakeYield:           decimal.NewFromInt(600),
		CakeEstimatedRate:   &cakeRate,
		SludgeEstimatedRate: &sludgeRate,
		CreatedBy:           "ravi",
	})
	require.NoError(t, err)
	return batch
}

func cakeSale(qty int64, buyer, date string) byproductapp.RecordSaleRequest {
	return byproductapp.RecordSaleRequest{
		ByProductType: "OIL_CAKE",
		Quantity:      decimal.NewFromInt(qty),
		SaleRate:      decimal.NewFromInt(12),
		BuyerName:     buyer,
		SaleDate:      valueobject.MustParseDate(date),
		CreatedBy:     "ravi",
	}
}

func TestFlow_PurchaseCrushSellBlend(t *testing.T) {
	m := newMill(t)
	ctx := context.Background()

	m.buy(t, m.seed, 1000, 50, "2025-08-05")
	seedLots, err := m.inventory.ListLots(ctx, inventoryapp.LotListFilter{MaterialID: &m.seed.ID})
	require.NoError(t, err)
	require.Len(t, seedLots, 1)
	assert.Equal(t, "50", seedLots[0].WeightedAvgCost.String())

	batch := m.crush(t)
	assert.True(t, batch.NetOilCost.Equal(decimal.NewFromInt(14000)), batch.NetOilCost.String())
	require.NotNil(t, batch.OilLotID)

	seedLots, err = m.inventory.ListLots(ctx, inventoryapp.LotListFilter{MaterialID: &m.seed.ID})
	require.NoError(t, err)
	assert.True(t, seedLots[0].ClosingStock.IsZero(), "crushing consumes the seed")

	sale, err := m.byproducts.RecordSale(ctx, cakeSale(600, "Kaveri Feeds", "2025-08-20"))
	require.NoError(t, err)
	require.Len(t, sale.Allocations, 1)
	require.Len(t, sale.BatchesUpdated, 1)
	assert.True(t, sale.BatchesUpdated[0].NewNetOilCost.Equal(decimal.NewFromInt(12800)))

	reloaded, err := m.production.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.NetOilCost.Equal(decimal.NewFromInt(12800)))
	assert.True(t, reloaded.CakeSoldQty.Equal(decimal.NewFromInt(600)))
	assert.Greater(t, reloaded.Version, batch.Version)

	_, err = m.byproducts.RecordSale(ctx, cakeSale(1, "Kaveri Feeds", "2025-08-21"))
	require.Error(t, err)
	assert.True(t, shared.IsInsufficientStock(err))

	sesame := testutil.CreateMaterial(t, m.db.DB, "Sesame Oil", masterdata.CategoryBulkOil, "")
	m.buy(t, sesame, 100, 250, "2025-08-07")
	oilLots, err := m.inventory.ListLots(ctx, inventoryapp.LotListFilter{MaterialID: &sesame.ID})
	require.NoError(t, err)
	require.Len(t, oilLots, 1)

	blend, err := m.blending.CreateBlend(ctx, blendingapp.CreateBlendRequest{
		Description:   "Premium",
		BlendDate:     valueobject.MustParseDate("2025-08-10"),
		TotalQuantity: decimal.NewFromInt(100),
		Components: []blendingapp.ComponentRequest{
			{SourceLotID: *batch.OilLotID, Percentage: decimal.NewFromInt(60)},
			{SourceLotID: oilLots[0].ID, Percentage: decimal.NewFromInt(40)},
		},
		CreatedBy: "ravi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mixed", blend.OilType)
	assert.Equal(t, "12800", blend.TotalCost.Round(2).String())

	groundnut, err := m.inventory.GetLot(ctx, *batch.OilLotID)
	require.NoError(t, err)
	assert.True(t, groundnut.ClosingStock.Equal(decimal.NewFromInt(240)))
}

func TestFlow_ConcurrentSalesNeverOversell(t *testing.T) {
	m := newMill(t)
	ctx := context.Background()
	m.buy(t, m.seed, 1000, 50, "2025-08-05")
	batch := m.crush(t)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, buyer := range []string{"Kaveri Feeds", "Nandi Dairy"} {
		wg.Add(1)
		go func(i int, buyer string) {
			defer wg.Done()
			_, errs[i] = m.byproducts.RecordSale(ctx, cakeSale(400, buyer, "2025-08-20"))
		}(i, buyer)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, shared.IsInsufficientStock(err) || shared.IsConcurrencyConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	inventory, err := m.byproducts.Inventory(ctx, byproductapp.InventoryFilter{})
	require.NoError(t, err)
	require.Len(t, inventory.Lots, 1)
	assert.True(t, inventory.Lots[0].QuantityRemaining.Equal(decimal.NewFromInt(200)))

	reloaded, err := m.production.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CakeSoldQty.Equal(decimal.NewFromInt(400)))
}

func TestFlow_WriteoffReducesLot(t *testing.T) {
	m := newMill(t)
	ctx := context.Background()
	m.buy(t, m.seed, 1000, 50, "2025-08-05")

	reasons, err := m.writeoffs.Reasons(ctx)
	require.NoError(t, err)
	assert.Len(t, reasons, 5)

	w, err := m.writeoffs.Record(ctx, writeoffapp.RecordWriteoffRequest{
		MaterialID:   &m.seed.ID,
		WriteoffDate: valueobject.MustParseDate("2025-08-08"),
		Quantity:     decimal.NewFromInt(20),
		ReasonCode:   "PEST",
		CreatedBy:    "ravi",
	})
	require.NoError(t, err)
	assert.Equal(t, "PEST", w.ReasonCode)

	lots, err := m.inventory.ListLots(ctx, inventoryapp.LotListFilter{MaterialID: &m.seed.ID})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].ClosingStock.Equal(decimal.NewFromInt(980)))
	assert.Equal(t, "50", lots[0].WeightedAvgCost.String())
}
