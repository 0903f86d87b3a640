package blending

import (
	"context"
	"testing"

	"github.com/google/uuid"
	apppurchase "github.com/oilmill/backend/internal/application/purchase"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/infrastructure/persistence"
	"github.com/oilmill/backend/internal/infrastructure/strategy/cost"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc       *BlendingService
	purchases *apppurchase.PurchaseService
	db        *gorm.DB
	supplier  *masterdata.Supplier
	events    *testutil.MockEventHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	reports, err := persistence.NewSqlxReportRepositoryFromGorm(db)
	require.NoError(t, err)
	scope := persistence.NewGormTransactionScope(db)
	repos := persistence.NewGormRepositories(db)
	costStrategy := cost.NewWeightedAverageCostStrategy()

	f := &fixture{
		svc:       NewBlendingService(scope, repos, reports, costStrategy, "PUV"),
		purchases: apppurchase.NewPurchaseService(scope, repos, reports, costStrategy),
		db:        db,
		supplier:  testutil.CreateSupplier(t, db, "Coastal Oils", ""),
		events:    testutil.NewMockEventHandler(),
	}
	f.svc.SetEventPublisher(f.events)
	return f
}

// buyOil stocks a bulk oil material and returns its lot
func (f *fixture) buyOil(t *testing.T, name, qty, rate string) *inventory.InventoryLot {
	t.Helper()
	m := testutil.CreateMaterial(t, f.db, name, masterdata.CategoryBulkOil, "")
	_, err := f.purchases.Record(context.Background(), apppurchase.RecordPurchaseRequest{
		SupplierID:   f.supplier.ID,
		InvoiceRef:   "INV-" + name,
		PurchaseDate: valueobject.MustParseDate("2025-08-01"),
		Items:        []apppurchase.PurchaseItemRequest{{MaterialID: m.ID, Quantity: dec(qty), Rate: dec(rate)}},
	})
	require.NoError(t, err)
	return f.lot(t, m.ID)
}

func (f *fixture) lot(t *testing.T, materialID uuid.UUID) *inventory.InventoryLot {
	t.Helper()
	lot, err := persistence.NewGormInventoryLotRepository(f.db).FindByKey(context.Background(), inventory.MaterialLotKey(materialID))
	require.NoError(t, err)
	return lot
}

func (f *fixture) stock(t *testing.T, lotID uuid.UUID) decimal.Decimal {
	t.Helper()
	lot, err := persistence.NewGormInventoryLotRepository(f.db).FindByID(context.Background(), lotID)
	require.NoError(t, err)
	return lot.ClosingStock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBlendingService_CreateBlend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groundnut := f.buyOil(t, "Groundnut Oil", "100", "150")
	sesame := f.buyOil(t, "Sesame Oil", "100", "250")

	resp, err := f.svc.CreateBlend(ctx, CreateBlendRequest{
		Description:   "Premium",
		BlendDate:     valueobject.MustParseDate("2025-08-10"),
		TotalQuantity: dec("100"),
		Components: []ComponentRequest{
			{SourceLotID: groundnut.ID, Percentage: dec("60")},
			{SourceLotID: sesame.ID, Percentage: dec("40")},
		},
		CreatedBy: "tester",
	})
	require.NoError(t, err)

	assert.Equal(t, "BLEND-20250810-GROUNDNUT-SESAME-Premium", resp.BlendCode)
	assert.Equal(t, "BLEND-GROUNDNUT-SESAME-10082025", resp.TraceableCode, "purchased oil carries no code")
	assert.Equal(t, "Mixed", resp.OilType)
	require.Len(t, resp.Components, 2)
	assert.True(t, resp.Components[0].QuantityUsed.Equal(dec("60")))
	assert.True(t, resp.Components[0].TotalCost.Equal(dec("9000")))
	assert.True(t, resp.Components[1].TotalCost.Equal(dec("10000")))
	assert.Equal(t, "PURCHASE", resp.Components[0].SourceType)
	assert.True(t, resp.TotalCost.Equal(dec("19000")))
	assert.True(t, resp.WeightedAvgCost.Equal(dec("190")))

	assert.True(t, f.stock(t, groundnut.ID).Equal(dec("40")))
	assert.True(t, f.stock(t, sesame.ID).Equal(dec("60")))

	require.NotNil(t, resp.LotID)
	blendLot, err := persistence.NewGormInventoryLotRepository(f.db).FindByKey(ctx, inventory.BlendLotKey(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, *resp.LotID, blendLot.ID)
	assert.Equal(t, inventory.LotSourceBlended, blendLot.Source)
	assert.Equal(t, "MIXED", blendLot.OilType)
	assert.True(t, blendLot.ClosingStock.Equal(dec("100")))
	assert.True(t, blendLot.WeightedAvgCost.Equal(dec("190")))
	assert.Contains(t, f.events.HandledTypes(), "BlendCreated")

	got, err := f.svc.GetBlend(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.BlendCode, got.BlendCode)
	require.NotNil(t, got.LotID)
	assert.Len(t, got.Components, 2)

	types, err := f.svc.OilTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GROUNDNUT", "MIXED", "SESAME"}, types)

	sources, err := f.svc.SourceLots(ctx, "mixed")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "BLENDED", sources[0].SourceType)
	assert.True(t, sources[0].AvailableQuantity.Equal(dec("100")))

	history, err := f.svc.History(ctx, HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, history.Blends, 1)
	require.NotNil(t, history.Summary)
	assert.Equal(t, int64(1), history.Summary.TotalBlends)
	assert.True(t, history.Summary.TotalValue.Equal(dec("19000")))
}

func TestBlendingService_PercentageTolerance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groundnut := f.buyOil(t, "Groundnut Oil", "1000", "150")
	sesame := f.buyOil(t, "Sesame Oil", "1000", "250")

	cases := []struct {
		name   string
		second string
		ok     bool
	}{
		{"short by half a percent", "39.5", false},
		{"over by half a percent", "40.5", false},
		{"just under", "39.995", true},
		{"just over", "40.005", true},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateBlend(ctx, CreateBlendRequest{
				Description:   "T" + string(rune('A'+i)),
				BlendDate:     valueobject.MustParseDate("2025-08-10"),
				TotalQuantity: dec("10"),
				Components: []ComponentRequest{
					{SourceLotID: groundnut.ID, Percentage: dec("60")},
					{SourceLotID: sesame.ID, Percentage: dec(tc.second)},
				},
			})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, shared.IsValidation(err), "got %v", err)
			}
		})
	}

	history, err := f.svc.History(ctx, HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, history.Blends, 2)
}

func TestBlendingService_ShortComponentRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groundnut := f.buyOil(t, "Groundnut Oil", "40", "150")
	sesame := f.buyOil(t, "Sesame Oil", "100", "250")

	_, err := f.svc.CreateBlend(ctx, CreateBlendRequest{
		Description:   "Short",
		BlendDate:     valueobject.MustParseDate("2025-08-10"),
		TotalQuantity: dec("100"),
		Components: []ComponentRequest{
			{SourceLotID: sesame.ID, Percentage: dec("50")},
			{SourceLotID: groundnut.ID, Percentage: dec("50")},
		},
	})
	require.Error(t, err)
	assert.True(t, shared.IsInsufficientStock(err))

	assert.True(t, f.stock(t, sesame.ID).Equal(dec("100")), "first component restored")
	assert.True(t, f.stock(t, groundnut.ID).Equal(dec("40")))
	history, err := f.svc.History(ctx, HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, history.Blends)
	assert.Zero(t, f.events.HandledCount())
}

func TestBlendingService_RejectsInvalidSources(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groundnut := f.buyOil(t, "Groundnut Oil", "100", "150")

	seed := testutil.CreateMaterial(t, f.db, "Sesame Seed", masterdata.CategorySeeds, "")
	_, err := f.purchases.Record(ctx, apppurchase.RecordPurchaseRequest{
		SupplierID:   f.supplier.ID,
		InvoiceRef:   "INV-SEED",
		PurchaseDate: valueobject.MustParseDate("2025-08-01"),
		Items:        []apppurchase.PurchaseItemRequest{{MaterialID: seed.ID, Quantity: dec("100"), Rate: dec("80")}},
	})
	require.NoError(t, err)
	seedLot := f.lot(t, seed.ID)

	base := CreateBlendRequest{
		Description:   "Bad",
		BlendDate:     valueobject.MustParseDate("2025-08-10"),
		TotalQuantity: dec("10"),
	}

	notOil := base
	notOil.Components = []ComponentRequest{
		{SourceLotID: groundnut.ID, Percentage: dec("50")},
		{SourceLotID: seedLot.ID, Percentage: dec("50")},
	}
	_, err = f.svc.CreateBlend(ctx, notOil)
	assert.True(t, shared.IsValidation(err))

	missing := base
	missing.Components = []ComponentRequest{
		{SourceLotID: groundnut.ID, Percentage: dec("50")},
		{SourceLotID: uuid.New(), Percentage: dec("50")},
	}
	_, err = f.svc.CreateBlend(ctx, missing)
	assert.True(t, shared.IsNotFound(err))

	single := base
	single.Components = []ComponentRequest{{SourceLotID: groundnut.ID, Percentage: dec("100")}}
	_, err = f.svc.CreateBlend(ctx, single)
	assert.True(t, shared.IsValidation(err))

	duplicate := base
	duplicate.Components = []ComponentRequest{
		{SourceLotID: groundnut.ID, Percentage: dec("50")},
		{SourceLotID: groundnut.ID, Percentage: dec("50")},
	}
	_, err = f.svc.CreateBlend(ctx, duplicate)
	assert.True(t, shared.IsValidation(err))

	zero := base
	zero.TotalQuantity = decimal.Zero
	zero.Components = notOil.Components
	_, err = f.svc.CreateBlend(ctx, zero)
	assert.True(t, shared.IsValidation(err))

	assert.True(t, f.stock(t, groundnut.ID).Equal(dec("100")))

	_, err = f.svc.SourceLots(ctx, " ")
	assert.True(t, shared.IsValidation(err))
	_, err = f.svc.GetBlend(ctx, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}
