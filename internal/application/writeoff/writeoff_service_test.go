package writeoff

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

func newTestService(t *testing.T) (*WriteoffService, *gorm.DB, *masterdata.Material) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	reports, err := persistence.NewSqlxReportRepositoryFromGorm(db)
	require.NoError(t, err)
	scope := persistence.NewGormTransactionScope(db)
	repos := persistence.NewGormRepositories(db)
	costStrategy := cost.NewWeightedAverageCostStrategy()

	seed := testutil.CreateMaterial(t, db, "Sesame Seed", masterdata.CategorySeeds, "")
	supplier := testutil.CreateSupplier(t, db, "Delta Farms", "")
	purchases := apppurchase.NewPurchaseService(scope, repos, reports, costStrategy)
	_, err = purchases.Record(context.Background(), apppurchase.RecordPurchaseRequest{
		SupplierID:   supplier.ID,
		InvoiceRef:   "INV-1",
		PurchaseDate: valueobject.MustParseDate("2025-08-01"),
		Items:        []apppurchase.PurchaseItemRequest{{MaterialID: seed.ID, Quantity: dec("500"), Rate: dec("80")}},
	})
	require.NoError(t, err)

	return NewWriteoffService(scope, repos, reports, costStrategy), db, seed
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stock(t *testing.T, db *gorm.DB, materialID uuid.UUID) *inventory.InventoryLot {
	t.Helper()
	lot, err := persistence.NewGormInventoryLotRepository(db).FindByKey(context.Background(), inventory.MaterialLotKey(materialID))
	require.NoError(t, err)
	return lot
}

func TestWriteoffService_Record(t *testing.T) {
	svc, db, seed := newTestService(t)
	ctx := context.Background()
	events := testutil.NewMockEventHandler()
	svc.SetEventPublisher(events)

	resp, err := svc.Record(ctx, RecordWriteoffRequest{
		MaterialID:   &seed.ID,
		WriteoffDate: valueobject.MustParseDate("2025-08-05"),
		Quantity:     dec("20"),
		ScrapValue:   dec("300"),
		ReasonCode:   "damage",
		ReferenceNo:  "QC-7",
		CreatedBy:    "tester",
	})
	require.NoError(t, err)

	assert.True(t, resp.WeightedAvgCost.Equal(dec("80")))
	assert.True(t, resp.TotalCost.Equal(dec("1600")))
	assert.True(t, resp.NetLoss.Equal(dec("1300")))
	assert.Equal(t, "DAMAGE", resp.ReasonCode)
	assert.Equal(t, "Sesame Seed", resp.MaterialName)
	require.NotNil(t, resp.RemainingStock)
	assert.True(t, resp.RemainingStock.Equal(dec("480")))

	lot := stock(t, db, seed.ID)
	assert.True(t, lot.ClosingStock.Equal(dec("480")))
	assert.True(t, lot.Consumption.Equal(dec("20")))
	assert.True(t, lot.WeightedAvgCost.Equal(dec("80")), "a writeoff never moves the average")
	assert.True(t, lot.IsBalanced())
	assert.Contains(t, events.HandledTypes(), "LotConsumed")

	// the same lot addressed by id
	_, err = svc.Record(ctx, RecordWriteoffRequest{
		LotID:        &lot.ID,
		WriteoffDate: valueobject.MustParseDate("2025-08-06"),
		Quantity:     dec("5"),
		ReasonCode:   "SPILLAGE",
	})
	require.NoError(t, err)

	history, err := svc.History(ctx, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history.Writeoffs, 2)
	assert.Equal(t, "SPILLAGE", history.Writeoffs[0].ReasonCode)
	require.NotNil(t, history.Summary)
	assert.Equal(t, int64(2), history.Summary.TotalWriteoffs)
	assert.True(t, history.Summary.TotalNetLoss.Equal(dec("1700")))
	assert.Len(t, history.ByReason, 2)

	filtered, err := svc.History(ctx, HistoryFilter{ReasonCode: "damage"})
	require.NoError(t, err)
	assert.Len(t, filtered.Writeoffs, 1)
}

func TestWriteoffService_Rejections(t *testing.T) {
	svc, db, seed := newTestService(t)
	ctx := context.Background()
	day := valueobject.MustParseDate("2025-08-05")

	cases := []struct {
		name  string
		req   RecordWriteoffRequest
		check func(error) bool
	}{
		{"no selector", RecordWriteoffRequest{WriteoffDate: day, Quantity: dec("1"), ReasonCode: "DAMAGE"}, shared.IsValidation},
		{"both selectors", RecordWriteoffRequest{LotID: &seed.ID, MaterialID: &seed.ID, WriteoffDate: day, Quantity: dec("1"), ReasonCode: "DAMAGE"}, shared.IsValidation},
		{"unknown reason", RecordWriteoffRequest{MaterialID: &seed.ID, WriteoffDate: day, Quantity: dec("1"), ReasonCode: "THEFT"}, shared.IsValidation},
		{"inactive reason", RecordWriteoffRequest{MaterialID: &seed.ID, WriteoffDate: day, Quantity: dec("1"), ReasonCode: "OBSOLETE"}, shared.IsValidation},
		{"negative scrap", RecordWriteoffRequest{MaterialID: &seed.ID, WriteoffDate: day, Quantity: dec("1"), ScrapValue: dec("-1"), ReasonCode: "DAMAGE"}, shared.IsValidation},
		{"zero quantity", RecordWriteoffRequest{MaterialID: &seed.ID, WriteoffDate: day, Quantity: decimal.Zero, ReasonCode: "DAMAGE"}, shared.IsValidation},
		{"more than stock", RecordWriteoffRequest{MaterialID: &seed.ID, WriteoffDate: day, Quantity: dec("501"), ReasonCode: "DAMAGE"}, shared.IsInsufficientStock},
		{"no lot", RecordWriteoffRequest{MaterialID: ptrID(uuid.New()), WriteoffDate: day, Quantity: dec("1"), ReasonCode: "DAMAGE"}, shared.IsNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, tc.check(err), "got %v", err)
		})
	}

	assert.True(t, stock(t, db, seed.ID).ClosingStock.Equal(dec("500")))
	history, err := svc.History(ctx, HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, history.Writeoffs)
}

func TestWriteoffService_Reasons(t *testing.T) {
	svc, _, _ := newTestService(t)

	reasons, err := svc.Reasons(context.Background())
	require.NoError(t, err)
	codes := make([]string, len(reasons))
	for i, r := range reasons {
		codes[i] = r.Code
	}
	assert.Len(t, codes, 5)
	assert.NotContains(t, codes, "OBSOLETE")
	assert.Contains(t, codes, "DAMAGE")
}

func ptrID(id uuid.UUID) *uuid.UUID {
	return &id
}
