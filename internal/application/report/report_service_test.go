package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	appproduction "github.com/oilmill/backend/internal/application/production"
	apppurchase "github.com/oilmill/backend/internal/application/purchase"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/infrastructure/persistence"
	"github.com/oilmill/backend/internal/infrastructure/strategy/cost"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExporter struct {
	batches []production.Batch
	recs    []report.CostReconciliation
	err     error
}

func (e *recordingExporter) Batches(w io.Writer, batches []production.Batch) error {
	e.batches = batches
	_, _ = io.WriteString(w, "batches")
	return e.err
}

func (e *recordingExporter) Reconciliation(w io.Writer, recs []report.CostReconciliation) error {
	e.recs = recs
	_, _ = io.WriteString(w, "reconciliation")
	return e.err
}

type fixture struct {
	svc        *ReportService
	exporter   *recordingExporter
	production *appproduction.ProductionService
	seed       *masterdata.Material
	labour     *costing.CostElement
	power      *costing.CostElement
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	reports, err := persistence.NewSqlxReportRepositoryFromGorm(db)
	require.NoError(t, err)
	scope := persistence.NewGormTransactionScope(db)
	repos := persistence.NewGormRepositories(db)
	strategy := cost.NewWeightedAverageCostStrategy()

	purchases := apppurchase.NewPurchaseService(scope, repos, reports, strategy)
	seed := testutil.CreateMaterial(t, db, "Groundnut Seed", masterdata.CategorySeeds, "")
	supplier := testutil.CreateSupplier(t, db, "Sri Krishna Mills", "")
	_, err = purchases.Record(context.Background(), apppurchase.RecordPurchaseRequest{
		SupplierID:   supplier.ID,
		InvoiceRef:   "INV-1",
		PurchaseDate: valueobject.MustParseDate("2025-05-01"),
		Items:        []apppurchase.PurchaseItemRequest{{MaterialID: seed.ID, Quantity: dec("3500"), Rate: dec("50")}},
	})
	require.NoError(t, err)

	exporter := &recordingExporter{}
	return &fixture{
		svc:      NewReportService(repos, reports, exporter),
		exporter: exporter,
		production: appproduction.NewProductionService(scope, repos, reports, strategy, appproduction.Settings{
			UnitCode:          "PUV",
			DefaultCakeRate:   dec("10"),
			DefaultSludgeRate: dec("5"),
		}),
		seed:   seed,
		labour: testutil.CreateCostElement(t, db, "Labour", costing.MethodPerKg, "1.5", false),
		power:  testutil.CreateCostElement(t, db, "Power", costing.MethodPerHour, "100", false),
	}
}

func (f *fixture) batch(t *testing.T, date, description string, elements ...*costing.CostElement) {
	t.Helper()
	details := make([]appproduction.CostDetailRequest, len(elements))
	for i, e := range elements {
		id := e.ID
		details[i] = appproduction.CostDetailRequest{ElementID: &id, Quantity: ptr(dec("1"))}
	}
	_, err := f.production.RecordBatch(context.Background(), appproduction.RecordBatchRequest{
		OilType:             "Groundnut",
		Description:         description,
		ProductionDate:      valueobject.MustParseDate(date),
		SeedMaterialID:      f.seed.ID,
		SeedQtyBeforeDrying: dec("1000"),
		SeedQtyAfterDrying:  dec("950"),
		OilYield:            dec("300"),
		CakeYield:           dec("600"),
		CostDetails:         details,
	})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestReportService_CostValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.CostValidation(ctx, 0)
	require.NoError(t, err)
	assert.True(t, empty.LatestDate.IsZero())
	assert.Empty(t, empty.Batches)

	f.batch(t, "2025-06-01", "Old")
	f.batch(t, "2025-08-06", "Partial", f.labour)
	f.batch(t, "2025-08-10", "Full", f.labour, f.power)

	resp, err := f.svc.CostValidation(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-10", resp.LatestDate.String())
	assert.Equal(t, "2025-07-11", resp.From.String())
	require.Equal(t, 2, resp.TotalBatches)
	assert.Equal(t, 1, resp.BatchesWithGaps)

	full := resp.Batches[0]
	assert.Equal(t, "BATCH-20250810-Full", full.BatchCode)
	assert.True(t, full.Complete)
	assert.Equal(t, 2, full.CostsCaptured)
	assert.Equal(t, 2, full.CostsExpected)
	assert.Empty(t, full.MissingElements)

	partial := resp.Batches[1]
	assert.Equal(t, "BATCH-20250806-Partial", partial.BatchCode)
	assert.False(t, partial.Complete)
	assert.Equal(t, 1, partial.CostsCaptured)
	assert.Equal(t, 1, partial.MissingCount)
	assert.Equal(t, []string{"Power"}, partial.MissingElements)

	wide, err := f.svc.CostValidation(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 3, wide.TotalBatches)
	old := wide.Batches[2]
	assert.Equal(t, 0, old.CostsCaptured)
	assert.ElementsMatch(t, []string{"Labour", "Power"}, old.MissingElements)

	_, err = f.svc.CostValidation(ctx, -1)
	assert.True(t, shared.IsValidation(err))
}

func TestReportService_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.batch(t, "2025-08-06", "Morning", f.labour, f.power)
	f.batch(t, "2025-08-07", "Evening", f.labour, f.power)

	resp, err := f.svc.Dashboard(ctx, PeriodFilter{})
	require.NoError(t, err)

	require.NotNil(t, resp.Production)
	assert.Equal(t, int64(2), resp.Production.TotalBatches)
	assert.True(t, resp.Production.TotalOilProduced.Equal(dec("600")))
	require.Len(t, resp.ByOilType, 1)
	assert.Equal(t, int64(1), resp.Purchases.TotalPurchases)
	assert.True(t, resp.Purchases.TotalAmount.Equal(dec("175000")))
	assert.Equal(t, int64(0), resp.Blends.TotalBlends)
	assert.Empty(t, resp.ByProductSales)
	require.Len(t, resp.ByProductStock, 1)
	assert.True(t, resp.ByProductStock[0].QuantityRemaining.Equal(dec("1200")))
	assert.Equal(t, int64(0), resp.Writeoffs.TotalWriteoffs)

	require.Len(t, resp.Inventory, 2)
	assert.Equal(t, "BULK_OIL", resp.Inventory[0].LotType)
	assert.True(t, resp.Inventory[0].TotalStock.Equal(dec("600")))
	assert.Equal(t, "MATERIAL", resp.Inventory[1].LotType)
	assert.True(t, resp.Inventory[1].TotalValue.Equal(dec("75000")))

	later, err := f.svc.Dashboard(ctx, PeriodFilter{From: valueobject.MustParseDate("2025-08-07")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), later.Production.TotalBatches)
	assert.Equal(t, int64(0), later.Purchases.TotalPurchases)
}

func TestReportService_Export(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.batch(t, "2025-08-06", "Morning")
	f.batch(t, "2025-08-07", "Evening")

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportBatches(ctx, &buf, PeriodFilter{OilType: "groundnut"}))
	assert.Equal(t, "batches", buf.String())
	require.Len(t, f.exporter.batches, 2)
	assert.Equal(t, "BATCH-20250807-Evening", f.exporter.batches[0].BatchCode)

	require.NoError(t, f.svc.ExportBatches(ctx, io.Discard, PeriodFilter{OilType: "Sesame"}))
	assert.Empty(t, f.exporter.batches)

	buf.Reset()
	require.NoError(t, f.svc.ExportReconciliation(ctx, &buf, PeriodFilter{}))
	assert.Equal(t, "reconciliation", buf.String())
	require.Len(t, f.exporter.recs, 2)
	assert.True(t, f.exporter.recs[0].TotalAdjustment.IsZero())

	f.exporter.err = errors.New("disk full")
	err := f.svc.ExportReconciliation(ctx, io.Discard, PeriodFilter{})
	assert.ErrorContains(t, err, "disk full")
}

func TestPeriodFilter_Batches(t *testing.T) {
	f := PeriodFilter{OilType: "Groundnut", From: valueobject.MustParseDate("2025-08-01")}
	got := f.batches(shared.MaxListLimit, 500)
	assert.Equal(t, "Groundnut", got.OilType)
	assert.Equal(t, 500, got.Offset)
	require.NotNil(t, got.From)
	assert.Nil(t, got.To)
}
