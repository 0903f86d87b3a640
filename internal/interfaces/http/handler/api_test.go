package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	blendingapp "github.com/oilmill/backend/internal/application/blending"
	byproductapp "github.com/oilmill/backend/internal/application/byproduct"
	inventoryapp "github.com/oilmill/backend/internal/application/inventory"
	masterdataapp "github.com/oilmill/backend/internal/application/masterdata"
	productionapp "github.com/oilmill/backend/internal/application/production"
	purchaseapp "github.com/oilmill/backend/internal/application/purchase"
	reportapp "github.com/oilmill/backend/internal/application/report"
	writeoffapp "github.com/oilmill/backend/internal/application/writeoff"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/infrastructure/export"
	"github.com/oilmill/backend/internal/infrastructure/lock"
	"github.com/oilmill/backend/internal/infrastructure/persistence"
	"github.com/oilmill/backend/internal/infrastructure/strategy/allocation"
	"github.com/oilmill/backend/internal/infrastructure/strategy/cost"
	"github.com/oilmill/backend/internal/interfaces/http/middleware"
	"github.com/oilmill/backend/internal/interfaces/http/router"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiFixture struct {
	engine   *gin.Engine
	db       *gorm.DB
	seed     *masterdata.Material
	supplier *masterdata.Supplier
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	reports, err := persistence.NewSqlxReportRepositoryFromGorm(db)
	require.NoError(t, err)
	scope := persistence.NewGormTransactionScope(db)
	repos := persistence.NewGormRepositories(db)
	costStrategy := cost.NewWeightedAverageCostStrategy()

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Operator(middleware.OperatorConfig{}))
	engine.NoRoute(NoRoute)

	router.NewRouter(engine).Register(
		NewMasterDataHandler(masterdataapp.NewMasterDataService(scope, repos)),
		NewInventoryHandler(inventoryapp.NewInventoryService(scope, repos, costStrategy)),
		NewPurchaseHandler(purchaseapp.NewPurchaseService(scope, repos, reports, costStrategy)),
		NewProductionHandler(productionapp.NewProductionService(scope, repos, reports, costStrategy,
			productionapp.Settings{UnitCode: "PUV"})),
		NewBlendingHandler(blendingapp.NewBlendingService(scope, repos, reports, costStrategy, "PUV")),
		NewByProductHandler(byproductapp.NewByProductService(scope, repos, reports,
			allocation.NewFIFOLotAllocationStrategy(), byproductapp.WithLocker(lock.NewLocalLocker(), time.Second))),
		NewWriteoffHandler(writeoffapp.NewWriteoffService(scope, repos, reports, costStrategy)),
		NewReportHandler(reportapp.NewReportService(repos, reports, export.NewXLSXExporter())),
	).Setup()

	return &apiFixture{
		engine:   engine,
		db:       db,
		seed:     testutil.CreateMaterial(t, db, "Groundnut Seed", masterdata.CategorySeeds, "GNS-K"),
		supplier: testutil.CreateSupplier(t, db, "Sri Krishna Mills", "SKM"),
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (int, testutil.Envelope) {
	t.Helper()
	w := testutil.PerformRequest(t, f.engine, method, path, body, map[string]string{middleware.OperatorHeader: "ravi"})
	return w.Code, testutil.DecodeEnvelope(t, w)
}

func decode[T any](t *testing.T, env testutil.Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), "data: %s", string(env.Data))
	return out
}

func (f *apiFixture) buySeed(t *testing.T) {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/api/v1/purchases", map[string]any{
		"supplier_id":   f.supplier.ID,
		"invoice_ref":   "INV-0805",
		"purchase_date": "2025-08-05",
		"items":         []map[string]any{{"material_id": f.seed.ID, "quantity": "1000", "rate": "50"}},
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
}

func (f *apiFixture) recordBatch(t *testing.T) productionapp.BatchResponse {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/api/v1/production/batches", map[string]any{
		"oil_type":                    "Groundnut",
		"batch_description":           "Morning",
		"production_date":             "2025-08-06",
		"seed_material_id":            f.seed.ID,
		"seed_quantity_before_drying": "1000",
		"seed_quantity_after_drying":  "950",
		"seed_cost_total":             "20000",
		"oil_yield":                   "300",
		"cake_yield":                  "600",
		"cake_estimated_rate":         "10",
		"sludge_estimated_rate":       "0",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	return decode[productionapp.BatchResponse](t, env)
}

func TestAPI_PurchaseProduceSellFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.buySeed(t)

	batch := f.recordBatch(t)
	assert.True(t, batch.NetOilCost.Equal(decimal.NewFromInt(14000)))
	assert.Equal(t, "ravi", batch.CreatedBy)
	require.NotNil(t, batch.OilLotID)

	status, env := f.do(t, http.MethodGet, "/api/v1/byproducts/inventory", nil)
	require.Equal(t, http.StatusOK, status)
	inventory := decode[byproductapp.InventoryResponse](t, env)
	require.Len(t, inventory.Lots, 1)
	assert.Equal(t, batch.ID, inventory.Lots[0].BatchID)

	status, env = f.do(t, http.MethodPost, "/api/v1/byproducts/sales", map[string]any{
		"byproduct_type": "oil_cake",
		"quantity_sold":  "600",
		"sale_rate":      "12",
		"buyer_name":     "Kaveri Feeds",
		"sale_date":      "2025-08-20",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	sale := decode[byproductapp.SaleResponse](t, env)
	assert.Equal(t, "INV-20250820-KAV", sale.InvoiceNumber)
	require.Len(t, sale.BatchesUpdated, 1)
	assert.True(t, sale.BatchesUpdated[0].NewNetOilCost.Equal(decimal.NewFromInt(12800)))

	status, env = f.do(t, http.MethodGet, "/api/v1/production/batches/"+batch.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	reloaded := decode[productionapp.BatchResponse](t, env)
	assert.True(t, reloaded.NetOilCost.Equal(decimal.NewFromInt(12800)))
	assert.True(t, reloaded.CakeSoldQty.Equal(decimal.NewFromInt(600)))

	t.Run("overselling is rejected", func(t *testing.T) {
		status, env := f.do(t, http.MethodPost, "/api/v1/byproducts/sales", map[string]any{
			"byproduct_type": "OIL_CAKE",
			"quantity_sold":  "1",
			"sale_rate":      "12",
			"buyer_name":     "Kaveri Feeds",
			"sale_date":      "2025-08-21",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)
	})

	t.Run("sale history", func(t *testing.T) {
		status, env := f.do(t, http.MethodGet, "/api/v1/byproducts/sales?batch_id="+batch.ID.String(), nil)
		require.Equal(t, http.StatusOK, status)
		history := decode[byproductapp.SalesHistoryResponse](t, env)
		assert.Len(t, history.Sales, 1)
		assert.EqualValues(t, 1, env.Meta["count"])
	})

	t.Run("dashboard", func(t *testing.T) {
		status, env := f.do(t, http.MethodGet, "/api/v1/reports/dashboard?oil_type=Groundnut", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, env.Success)
	})
}

func TestAPI_BlendFromBatchAndPurchasedOil(t *testing.T) {
	f := newAPIFixture(t)
	f.buySeed(t)
	batch := f.recordBatch(t)

	sesame := testutil.CreateMaterial(t, f.db, "Sesame Oil", masterdata.CategoryBulkOil, "")
	status, env := f.do(t, http.MethodPost, "/api/v1/purchases", map[string]any{
		"supplier_id":   f.supplier.ID,
		"invoice_ref":   "INV-SES",
		"purchase_date": "2025-08-07",
		"items":         []map[string]any{{"material_id": sesame.ID, "quantity": "100", "rate": "250"}},
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)

	status, env = f.do(t, http.MethodGet, "/api/v1/inventory/lots?material_id="+sesame.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	lots := decode[[]inventoryapp.LotResponse](t, env)
	require.Len(t, lots, 1)

	status, env = f.do(t, http.MethodPost, "/api/v1/blending/blends", map[string]any{
		"blend_description": "Premium",
		"blend_date":        "2025-08-10",
		"total_quantity":    "100",
		"components": []map[string]any{
			{"source_lot_id": batch.OilLotID, "percentage": "60"},
			{"source_lot_id": lots[0].ID, "percentage": "40"},
		},
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	blend := decode[blendingapp.BlendResponse](t, env)
	assert.Equal(t, "Mixed", blend.OilType)
	require.Len(t, blend.Components, 2)
	// 60 kg at 14000/300 plus 40 kg at 250
	assert.Equal(t, "12800", blend.TotalCost.Round(2).String())

	t.Run("percentages must total 100", func(t *testing.T) {
		status, env := f.do(t, http.MethodPost, "/api/v1/blending/blends", map[string]any{
			"blend_description": "Bad",
			"blend_date":        "2025-08-10",
			"total_quantity":    "10",
			"components": []map[string]any{
				{"source_lot_id": batch.OilLotID, "percentage": "60"},
				{"source_lot_id": lots[0].ID, "percentage": "39"},
			},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestAPI_Errors(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("unknown batch", func(t *testing.T) {
		status, env := f.do(t, http.MethodGet, "/api/v1/production/batches/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		status, env := f.do(t, http.MethodGet, "/api/v1/byproducts/sales/nope", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("missing required fields", func(t *testing.T) {
		status, env := f.do(t, http.MethodPost, "/api/v1/purchases", map[string]any{"invoice_ref": "X"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("unknown writeoff reason", func(t *testing.T) {
		status, env := f.do(t, http.MethodPost, "/api/v1/writeoffs", map[string]any{
			"material_id":   f.seed.ID,
			"writeoff_date": "2025-08-10",
			"quantity":      "1",
			"reason_code":   "NOPE",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
	})

	t.Run("unknown route", func(t *testing.T) {
		status, env := f.do(t, http.MethodGet, "/api/v1/nowhere", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "ROUTE_NOT_FOUND", env.Error.Code)
	})
}

func TestAPI_WriteoffReasons(t *testing.T) {
	f := newAPIFixture(t)
	status, env := f.do(t, http.MethodGet, "/api/v1/writeoffs/reasons", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "DAMAGE")
}

func TestAPI_ExportBatches(t *testing.T) {
	f := newAPIFixture(t)
	f.buySeed(t)
	f.recordBatch(t)

	w := testutil.PerformRequest(t, f.engine, http.MethodGet, "/api/v1/reports/export/batches", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "batches-")
	// XLSX is a zip archive
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestAPI_CostValidationRejectsBadDays(t *testing.T) {
	f := newAPIFixture(t)
	w := testutil.PerformRequest(t, f.engine, http.MethodGet, "/api/v1/reports/cost-validation?days=abc", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")

	w = testutil.PerformRequest(t, f.engine, http.MethodGet, "/api/v1/reports/cost-validation?days=-1", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAPI_TimeTrackedBatchWithOverride(t *testing.T) {
	f := newAPIFixture(t)
	f.buySeed(t)
	power := testutil.CreateCostElement(t, f.db, "Power", costing.MethodPerHour, "100", false)

	status, env := f.do(t, http.MethodPost, "/api/v1/production/time-costs", map[string]any{
		"start_datetime": "2025-08-06 08:00",
		"end_datetime":   "2025-08-06 10:15",
	})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	preview := decode[productionapp.TimeCostResponse](t, env)
	assert.True(t, preview.TotalTimeCost.Equal(decimal.NewFromInt(300)), "2h15m billed as 3")

	status, env = f.do(t, http.MethodPost, "/api/v1/production/batches", map[string]any{
		"oil_type":                    "Groundnut",
		"batch_description":           "Evening",
		"production_date":             "2025-08-06",
		"seed_material_id":            f.seed.ID,
		"seed_quantity_before_drying": "1000",
		"seed_quantity_after_drying":  "950",
		"oil_yield":                   "300",
		"cake_yield":                  "600",
		"cake_estimated_rate":         "10",
		"sludge_estimated_rate":       "0",
		"cost_details": []map[string]any{
			{"element_id": power.ID, "override_rate": "120", "override_reason": "peak tariff"},
		},
		"time_tracking": map[string]any{
			"start_datetime": "2025-08-06 08:00",
			"end_datetime":   "2025-08-06 10:15",
		},
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	batch := decode[productionapp.BatchResponse](t, env)
	// 50000 seed + 360 power - 6000 cake
	assert.True(t, batch.NetOilCost.Equal(decimal.NewFromInt(44360)))

	status, env = f.do(t, http.MethodGet, "/api/v1/production/batches/"+batch.ID.String()+"/cost-overrides", nil)
	require.Equal(t, http.StatusOK, status)
	overrides := decode[[]productionapp.OverrideResponse](t, env)
	require.Len(t, overrides, 1)
	assert.Equal(t, "peak tariff", overrides[0].Reason)
	assert.Equal(t, "ravi", overrides[0].OverriddenBy)

	status, env = f.do(t, http.MethodGet, "/api/v1/production/batches/"+batch.ID.String()+"/time-entries", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]productionapp.TimeEntryResponse](t, env), 1)

	status, env = f.do(t, http.MethodGet, "/api/v1/production/batches/"+uuid.NewString()+"/time-entries", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, env = f.do(t, http.MethodPost, "/api/v1/production/time-costs", map[string]any{
		"start_datetime": "2025-08-06 10:00",
		"end_datetime":   "2025-08-06 09:00",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
