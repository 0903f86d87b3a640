package masterdata

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/infrastructure/persistence"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *MasterDataService {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return NewMasterDataService(persistence.NewGormTransactionScope(db), persistence.NewGormRepositories(db))
}

func TestMasterDataService_Materials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateMaterial(ctx, CreateMaterialRequest{
		Name: "Groundnut Seed", Category: "SEEDS", ShortCode: "gns-k", TaxRate: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "GNS-K", created.ShortCode)
	assert.Equal(t, "kg", created.Unit)

	_, err = svc.CreateMaterial(ctx, CreateMaterialRequest{Name: "Bottles", Category: "PACKAGING", ShortCode: "BOTTLE"})
	assert.True(t, shared.IsValidation(err), "short code must look like GNS-K")

	_, err = svc.CreateMaterial(ctx, CreateMaterialRequest{Name: "Caps", Category: "PACKAGING"})
	require.NoError(t, err)

	seeds, err := svc.ListMaterials(ctx, MaterialListFilter{Category: "SEEDS"})
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, created.ID, seeds[0].ID)

	got, err := svc.GetMaterial(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.TaxRate.Equal(decimal.NewFromInt(5)))

	_, err = svc.GetMaterial(ctx, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestMasterDataService_Suppliers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	s, err := svc.CreateSupplier(ctx, CreateSupplierRequest{Name: "Sri Krishna Mills", ShortCode: "skm", GSTNumber: "33abcde1234f1z5"})
	require.NoError(t, err)
	assert.Equal(t, "SKM", s.ShortCode)
	assert.Equal(t, "33ABCDE1234F1Z5", s.GSTNumber)

	_, err = svc.CreateSupplier(ctx, CreateSupplierRequest{Name: "", ShortCode: "ABC"})
	assert.True(t, shared.IsValidation(err))

	list, err := svc.ListSuppliers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMasterDataService_CostElements(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	labour, err := svc.CreateCostElement(ctx, CreateCostElementRequest{
		Name: "Labour", Category: "Labour", UnitType: "kg", CalculationMethod: "PER_KG",
		DefaultRate: decimal.RequireFromString("1.5"), ApplicableTo: "BATCH",
	})
	require.NoError(t, err)
	_, err = svc.CreateCostElement(ctx, CreateCostElementRequest{
		Name: "Filter Cloth", Category: "Consumables", CalculationMethod: "FIXED",
		DefaultRate: decimal.NewFromInt(200), ApplicableTo: "BLEND",
	})
	require.NoError(t, err)
	_, err = svc.CreateCostElement(ctx, CreateCostElementRequest{
		Name: "Quality Testing", Category: "Quality", CalculationMethod: "FIXED", DefaultRate: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	batch, err := svc.ListCostElements(ctx, CostElementListFilter{ApplicableTo: "BATCH"})
	require.NoError(t, err)
	assert.Len(t, batch, 2, "batch stage sees BATCH and ALL elements")

	rate := decimal.NewFromInt(2)
	inactive := false
	updated, err := svc.UpdateCostElement(ctx, labour.ID, UpdateCostElementRequest{DefaultRate: &rate, Active: &inactive, Version: labour.Version})
	require.NoError(t, err)
	assert.Equal(t, labour.Version+1, updated.Version)
	assert.True(t, updated.DefaultRate.Equal(rate))
	assert.False(t, updated.Active)

	_, err = svc.UpdateCostElement(ctx, labour.ID, UpdateCostElementRequest{DefaultRate: &rate, Version: labour.Version})
	assert.Equal(t, shared.CodeConcurrencyConflict, shared.ErrorCode(err), "stale version")

	active, err := svc.ListCostElements(ctx, CostElementListFilter{ApplicableTo: "BATCH", ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = svc.UpdateCostElement(ctx, uuid.New(), UpdateCostElementRequest{Version: 1})
	assert.True(t, shared.IsNotFound(err))
}
