package production

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func validInput() BatchInput {
	return BatchInput{
		OilType:             "Groundnut",
		Description:         "morning",
		ProductionDate:      valueobject.NewDate(2025, 8, 10),
		SeedMaterialID:      uuid.New(),
		SeedLotID:           uuid.New(),
		SeedQtyBeforeDrying: d(1000),
		SeedQtyAfterDrying:  d(980),
		SeedCostTotal:       d(20000),
		OilYield:            d(300),
		CakeYield:           d(600),
		CakeEstimatedRate:   d(10),
	}
}

func TestNewBatch_Costing(t *testing.T) {
	b, err := NewBatch(validInput())
	require.NoError(t, err)

	assert.Equal(t, "BATCH-20250810-morning", b.BatchCode)
	assert.True(t, b.TotalProductionCost.Equal(d(20000)))
	assert.True(t, b.NetOilCost.Equal(d(14000)))
	assert.Equal(t, "46.67", b.OilCostPerKg.StringFixed(2))
	assert.True(t, b.DryingLoss.Equal(d(20)))
	assert.Equal(t, "30.61", b.OilYieldPercent.StringFixed(2))
	assert.True(t, b.CostAdjustment().IsZero())
	assert.Len(t, b.GetDomainEvents(), 1)
}

func TestNewBatch_CostDetailsAndSludge(t *testing.T) {
	override := d(3)
	labour, err := costing.NewCostDetail(nil, "Labour", "Labor", d(2), &override, d(1000))
	require.NoError(t, err)
	power, err := costing.NewCostDetail(nil, "Power", "Utilities", d(500), nil, d(1))
	require.NoError(t, err)

	in := validInput()
	in.CostDetails = []costing.CostDetail{labour, power}
	in.SludgeYield = d(20)
	in.SludgeEstimatedRate = d(5)

	b, err := NewBatch(in)
	require.NoError(t, err)

	// 20000 + 3000 + 500 - 6000 - 100
	assert.True(t, b.TotalProductionCost.Equal(d(23500)))
	assert.True(t, b.NetOilCost.Equal(d(17400)))
	assert.True(t, b.OilCostPerKg.Equal(d(58)))
	assert.True(t, b.ExtractionCost().Equal(d(3500)))
}

func TestNewBatch_ZeroOilYield(t *testing.T) {
	in := validInput()
	in.OilYield = decimal.Zero

	b, err := NewBatch(in)

	require.NoError(t, err)
	assert.True(t, b.OilCostPerKg.IsZero())
}

func TestNewBatch_CreditAboveProductionCost(t *testing.T) {
	in := validInput()
	in.SeedCostTotal = d(5000)

	b, err := NewBatch(in)

	require.NoError(t, err)
	assert.True(t, b.NetOilCost.Equal(d(-1000)), "cake credit 6000 against cost 5000")
	assert.Equal(t, "-3.33", b.OilCostPerKg.StringFixed(2))
	assert.True(t, b.InventoryUnitCost().IsZero())

	positive, err := NewBatch(validInput())
	require.NoError(t, err)
	assert.True(t, positive.InventoryUnitCost().Equal(positive.OilCostPerKg))
}

func TestNewBatch_Validation(t *testing.T) {
	cases := map[string]func(*BatchInput){
		"after exceeds before": func(in *BatchInput) { in.SeedQtyAfterDrying = d(1001) },
		"zero seed":            func(in *BatchInput) { in.SeedQtyBeforeDrying = decimal.Zero; in.SeedQtyAfterDrying = decimal.Zero },
		"negative oil":         func(in *BatchInput) { in.OilYield = d(-1) },
		"negative cake":        func(in *BatchInput) { in.CakeYield = d(-1) },
		"missing oil type":     func(in *BatchInput) { in.OilType = "" },
		"missing description":  func(in *BatchInput) { in.Description = " " },
		"missing date":         func(in *BatchInput) { in.ProductionDate = valueobject.Date{} },
		"missing seed":         func(in *BatchInput) { in.SeedMaterialID = uuid.Nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := NewBatch(in)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestBatch_RecordByProductSale(t *testing.T) {
	t.Run("full cake sale above estimate", func(t *testing.T) {
		b, err := NewBatch(validInput())
		require.NoError(t, err)

		require.NoError(t, b.RecordByProductSale(byproduct.TypeOilCake, d(600), d(12)))

		assert.True(t, b.NetOilCost.Equal(d(12800)))
		assert.Equal(t, "42.67", b.OilCostPerKg.StringFixed(2))
		assert.True(t, b.CostAdjustment().Equal(d(-1200)))
		assert.True(t, b.CakeActualRate.Equal(d(12)))
		assert.Equal(t, 2, b.GetVersion())
	})

	t.Run("partial sales compound", func(t *testing.T) {
		b, err := NewBatch(validInput())
		require.NoError(t, err)

		require.NoError(t, b.RecordByProductSale(byproduct.TypeOilCake, d(200), d(12)))
		assert.True(t, b.NetOilCost.Equal(d(13600)))

		require.NoError(t, b.RecordByProductSale(byproduct.TypeOilCake, d(100), d(8)))
		assert.True(t, b.NetOilCost.Equal(d(13800)))
		assert.True(t, b.CakeSoldQty.Equal(d(300)))
		assert.True(t, b.CakeRealizedRevenue.Equal(d(3200)))
	})

	t.Run("cannot oversell", func(t *testing.T) {
		b, err := NewBatch(validInput())
		require.NoError(t, err)

		err = b.RecordByProductSale(byproduct.TypeOilCake, d(601), d(12))

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, b.NetOilCost.Equal(d(14000)))
	})

	t.Run("zero oil yield keeps per kg at zero", func(t *testing.T) {
		in := validInput()
		in.OilYield = decimal.Zero
		b, err := NewBatch(in)
		require.NoError(t, err)

		require.NoError(t, b.RecordByProductSale(byproduct.TypeOilCake, d(100), d(12)))
		assert.True(t, b.OilCostPerKg.IsZero())
	})
}

func TestDefaultRateFor(t *testing.T) {
	r, ok := DefaultRateFor(" sesame ")
	require.True(t, ok)
	assert.True(t, r.CakeRate.Equal(d(35)))
	assert.True(t, r.SludgeRate.Equal(d(12)))

	_, ok = DefaultRateFor("olive")
	assert.False(t, ok)
}
