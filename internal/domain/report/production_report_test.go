package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostReconciliation_Derive(t *testing.T) {
	r := CostReconciliation{
		TotalProductionCost: decimal.NewFromInt(20000),
		CakeYield:           decimal.NewFromInt(600),
		CakeEstimatedRate:   decimal.NewFromInt(10),
		NetOilCost:          decimal.NewFromInt(12800),
	}

	r.Derive()

	assert.True(t, r.EstimatedNetOilCost.Equal(decimal.NewFromInt(14000)))
	assert.True(t, r.TotalAdjustment.Equal(decimal.NewFromInt(-1200)))
}

func TestCostPerKg(t *testing.T) {
	assert.True(t, CostPerKg(decimal.NewFromInt(100), decimal.NewFromInt(4)).Equal(decimal.NewFromInt(25)))
	assert.True(t, CostPerKg(decimal.NewFromInt(100), decimal.Zero).IsZero())
}
