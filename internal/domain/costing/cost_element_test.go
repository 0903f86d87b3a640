package costing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCostDetail(t *testing.T) {
	t.Run("uses master rate without override", func(t *testing.T) {
		d, err := NewCostDetail(nil, "Crushing Labour", "Labor", decimal.NewFromInt(2), nil, decimal.NewFromInt(1000))

		require.NoError(t, err)
		assert.True(t, d.TotalCost.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("override wins even when zero", func(t *testing.T) {
		zero := decimal.Zero
		d, err := NewCostDetail(nil, "Crushing Labour", "Labor", decimal.NewFromInt(2), &zero, decimal.NewFromInt(1000))

		require.NoError(t, err)
		assert.True(t, d.TotalCost.IsZero())
	})

	t.Run("rejects negatives", func(t *testing.T) {
		neg := decimal.NewFromInt(-1)
		_, err := NewCostDetail(nil, "X", "", decimal.NewFromInt(1), &neg, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewCostDetail(nil, "X", "", decimal.NewFromInt(1), nil, neg)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewCostDetail(nil, "", "", decimal.NewFromInt(1), nil, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestSumDetails(t *testing.T) {
	a, _ := NewCostDetail(nil, "A", "", decimal.NewFromInt(3), nil, decimal.NewFromInt(10))
	b, _ := NewCostDetail(nil, "B", "", decimal.NewFromInt(5), nil, decimal.NewFromInt(2))

	assert.True(t, SumDetails([]CostDetail{a, b}).Equal(decimal.NewFromInt(40)))
	assert.True(t, SumDetails(nil).IsZero())
}

func TestCostElement_EstimateQuantity(t *testing.T) {
	seed, hours := decimal.NewFromInt(1000), decimal.NewFromInt(6)
	cases := map[CalculationMethod]int64{MethodPerKg: 1000, MethodPerHour: 6, MethodFixed: 1, MethodActual: 0}

	for method, want := range cases {
		e, err := NewCostElement("E", "C", "unit", method, decimal.NewFromInt(1), ApplicableBatch, false)
		require.NoError(t, err)
		assert.True(t, e.EstimateQuantity(seed, hours).Equal(decimal.NewFromInt(want)), method)
	}
}

func TestMissingMandatory(t *testing.T) {
	mk := func(name string, optional bool, scope Applicability) CostElement {
		e, err := NewCostElement(name, "C", "kg", MethodPerKg, decimal.NewFromInt(1), scope, optional)
		require.NoError(t, err)
		return *e
	}
	captured := mk("captured", false, ApplicableBatch)
	optional := mk("optional", true, ApplicableBatch)
	blendOnly := mk("blend", false, ApplicableBlend)
	missing := mk("missing", false, ApplicableAll)

	got := MissingMandatory([]CostElement{captured, optional, blendOnly, missing}, ApplicableBatch, map[uuid.UUID]bool{captured.ID: true})

	require.Len(t, got, 1)
	assert.Equal(t, "missing", got[0].Name)
}

func TestNewCostElement_Validation(t *testing.T) {
	_, err := NewCostElement("", "C", "kg", MethodPerKg, decimal.Zero, ApplicableAll, false)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewCostElement("E", "C", "kg", "PER_TON", decimal.Zero, ApplicableAll, false)
	assert.ErrorIs(t, err, shared.ErrValidation)

	e, err := NewCostElement("E", "C", "kg", MethodFixed, decimal.Zero, "", false)
	require.NoError(t, err)
	assert.Equal(t, ApplicableAll, e.ApplicableTo)
	assert.ErrorIs(t, e.Revise(Revision{DefaultRate: decimal.NewFromInt(-2)}), shared.ErrValidation)
	assert.Equal(t, 1, e.Version)

	require.NoError(t, e.Revise(Revision{DefaultRate: decimal.NewFromInt(4), Active: false, IsOptional: true, DisplayOrder: 3}))
	assert.Equal(t, 2, e.Version)
	assert.False(t, e.Active)
	assert.True(t, e.IsOptional)
	assert.True(t, e.DefaultRate.Equal(decimal.NewFromInt(4)))
}
