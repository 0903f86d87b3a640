package costing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeEntry(t *testing.T) {
	t.Run("rounds partial hours up", func(t *testing.T) {
		e, err := ParseTimeEntry("crushing", "2025-08-06 10:30", "2025-08-06 15:45", " Ravi ", "")

		require.NoError(t, err)
		assert.Equal(t, ProcessCrushing, e.ProcessType)
		assert.Equal(t, "5.25", e.TotalHours.String())
		assert.Equal(t, "6", e.BilledHours.String())
		assert.Equal(t, "Ravi", e.OperatorName)
	})

	t.Run("whole hours are billed as is", func(t *testing.T) {
		e, err := ParseTimeEntry("", "2025-08-06 22:00", "2025-08-07 02:00", "", "")

		require.NoError(t, err)
		assert.Equal(t, ProcessCrushing, e.ProcessType)
		assert.Equal(t, "4", e.BilledHours.String())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := ParseTimeEntry("crushing", "2025-08-06 10:30", "2025-08-06 10:30", "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = ParseTimeEntry("crushing", "06/08/2025 10:30", "2025-08-06 11:30", "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = ParseTimeEntry("pressing", "2025-08-06 10:30", "2025-08-06 11:30", "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestNewTimeEntry_EndBeforeStart(t *testing.T) {
	start := time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)

	_, err := NewTimeEntry(ProcessDrying, start, start.Add(-time.Minute), "", "")

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestTimeCosts(t *testing.T) {
	mk := func(name string, method CalculationMethod, rate int64, scope Applicability) CostElement {
		e, err := NewCostElement(name, "Utilities", "hour", method, decimal.NewFromInt(rate), scope, false)
		require.NoError(t, err)
		return *e
	}
	power := mk("Power", MethodPerHour, 100, ApplicableBatch)
	operator := mk("Operator", MethodPerHour, 80, ApplicableAll)
	labour := mk("Labour", MethodPerKg, 2, ApplicableBatch)
	blendMixer := mk("Mixer", MethodPerHour, 50, ApplicableBlend)
	idle := mk("Idle Power", MethodPerHour, 10, ApplicableBatch)
	idle.Active = false

	details, err := TimeCosts([]CostElement{power, operator, labour, blendMixer, idle}, ApplicableBatch, decimal.NewFromInt(6), nil)

	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Power", details[0].ElementName)
	assert.True(t, details[0].TotalCost.Equal(decimal.NewFromInt(600)))
	assert.True(t, SumDetails(details).Equal(decimal.NewFromInt(1080)))

	details, err = TimeCosts([]CostElement{power, operator}, ApplicableBatch, decimal.NewFromInt(6), map[uuid.UUID]bool{power.ID: true})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Operator", details[0].ElementName)
}

func TestNewOverrideEntry(t *testing.T) {
	id := uuid.New()
	override := decimal.NewFromInt(120)
	d, err := NewCostDetail(&id, "Power", "Utilities", decimal.NewFromInt(100), &override, decimal.NewFromInt(2))
	require.NoError(t, err)

	entry, err := NewOverrideEntry(ModuleBatch, d, "", "")
	require.NoError(t, err)
	batchID := uuid.New()
	entry.For(batchID)

	assert.Equal(t, batchID, entry.RecordID)
	assert.Equal(t, &id, entry.ElementID)
	assert.Equal(t, DefaultOverrideReason, entry.Reason)
	assert.Equal(t, "System", entry.OverriddenBy)
	assert.True(t, entry.Difference().Equal(decimal.NewFromInt(20)))

	plain, err := NewCostDetail(&id, "Power", "Utilities", decimal.NewFromInt(100), nil, decimal.NewFromInt(2))
	require.NoError(t, err)
	_, err = NewOverrideEntry(ModuleBatch, plain, "tariff", "ravi")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
