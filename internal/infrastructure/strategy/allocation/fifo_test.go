package allocation

import (
	"context"
	"testing"

	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lot(id string, day int64, remaining int64) strategy.AllocatableLot {
	return strategy.AllocatableLot{
		ID:             id,
		BatchID:        "batch-" + id,
		ProductionDate: valueobject.FromDayNumber(day),
		Remaining:      decimal.NewFromInt(remaining),
		EstimatedRate:  decimal.NewFromInt(10),
	}
}

func TestFIFOLotAllocationStrategy_Allocate(t *testing.T) {
	s := NewFIFOLotAllocationStrategy()
	ctx := context.Background()

	t.Run("oldest lots are drawn first", func(t *testing.T) {
		lots := []strategy.AllocatableLot{lot("c", 15, 5), lot("a", 10, 5), lot("b", 12, 5)}

		result, err := s.Allocate(ctx, strategy.AllocationContext{Quantity: decimal.NewFromInt(8)}, lots)

		require.NoError(t, err)
		require.Len(t, result.Allocations, 2)
		assert.Equal(t, "a", result.Allocations[0].LotID)
		assert.True(t, result.Allocations[0].Quantity.Equal(decimal.NewFromInt(5)))
		assert.True(t, result.Allocations[0].RemainingAfter.IsZero())
		assert.Equal(t, "b", result.Allocations[1].LotID)
		assert.True(t, result.Allocations[1].Quantity.Equal(decimal.NewFromInt(3)))
		assert.True(t, result.Allocations[1].RemainingAfter.Equal(decimal.NewFromInt(2)))
		assert.True(t, result.TotalAllocated.Equal(decimal.NewFromInt(8)))
		assert.True(t, result.Unallocated.IsZero())
	})

	t.Run("skips empty lots", func(t *testing.T) {
		lots := []strategy.AllocatableLot{lot("a", 10, 0), lot("b", 12, 4)}

		result, err := s.Allocate(ctx, strategy.AllocationContext{Quantity: decimal.NewFromInt(4)}, lots)

		require.NoError(t, err)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, "b", result.Allocations[0].LotID)
	})

	t.Run("reports shortfall", func(t *testing.T) {
		lots := []strategy.AllocatableLot{lot("a", 10, 3)}

		result, err := s.Allocate(ctx, strategy.AllocationContext{Quantity: decimal.NewFromInt(5)}, lots)

		require.NoError(t, err)
		assert.True(t, result.TotalAllocated.Equal(decimal.NewFromInt(3)))
		assert.True(t, result.Unallocated.Equal(decimal.NewFromInt(2)))
	})

	t.Run("same day keeps input order", func(t *testing.T) {
		lots := []strategy.AllocatableLot{lot("first", 10, 2), lot("second", 10, 2)}

		result, err := s.Allocate(ctx, strategy.AllocationContext{Quantity: decimal.NewFromInt(1)}, lots)

		require.NoError(t, err)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, "first", result.Allocations[0].LotID)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		lots := []strategy.AllocatableLot{lot("c", 15, 5), lot("a", 10, 5)}

		_, err := s.Allocate(ctx, strategy.AllocationContext{Quantity: decimal.NewFromInt(6)}, lots)

		require.NoError(t, err)
		assert.Equal(t, "c", lots[0].ID)
		assert.True(t, lots[0].Remaining.Equal(decimal.NewFromInt(5)))
	})
}
