package allocation

import (
	"context"
	"sort"

	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// FIFOLotAllocationStrategy draws quantity from the oldest lots first
type FIFOLotAllocationStrategy struct {
	strategy.Descriptor
}

// NewFIFOLotAllocationStrategy creates a new FIFO allocation strategy
func NewFIFOLotAllocationStrategy() *FIFOLotAllocationStrategy {
	return &FIFOLotAllocationStrategy{
		Descriptor: strategy.Describe(
			"fifo",
			strategy.KindAllocation,
			"Allocate sales to the earliest produced lots first",
		),
	}
}

// Allocate walks the lots in production-date order. Lots produced on the
// same day keep their input order.
func (s *FIFOLotAllocationStrategy) Allocate(
	ctx context.Context,
	allocCtx strategy.AllocationContext,
	lots []strategy.AllocatableLot,
) (strategy.AllocationResult, error) {
	sortedLots := make([]strategy.AllocatableLot, len(lots))
	copy(sortedLots, lots)
	sort.SliceStable(sortedLots, func(i, j int) bool {
		return sortedLots[i].ProductionDate.Before(sortedLots[j].ProductionDate)
	})

	remaining := allocCtx.Quantity
	allocations := make([]strategy.LotAllocation, 0)
	totalAllocated := decimal.Zero

	for _, lot := range sortedLots {
		if !remaining.IsPositive() {
			break
		}
		if !lot.Remaining.IsPositive() {
			continue
		}

		allocated := decimal.Min(remaining, lot.Remaining)
		allocations = append(allocations, strategy.LotAllocation{
			LotID:           lot.ID,
			BatchID:         lot.BatchID,
			Quantity:        allocated,
			EstimatedRate:   lot.EstimatedRate,
			RemainingBefore: lot.Remaining,
			RemainingAfter:  lot.Remaining.Sub(allocated),
		})

		remaining = remaining.Sub(allocated)
		totalAllocated = totalAllocated.Add(allocated)
	}

	return strategy.AllocationResult{
		Allocations:    allocations,
		TotalAllocated: totalAllocated,
		Unallocated:    remaining,
	}, nil
}
