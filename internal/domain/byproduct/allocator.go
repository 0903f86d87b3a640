package byproduct

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Allocator splits a sale across lots with a lot allocation strategy
// (first-in first-out by production date) and prices each share against
// the lot's estimated rate.
type Allocator struct {
	strategy strategy.LotAllocationStrategy
}

// NewAllocator creates an Allocator
func NewAllocator(s strategy.LotAllocationStrategy) *Allocator {
	return &Allocator{strategy: s}
}

// Allocate draws quantity from lots at saleRate. Lots are mutated only when
// the full quantity can be covered; otherwise InsufficientStock is returned
// and every lot is left untouched.
func (a *Allocator) Allocate(ctx context.Context, lots []*Lot, quantity, saleRate decimal.Decimal) ([]Allocation, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity sold must be positive")
	}

	byID := make(map[string]*Lot, len(lots))
	candidates := make([]strategy.AllocatableLot, 0, len(lots))
	available := decimal.Zero
	for _, lot := range lots {
		if !lot.QuantityRemaining.IsPositive() {
			continue
		}
		byID[lot.ID.String()] = lot
		available = available.Add(lot.QuantityRemaining)
		candidates = append(candidates, strategy.AllocatableLot{
			ID:             lot.ID.String(),
			BatchID:        lot.BatchID.String(),
			ProductionDate: lot.ProductionDate,
			Remaining:      lot.QuantityRemaining,
			EstimatedRate:  lot.EstimatedRate,
		})
	}
	if available.LessThan(quantity) {
		return nil, shared.NewInsufficientStockError("by-product", available, quantity)
	}

	result, err := a.strategy.Allocate(ctx, strategy.AllocationContext{Quantity: quantity}, candidates)
	if err != nil {
		return nil, fmt.Errorf("allocate by-product sale: %w", err)
	}
	if result.Unallocated.IsPositive() {
		return nil, shared.NewInsufficientStockError("by-product", result.TotalAllocated, quantity)
	}

	allocations := make([]Allocation, 0, len(result.Allocations))
	for _, share := range result.Allocations {
		lot := byID[share.LotID]
		if err := lot.Draw(share.Quantity); err != nil {
			return nil, err
		}
		perKg := lot.EstimatedRate.Sub(saleRate)
		allocations = append(allocations, Allocation{
			ID:                   uuid.New(),
			LotID:                lot.ID,
			BatchID:              lot.BatchID,
			BatchCode:            lot.BatchCode,
			QuantityAllocated:    share.Quantity,
			OriginalEstimateRate: lot.EstimatedRate,
			ActualSaleRate:       saleRate,
			CostAdjustmentPerKg:  perKg,
			CostAdjustment:       share.Quantity.Mul(perKg),
		})
	}
	return allocations, nil
}
