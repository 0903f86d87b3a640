package cost

import (
	"context"
	"errors"

	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// WeightedAverageCostStrategy combines entries as Σ(qty x unit cost) / quantity
type WeightedAverageCostStrategy struct {
	strategy.Descriptor
}

// NewWeightedAverageCostStrategy creates a new weighted average cost strategy
func NewWeightedAverageCostStrategy() *WeightedAverageCostStrategy {
	return &WeightedAverageCostStrategy{
		Descriptor: strategy.Describe(
			"weighted_average",
			strategy.KindCost,
			"Weighted average of quantity and unit cost",
		),
	}
}

// Method returns the costing method
func (s *WeightedAverageCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodWeightedAverage
}

// CalculateCost sums entry values and divides by costCtx.Quantity, or by the
// summed entry quantity when no divisor is given. A zero divisor yields the
// fallback unit cost.
func (s *WeightedAverageCostStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
	entries []strategy.CostEntry,
) (strategy.CostResult, error) {
	if len(entries) == 0 {
		return strategy.CostResult{}, errors.New("no cost entries provided")
	}

	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, entry := range entries {
		if entry.Quantity.IsNegative() {
			return strategy.CostResult{}, errors.New("cost entry quantity cannot be negative")
		}
		totalQty = totalQty.Add(entry.Quantity)
		totalCost = totalCost.Add(entry.TotalCost())
	}

	divisor := costCtx.Quantity
	if divisor.IsZero() {
		divisor = totalQty
	}

	unitCost := costCtx.FallbackUnitCost
	if !divisor.IsZero() {
		unitCost = totalCost.Div(divisor)
	}

	return strategy.CostResult{
		UnitCost:      unitCost,
		TotalCost:     totalCost,
		TotalQuantity: totalQty,
		Method:        strategy.CostMethodWeightedAverage,
	}, nil
}
