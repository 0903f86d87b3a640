package strategy

import (
	"context"

	"github.com/shopspring/decimal"
)

// CostMethod represents the inventory costing method
type CostMethod string

const (
	CostMethodWeightedAverage CostMethod = "weighted_average"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// CostEntry is one quantity at a known unit cost that contributes to a
// combined cost: the stock already on hand, an incoming receipt, or a
// blend component.
type CostEntry struct {
	Reference string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// TotalCost returns Quantity x UnitCost
func (e CostEntry) TotalCost() decimal.Decimal {
	return e.Quantity.Mul(e.UnitCost)
}

// CostContext provides context for cost calculation
type CostContext struct {
	// Quantity is the divisor for the unit cost. When zero the sum of the
	// entry quantities is used.
	Quantity decimal.Decimal
	// FallbackUnitCost is returned when the divisor is zero
	FallbackUnitCost decimal.Decimal
}

// CostResult contains the result of cost calculation
type CostResult struct {
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	TotalQuantity decimal.Decimal
	Method        CostMethod
}

// CostCalculationStrategy combines cost entries into a unit cost
type CostCalculationStrategy interface {
	Strategy
	// Method returns the costing method used by this strategy
	Method() CostMethod
	// CalculateCost combines the entries into a total and a unit cost
	CalculateCost(ctx context.Context, costCtx CostContext, entries []CostEntry) (CostResult, error)
}
