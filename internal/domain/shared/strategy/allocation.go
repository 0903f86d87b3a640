package strategy

import (
	"context"

	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllocatableLot is a stock lot that a sale can draw from
type AllocatableLot struct {
	ID             string
	BatchID        string
	ProductionDate valueobject.Date
	Remaining      decimal.Decimal
	EstimatedRate  decimal.Decimal
}

// LotAllocation is the quantity drawn from one lot
type LotAllocation struct {
	LotID           string
	BatchID         string
	Quantity        decimal.Decimal
	EstimatedRate   decimal.Decimal
	RemainingBefore decimal.Decimal
	RemainingAfter  decimal.Decimal
}

// AllocationContext provides context for lot allocation
type AllocationContext struct {
	Quantity decimal.Decimal
	Date     valueobject.Date
}

// AllocationResult contains the result of lot allocation
type AllocationResult struct {
	Allocations    []LotAllocation
	TotalAllocated decimal.Decimal
	Unallocated    decimal.Decimal
}

// LotAllocationStrategy decides which lots a requested quantity is drawn from
type LotAllocationStrategy interface {
	Strategy
	// Allocate draws allocCtx.Quantity from the lots. It never allocates more
	// than a lot's remaining quantity; any shortfall is reported as Unallocated.
	Allocate(ctx context.Context, allocCtx AllocationContext, lots []AllocatableLot) (AllocationResult, error)
}
