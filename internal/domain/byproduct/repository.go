package byproduct

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
)

// LotFilter narrows by-product lot listings
type LotFilter struct {
	shared.Filter
	Type          Type
	OilType       string
	AvailableOnly bool
}

// LotRepository defines the interface for by-product lot persistence
type LotRepository interface {
	Create(ctx context.Context, lot *Lot) error

	// FindAvailableForUpdate returns lots with stock left, oldest production
	// date first, locked until the transaction ends. An empty oilType matches
	// every oil type.
	FindAvailableForUpdate(ctx context.Context, t Type, oilType string) ([]*Lot, error)

	List(ctx context.Context, filter LotFilter) ([]Lot, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]Lot, error)

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, lot *Lot) error
}

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	Type    Type
	BatchID *uuid.UUID
}

// SaleRepository defines the interface for by-product sale persistence
type SaleRepository interface {
	// Create stores the sale with its allocations
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]Sale, error)
	AllocationsByBatch(ctx context.Context, batchID uuid.UUID) ([]Allocation, error)
}
