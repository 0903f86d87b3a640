package masterdata

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialFilter narrows material listings
type MaterialFilter struct {
	Category   MaterialCategory
	ActiveOnly bool
}

// MaterialRepository defines the interface for material persistence
type MaterialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	List(ctx context.Context, filter MaterialFilter) ([]Material, error)
	Create(ctx context.Context, material *Material) error
	// UpdateCurrentCost refreshes the cached weighted-average cost
	UpdateCurrentCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]Supplier, error)
	Create(ctx context.Context, supplier *Supplier) error
}
