package purchase

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
)

// Filter narrows purchase history
type Filter struct {
	shared.Filter
	MaterialID *uuid.UUID
	SupplierID *uuid.UUID
}

// Repository defines the interface for purchase persistence
type Repository interface {
	// Create inserts a purchase with its items
	Create(ctx context.Context, p *Purchase) error

	// FindByID loads a purchase with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)

	// List lists purchases with their items, newest first
	List(ctx context.Context, filter Filter) ([]Purchase, error)

	// LatestTraceableCode returns the traceable code of the most recent
	// purchase line of a material, or ErrNotFound
	LatestTraceableCode(ctx context.Context, materialID uuid.UUID) (string, error)
}
