package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
)

// Filter narrows batch listings
type Filter struct {
	shared.Filter
	OilType string
}

// Repository defines the interface for batch persistence
type Repository interface {
	// Create stores the batch with its cost details
	Create(ctx context.Context, batch *Batch) error
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDForUpdate loads the batch and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter Filter) ([]Batch, error)

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, batch *Batch) error
}
