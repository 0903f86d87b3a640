package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
)

// LotFilter narrows lot listings
type LotFilter struct {
	shared.Filter
	LotType    LotType
	Source     LotSource
	OilType    string
	MaterialID *uuid.UUID
	InStock    bool
}

// LotRepository defines the interface for inventory lot persistence
type LotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryLot, error)

	// FindByKey finds a lot by its unique lot key
	FindByKey(ctx context.Context, key string) (*InventoryLot, error)

	// FindByIDForUpdate finds a lot and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryLot, error)

	// FindByKeyForUpdate finds a lot by key and locks its row until the transaction ends
	FindByKeyForUpdate(ctx context.Context, key string) (*InventoryLot, error)

	// List lists lots matching the filter
	List(ctx context.Context, filter LotFilter) ([]InventoryLot, error)

	// Create inserts a new lot
	Create(ctx context.Context, lot *InventoryLot) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, lot *InventoryLot) error
}

// MovementRepository defines the interface for stock movement persistence
type MovementRepository interface {
	// Create appends a movement
	Create(ctx context.Context, movement *StockMovement) error

	// ListByLot lists movements of a lot, newest first
	ListByLot(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
}
