package blending

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
)

// Filter narrows blend listings
type Filter struct {
	shared.Filter
	OilType string
}

// Repository defines the interface for blend persistence
type Repository interface {
	// Create stores the blend with its components
	Create(ctx context.Context, blend *Blend) error
	FindByID(ctx context.Context, id uuid.UUID) (*Blend, error)
	List(ctx context.Context, filter Filter) ([]Blend, error)
	// SetLot records the lot the blend's output was received into
	SetLot(ctx context.Context, blendID, lotID uuid.UUID) error
}
