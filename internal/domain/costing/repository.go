package costing

import (
	"context"

	"github.com/google/uuid"
)

// ElementFilter narrows cost element listings
type ElementFilter struct {
	Stage      Applicability
	ActiveOnly bool
}

// CostElementRepository defines the interface for cost element persistence
type CostElementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CostElement, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]CostElement, error)
	List(ctx context.Context, filter ElementFilter) ([]CostElement, error)
	Create(ctx context.Context, element *CostElement) error
	Update(ctx context.Context, element *CostElement) error
}

// TimeEntryRepository stores measured process times
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]TimeEntry, error)
}

// OverrideLogRepository is the append-only audit of rate overrides
type OverrideLogRepository interface {
	Create(ctx context.Context, entry *OverrideEntry) error
	ListByRecord(ctx context.Context, module string, recordID uuid.UUID) ([]OverrideEntry, error)
}
