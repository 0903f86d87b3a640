package uow

import (
	"context"

	"github.com/oilmill/backend/internal/domain/shared"
)

// Events gathers the domain events raised inside a unit of work so they can
// be published once the transaction has committed.
type Events struct {
	pending []shared.DomainEvent
}

// Collect takes the events of each aggregate and clears them
func (e *Events) Collect(aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		e.pending = append(e.pending, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
}

// Len returns the number of collected events
func (e *Events) Len() int {
	return len(e.pending)
}

// Publish hands the collected events to publisher. A nil publisher drops them.
func (e *Events) Publish(ctx context.Context, publisher shared.EventPublisher) {
	if publisher == nil || len(e.pending) == 0 {
		return
	}
	// Errors are logged by the bus; the transaction is already committed.
	_ = publisher.Publish(ctx, e.pending...)
	e.pending = nil
}
