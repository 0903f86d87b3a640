package event

import (
	"context"

	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes every committed domain event to the log so cost
// changes can be reconstructed from log history.
type AuditLogHandler struct{}

// NewAuditLogHandler creates an AuditLogHandler
func NewAuditLogHandler() *AuditLogHandler {
	return &AuditLogHandler{}
}

// EventTypes returns nil: the handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with its payload
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	if adjusted, ok := event.(*production.BatchCostAdjustedEvent); ok {
		fields = append(fields,
			zap.String("batch_code", adjusted.BatchCode),
			zap.String("old_net_oil_cost", adjusted.OldNetOilCost.String()),
			zap.String("new_net_oil_cost", adjusted.NewNetOilCost.String()),
			zap.String("oil_cost_per_kg", adjusted.OilCostPerKg.String()),
		)
	} else {
		fields = append(fields, zap.Any("payload", event))
	}

	logger.L(ctx).Info("domain event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
