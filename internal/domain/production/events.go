package production

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBatch = "Batch"

// Event type constants
const (
	EventTypeBatchProduced     = "BatchProduced"
	EventTypeBatchCostAdjusted = "BatchCostAdjusted"
)

// BatchProducedEvent is raised when a batch is recorded
type BatchProducedEvent struct {
	shared.BaseDomainEvent
	BatchID      uuid.UUID       `json:"batch_id"`
	BatchCode    string          `json:"batch_code"`
	OilType      string          `json:"oil_type"`
	OilYield     decimal.Decimal `json:"oil_yield"`
	NetOilCost   decimal.Decimal `json:"net_oil_cost"`
	OilCostPerKg decimal.Decimal `json:"oil_cost_per_kg"`
}

// NewBatchProducedEvent creates a new BatchProducedEvent
func NewBatchProducedEvent(b *Batch) *BatchProducedEvent {
	return &BatchProducedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchProduced, AggregateTypeBatch, b.ID),
		BatchID:         b.ID,
		BatchCode:       b.BatchCode,
		OilType:         b.OilType,
		OilYield:        b.OilYield,
		NetOilCost:      b.NetOilCost,
		OilCostPerKg:    b.OilCostPerKg,
	}
}

// BatchCostAdjustedEvent is raised when a by-product sale changes a batch's net oil cost
type BatchCostAdjustedEvent struct {
	shared.BaseDomainEvent
	BatchID       uuid.UUID       `json:"batch_id"`
	BatchCode     string          `json:"batch_code"`
	ByProduct     byproduct.Type  `json:"byproduct_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	SaleRate      decimal.Decimal `json:"sale_rate"`
	OldNetOilCost decimal.Decimal `json:"old_net_oil_cost"`
	NewNetOilCost decimal.Decimal `json:"new_net_oil_cost"`
	OilCostPerKg  decimal.Decimal `json:"oil_cost_per_kg"`
}

// NewBatchCostAdjustedEvent creates a new BatchCostAdjustedEvent
func NewBatchCostAdjustedEvent(b *Batch, t byproduct.Type, quantity, rate, oldNet decimal.Decimal) *BatchCostAdjustedEvent {
	return &BatchCostAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCostAdjusted, AggregateTypeBatch, b.ID),
		BatchID:         b.ID,
		BatchCode:       b.BatchCode,
		ByProduct:       t,
		Quantity:        quantity,
		SaleRate:        rate,
		OldNetOilCost:   oldNet,
		NewNetOilCost:   b.NetOilCost,
		OilCostPerKg:    b.OilCostPerKg,
	}
}
