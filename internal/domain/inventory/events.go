package inventory

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInventoryLot = "InventoryLot"

// Event type constants
const (
	EventTypeLotReceived = "LotReceived"
	EventTypeLotConsumed = "LotConsumed"
)

// LotReceivedEvent is raised when stock is received into a lot
type LotReceivedEvent struct {
	shared.BaseDomainEvent
	LotID        uuid.UUID       `json:"lot_id"`
	LotKey       string          `json:"lot_key"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	OldAvgCost   decimal.Decimal `json:"old_avg_cost"`
	NewAvgCost   decimal.Decimal `json:"new_avg_cost"`
	ClosingStock decimal.Decimal `json:"closing_stock"`
}

// NewLotReceivedEvent creates a new LotReceivedEvent
func NewLotReceivedEvent(lot *InventoryLot, quantity, unitCost, oldAvg decimal.Decimal) *LotReceivedEvent {
	return &LotReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotReceived, AggregateTypeInventoryLot, lot.ID),
		LotID:           lot.ID,
		LotKey:          lot.LotKey,
		Quantity:        quantity,
		UnitCost:        unitCost,
		OldAvgCost:      oldAvg,
		NewAvgCost:      lot.WeightedAvgCost,
		ClosingStock:    lot.ClosingStock,
	}
}

// LotConsumedEvent is raised when stock is consumed from a lot
type LotConsumedEvent struct {
	shared.BaseDomainEvent
	LotID        uuid.UUID       `json:"lot_id"`
	LotKey       string          `json:"lot_key"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
	ClosingStock decimal.Decimal `json:"closing_stock"`
}

// NewLotConsumedEvent creates a new LotConsumedEvent
func NewLotConsumedEvent(lot *InventoryLot, quantity decimal.Decimal) *LotConsumedEvent {
	return &LotConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotConsumed, AggregateTypeInventoryLot, lot.ID),
		LotID:           lot.ID,
		LotKey:          lot.LotKey,
		Quantity:        quantity,
		AvgCost:         lot.WeightedAvgCost,
		ClosingStock:    lot.ClosingStock,
	}
}
