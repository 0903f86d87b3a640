package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementReceipt     MovementType = "RECEIPT"
	MovementConsumption MovementType = "CONSUMPTION"
)

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

// IsIncrease returns true if the movement adds stock
func (t MovementType) IsIncrease() bool {
	return t == MovementReceipt
}

// ReferenceType identifies the business document behind a movement
type ReferenceType string

const (
	ReferencePurchase ReferenceType = "PURCHASE"
	ReferenceBatch    ReferenceType = "BATCH"
	ReferenceBlend    ReferenceType = "BLEND"
	ReferenceWriteoff ReferenceType = "WRITEOFF"
	ReferenceManual   ReferenceType = "MANUAL"
)

// String returns the string representation
func (t ReferenceType) String() string {
	return string(t)
}

// IsValid returns true if the reference type is valid
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferencePurchase, ReferenceBatch, ReferenceBlend, ReferenceWriteoff, ReferenceManual:
		return true
	default:
		return false
	}
}

// Reference points a movement at the document that caused it
type Reference struct {
	Type ReferenceType
	ID   *uuid.UUID
	Code string
}

// StockMovement is the immutable audit record of one Receive or Consume.
// Movements are never updated or deleted.
type StockMovement struct {
	ID            uuid.UUID
	LotID         uuid.UUID
	LotKey        string
	MovementType  MovementType
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	AvgCostBefore decimal.Decimal
	AvgCostAfter  decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	ReferenceCode string
	MovementDate  valueobject.Date
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

func newMovement(
	lot *InventoryLot,
	movementType MovementType,
	quantity, unitCost, balanceBefore, avgBefore decimal.Decimal,
	date valueobject.Date,
	ref Reference,
	notes, createdBy string,
) *StockMovement {
	return &StockMovement{
		ID:            uuid.New(),
		LotID:         lot.ID,
		LotKey:        lot.LotKey,
		MovementType:  movementType,
		Quantity:      quantity,
		UnitCost:      unitCost,
		TotalCost:     quantity.Mul(unitCost),
		BalanceBefore: balanceBefore,
		BalanceAfter:  lot.ClosingStock,
		AvgCostBefore: avgBefore,
		AvgCostAfter:  lot.WeightedAvgCost,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		ReferenceCode: ref.Code,
		MovementDate:  date,
		Notes:         notes,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}
}
