// Package byproduct tracks the oil cake and sludge produced by extraction
// batches and sells them first-in first-out, feeding each sale's realized
// price back to the batch that produced the goods.
package byproduct

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Type is the kind of by-product
type Type string

const (
	TypeOilCake Type = "OIL_CAKE"
	TypeSludge  Type = "SLUDGE"
)

// AllTypes lists the sellable by-product types
var AllTypes = []Type{TypeOilCake, TypeSludge}

// ParseType accepts the canonical names and the lower-case forms used by clients
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OIL_CAKE", "OILCAKE", "CAKE":
		return TypeOilCake, nil
	case "SLUDGE":
		return TypeSludge, nil
	default:
		return "", shared.NewValidationError("invalid by-product type: %q", s)
	}
}

// String returns the string representation
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the type is known
func (t Type) IsValid() bool {
	return t == TypeOilCake || t == TypeSludge
}

// Label is the human readable name
func (t Type) Label() string {
	if t == TypeOilCake {
		return "Oil Cake"
	}
	return "Sludge"
}

// LotStatus is the sale state of a by-product lot
type LotStatus string

const (
	StatusProduced      LotStatus = "PRODUCED"
	StatusPartiallySold LotStatus = "PARTIALLY_SOLD"
	StatusFullySold     LotStatus = "FULLY_SOLD"
)

// Lot is the cake or sludge output of one batch, valued at the batch's
// estimated rate until it is sold. QuantityRemaining only ever decreases.
type Lot struct {
	shared.BaseAggregateRoot
	BatchID           uuid.UUID
	BatchCode         string
	Type              Type
	OilType           string
	QuantityProduced  decimal.Decimal
	QuantityRemaining decimal.Decimal
	EstimatedRate     decimal.Decimal
	ProductionDate    valueobject.Date
	Status            LotStatus
}

// NewLot creates an unsold by-product lot
func NewLot(batchID uuid.UUID, batchCode string, t Type, oilType string, quantity, estimatedRate decimal.Decimal, date valueobject.Date) (*Lot, error) {
	if !t.IsValid() {
		return nil, shared.NewValidationError("invalid by-product type: %s", t)
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("by-product quantity must be positive, got %s", quantity)
	}
	if estimatedRate.IsNegative() {
		return nil, shared.NewValidationError("estimated rate cannot be negative")
	}
	if date.IsZero() {
		return nil, shared.NewValidationError("production date is required")
	}
	return &Lot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchID:           batchID,
		BatchCode:         batchCode,
		Type:              t,
		OilType:           strings.TrimSpace(oilType),
		QuantityProduced:  quantity,
		QuantityRemaining: quantity,
		EstimatedRate:     estimatedRate,
		ProductionDate:    date,
		Status:            StatusProduced,
	}, nil
}

// Draw removes sold quantity from the lot and moves its status forward
func (l *Lot) Draw(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("allocated quantity must be positive, got %s", quantity)
	}
	if quantity.GreaterThan(l.QuantityRemaining) {
		return shared.NewInsufficientStockError("by-product lot "+l.BatchCode, l.QuantityRemaining, quantity)
	}
	l.QuantityRemaining = l.QuantityRemaining.Sub(quantity)
	if l.QuantityRemaining.IsZero() {
		l.Status = StatusFullySold
	} else {
		l.Status = StatusPartiallySold
	}
	l.Touch()
	l.IncrementVersion()
	return nil
}

// QuantitySold is produced minus remaining
func (l *Lot) QuantitySold() decimal.Decimal {
	return l.QuantityProduced.Sub(l.QuantityRemaining)
}

// AgeDays is the number of days since production as of date
func (l *Lot) AgeDays(asOf valueobject.Date) int {
	return asOf.DaysSince(l.ProductionDate)
}
