package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LotType classifies what an inventory lot holds
type LotType string

const (
	// LotTypeMaterial holds a purchased material such as seed or packaging
	LotTypeMaterial LotType = "MATERIAL"
	// LotTypeBulkOil holds oil: extracted, blended or bought in bulk
	LotTypeBulkOil LotType = "BULK_OIL"
)

// String returns the string representation
func (t LotType) String() string {
	return string(t)
}

// IsValid returns true if the lot type is valid
func (t LotType) IsValid() bool {
	return t == LotTypeMaterial || t == LotTypeBulkOil
}

// LotSource records how a lot's stock came to exist
type LotSource string

const (
	LotSourcePurchase   LotSource = "PURCHASE"
	LotSourceExtraction LotSource = "EXTRACTION"
	LotSourceBlended    LotSource = "BLENDED"
)

// String returns the string representation
func (s LotSource) String() string {
	return string(s)
}

// IsValid returns true if the lot source is valid
func (s LotSource) IsValid() bool {
	switch s {
	case LotSourcePurchase, LotSourceExtraction, LotSourceBlended:
		return true
	default:
		return false
	}
}

// MaterialLotKey is the lot key of a purchased material
func MaterialLotKey(materialID uuid.UUID) string {
	return "MATERIAL:" + materialID.String()
}

// ExtractionLotKey is the lot key of the oil extracted for an oil type.
// All batches of one oil type feed the same lot.
func ExtractionLotKey(oilType string) string {
	return "EXTRACTION:" + NormalizeOilType(oilType)
}

// BlendLotKey is the lot key of a blend's output oil
func BlendLotKey(blendID uuid.UUID) string {
	return "BLEND:" + blendID.String()
}

// NormalizeOilType upper-cases and trims an oil type name
func NormalizeOilType(oilType string) string {
	return strings.ToUpper(strings.TrimSpace(oilType))
}

// LotSpec describes a lot to create when a receipt targets a key that does not exist yet
type LotSpec struct {
	Key               string
	Type              LotType
	Source            LotSource
	MaterialID        *uuid.UUID
	OilType           string
	SourceReferenceID *uuid.UUID
	TraceableCode     string
}

// Validate checks the lot spec
func (s LotSpec) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return shared.NewValidationError("lot key is required")
	}
	if !s.Type.IsValid() {
		return shared.NewValidationError("invalid lot type: %s", s.Type)
	}
	if !s.Source.IsValid() {
		return shared.NewValidationError("invalid lot source: %s", s.Source)
	}
	return nil
}

// InventoryLot is one weighted-average inventory position, identified by
// its lot key. It is the aggregate root of the ledger.
//
// ClosingStock always equals OpeningStock + Purchases - Consumption.
type InventoryLot struct {
	shared.BaseAggregateRoot
	LotKey            string
	LotType           LotType
	Source            LotSource
	MaterialID        *uuid.UUID
	OilType           string
	SourceReferenceID *uuid.UUID
	TraceableCode     string
	OpeningStock      decimal.Decimal
	Purchases         decimal.Decimal
	Consumption       decimal.Decimal
	ClosingStock      decimal.Decimal
	WeightedAvgCost   decimal.Decimal
	LastUpdated       valueobject.Date
}

// NewInventoryLot creates an empty lot from spec
func NewInventoryLot(spec LotSpec, date valueobject.Date) (*InventoryLot, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &InventoryLot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LotKey:            spec.Key,
		LotType:           spec.Type,
		Source:            spec.Source,
		MaterialID:        spec.MaterialID,
		OilType:           NormalizeOilType(spec.OilType),
		SourceReferenceID: spec.SourceReferenceID,
		TraceableCode:     spec.TraceableCode,
		OpeningStock:      decimal.Zero,
		Purchases:         decimal.Zero,
		Consumption:       decimal.Zero,
		ClosingStock:      decimal.Zero,
		WeightedAvgCost:   decimal.Zero,
		LastUpdated:       date,
	}, nil
}

// StockValue returns ClosingStock x WeightedAvgCost
func (l *InventoryLot) StockValue() decimal.Decimal {
	return l.ClosingStock.Mul(l.WeightedAvgCost)
}

// ApplyReceipt adds quantity at unitCost and installs newAvg as the lot's
// weighted average. The caller computes newAvg with a cost strategy.
func (l *InventoryLot) ApplyReceipt(quantity, unitCost, newAvg decimal.Decimal, date valueobject.Date) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("receipt quantity must be positive, got %s", quantity)
	}
	if unitCost.IsNegative() {
		return shared.NewValidationError("unit cost cannot be negative, got %s", unitCost)
	}
	if newAvg.IsNegative() {
		return shared.NewValidationError("weighted average cost cannot be negative, got %s", newAvg)
	}

	oldAvg := l.WeightedAvgCost
	l.Purchases = l.Purchases.Add(quantity)
	l.ClosingStock = l.ClosingStock.Add(quantity)
	l.WeightedAvgCost = newAvg
	l.LastUpdated = date
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotReceivedEvent(l, quantity, unitCost, oldAvg))
	return nil
}

// ApplyConsumption removes quantity; the weighted average is unchanged
func (l *InventoryLot) ApplyConsumption(quantity decimal.Decimal, date valueobject.Date) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("consumption quantity must be positive, got %s", quantity)
	}
	if quantity.GreaterThan(l.ClosingStock) {
		return shared.NewInsufficientStockError(fmt.Sprintf("lot %s", l.LotKey), l.ClosingStock, quantity)
	}

	l.Consumption = l.Consumption.Add(quantity)
	l.ClosingStock = l.ClosingStock.Sub(quantity)
	l.LastUpdated = date
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotConsumedEvent(l, quantity))
	return nil
}

// IsBalanced reports whether the stock identity holds
func (l *InventoryLot) IsBalanced() bool {
	return l.OpeningStock.Add(l.Purchases).Sub(l.Consumption).Equal(l.ClosingStock)
}
