package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LotResponse represents an inventory lot in API responses
type LotResponse struct {
	ID                uuid.UUID        `json:"id"`
	LotKey            string           `json:"lot_key"`
	LotType           string           `json:"lot_type"`
	Source            string           `json:"source_type"`
	MaterialID        *uuid.UUID       `json:"material_id,omitempty"`
	OilType           string           `json:"oil_type,omitempty"`
	SourceReferenceID *uuid.UUID       `json:"source_reference_id,omitempty"`
	TraceableCode     string           `json:"traceable_code,omitempty"`
	OpeningStock      decimal.Decimal  `json:"opening_stock"`
	Purchases         decimal.Decimal  `json:"purchases"`
	Consumption       decimal.Decimal  `json:"consumption"`
	ClosingStock      decimal.Decimal  `json:"closing_stock"`
	WeightedAvgCost   decimal.Decimal  `json:"weighted_avg_cost"`
	StockValue        decimal.Decimal  `json:"stock_value"`
	LastUpdated       valueobject.Date `json:"last_updated"`
	Version           int              `json:"version"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ToLotResponse converts a domain lot to a response
func ToLotResponse(l *inventory.InventoryLot) LotResponse {
	return LotResponse{
		ID:                l.ID,
		LotKey:            l.LotKey,
		LotType:           l.LotType.String(),
		Source:            l.Source.String(),
		MaterialID:        l.MaterialID,
		OilType:           l.OilType,
		SourceReferenceID: l.SourceReferenceID,
		TraceableCode:     l.TraceableCode,
		OpeningStock:      l.OpeningStock,
		Purchases:         l.Purchases,
		Consumption:       l.Consumption,
		ClosingStock:      l.ClosingStock,
		WeightedAvgCost:   l.WeightedAvgCost,
		StockValue:        l.StockValue(),
		LastUpdated:       l.LastUpdated,
		Version:           l.Version,
		UpdatedAt:         l.UpdatedAt,
	}
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID            uuid.UUID        `json:"id"`
	LotID         uuid.UUID        `json:"lot_id"`
	LotKey        string           `json:"lot_key"`
	MovementType  string           `json:"movement_type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      decimal.Decimal  `json:"unit_cost"`
	TotalCost     decimal.Decimal  `json:"total_cost"`
	BalanceBefore decimal.Decimal  `json:"balance_before"`
	BalanceAfter  decimal.Decimal  `json:"balance_after"`
	AvgCostBefore decimal.Decimal  `json:"avg_cost_before"`
	AvgCostAfter  decimal.Decimal  `json:"avg_cost_after"`
	ReferenceType string           `json:"reference_type"`
	ReferenceID   *uuid.UUID       `json:"reference_id,omitempty"`
	ReferenceCode string           `json:"reference_code,omitempty"`
	MovementDate  valueobject.Date `json:"movement_date"`
	Notes         string           `json:"notes,omitempty"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToMovementResponse converts a domain movement to a response
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		LotID:         m.LotID,
		LotKey:        m.LotKey,
		MovementType:  m.MovementType.String(),
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		AvgCostBefore: m.AvgCostBefore,
		AvgCostAfter:  m.AvgCostAfter,
		ReferenceType: m.ReferenceType.String(),
		ReferenceID:   m.ReferenceID,
		ReferenceCode: m.ReferenceCode,
		MovementDate:  m.MovementDate,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// LedgerEntryResponse is the outcome of a manual receipt or consumption
type LedgerEntryResponse struct {
	Lot      LotResponse      `json:"lot"`
	Movement MovementResponse `json:"movement"`
	Created  bool             `json:"created"`
}

func toEntryResponse(e *inventory.Entry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		Lot:      ToLotResponse(e.Lot),
		Movement: ToMovementResponse(e.Movement),
		Created:  e.Created,
	}
}

// LotListFilter narrows the lot listing
type LotListFilter struct {
	LotType    string     `form:"lot_type" binding:"omitempty,oneof=MATERIAL BULK_OIL"`
	Source     string     `form:"source_type" binding:"omitempty,oneof=PURCHASE EXTRACTION BLENDED"`
	OilType    string     `form:"oil_type"`
	MaterialID *uuid.UUID `form:"-"` // material_id, parsed by the handler
	InStock    bool       `form:"in_stock"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int        `form:"offset" binding:"omitempty,min=0"`
}

// ReceiveRequest adds stock by hand, for opening balances and corrections.
// Exactly one of LotID, MaterialID or OilType selects the lot.
type ReceiveRequest struct {
	LotID      *uuid.UUID       `json:"lot_id"`
	MaterialID *uuid.UUID       `json:"material_id"`
	OilType    string           `json:"oil_type"`
	Quantity   decimal.Decimal  `json:"quantity"`
	UnitCost   decimal.Decimal  `json:"unit_cost"`
	Date       valueobject.Date `json:"date"`
	Notes      string           `json:"notes" binding:"max=500"`
	CreatedBy  string           `json:"-"`
}

// ConsumeRequest removes stock by hand from a lot
type ConsumeRequest struct {
	LotID     uuid.UUID        `json:"lot_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Date      valueobject.Date `json:"date"`
	Notes     string           `json:"notes" binding:"max=500"`
	CreatedBy string           `json:"-"`
}
