package byproduct

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RecordSaleRequest represents a sale of oil cake or sludge
type RecordSaleRequest struct {
	ByProductType string           `json:"byproduct_type" binding:"required"`
	OilType       string           `json:"oil_type" binding:"max=50"`
	Quantity      decimal.Decimal  `json:"quantity_sold"`
	SaleRate      decimal.Decimal  `json:"sale_rate"`
	BuyerName     string           `json:"buyer_name" binding:"required,max=200"`
	SaleDate      valueobject.Date `json:"sale_date"`
	InvoiceNumber string           `json:"invoice_number" binding:"max=50"`
	TransportCost decimal.Decimal  `json:"transport_cost"`
	Notes         string           `json:"notes" binding:"max=500"`
	CreatedBy     string           `json:"-"`
}

// AllocationResponse is the share of a sale drawn from one batch's lot
type AllocationResponse struct {
	LotID                uuid.UUID       `json:"lot_id"`
	BatchID              uuid.UUID       `json:"batch_id"`
	BatchCode            string          `json:"batch_code"`
	QuantityAllocated    decimal.Decimal `json:"quantity_allocated"`
	OriginalEstimateRate decimal.Decimal `json:"original_estimate_rate"`
	ActualSaleRate       decimal.Decimal `json:"actual_sale_rate"`
	CostAdjustmentPerKg  decimal.Decimal `json:"cost_adjustment_per_kg"`
	CostAdjustment       decimal.Decimal `json:"cost_adjustment"`
}

// BatchImpact is how a sale moved one batch's oil cost
type BatchImpact struct {
	BatchID         uuid.UUID       `json:"batch_id"`
	BatchCode       string          `json:"batch_code"`
	QuantitySold    decimal.Decimal `json:"quantity_sold"`
	OldNetOilCost   decimal.Decimal `json:"old_net_oil_cost"`
	NewNetOilCost   decimal.Decimal `json:"new_net_oil_cost"`
	OldOilCostPerKg decimal.Decimal `json:"old_oil_cost_per_kg"`
	NewOilCostPerKg decimal.Decimal `json:"new_oil_cost_per_kg"`
}

// SaleResponse represents a by-product sale in API responses
type SaleResponse struct {
	ID              uuid.UUID            `json:"id"`
	SaleDate        valueobject.Date     `json:"sale_date"`
	InvoiceNumber   string               `json:"invoice_number"`
	BuyerName       string               `json:"buyer_name"`
	ByProductType   string               `json:"byproduct_type"`
	OilType         string               `json:"oil_type,omitempty"`
	Quantity        decimal.Decimal      `json:"quantity_sold"`
	SaleRate        decimal.Decimal      `json:"sale_rate"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	TransportCost   decimal.Decimal      `json:"transport_cost"`
	NetRate         decimal.Decimal      `json:"net_rate"`
	TotalAdjustment decimal.Decimal      `json:"total_adjustment"`
	Notes           string               `json:"notes,omitempty"`
	CreatedBy       string               `json:"created_by,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	Allocations     []AllocationResponse `json:"allocations"`
	BatchesUpdated  []BatchImpact        `json:"batches_updated,omitempty"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *byproduct.Sale) SaleResponse {
	resp := SaleResponse{
		ID:              s.ID,
		SaleDate:        s.SaleDate,
		InvoiceNumber:   s.InvoiceNumber,
		BuyerName:       s.BuyerName,
		ByProductType:   s.Type.String(),
		OilType:         s.OilType,
		Quantity:        s.Quantity,
		SaleRate:        s.SaleRate,
		TotalAmount:     s.TotalAmount,
		TransportCost:   s.TransportCost,
		NetRate:         s.NetRate,
		TotalAdjustment: s.TotalAdjustment(),
		Notes:           s.Notes,
		CreatedBy:       s.CreatedBy,
		CreatedAt:       s.CreatedAt,
		Allocations:     make([]AllocationResponse, len(s.Allocations)),
	}
	for i, a := range s.Allocations {
		resp.Allocations[i] = AllocationResponse{
			LotID:                a.LotID,
			BatchID:              a.BatchID,
			BatchCode:            a.BatchCode,
			QuantityAllocated:    a.QuantityAllocated,
			OriginalEstimateRate: a.OriginalEstimateRate,
			ActualSaleRate:       a.ActualSaleRate,
			CostAdjustmentPerKg:  a.CostAdjustmentPerKg,
			CostAdjustment:       a.CostAdjustment,
		}
	}
	return resp
}

// TypeResponse describes a sellable by-product type
type TypeResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// InventoryFilter narrows the by-product stock listing
type InventoryFilter struct {
	ByProductType string `form:"byproduct_type"`
	OilType       string `form:"oil_type"`
}

// LotResponse is an unsold by-product lot
type LotResponse struct {
	ID                uuid.UUID        `json:"id"`
	BatchID           uuid.UUID        `json:"batch_id"`
	BatchCode         string           `json:"batch_code"`
	ByProductType     string           `json:"byproduct_type"`
	OilType           string           `json:"oil_type"`
	QuantityProduced  decimal.Decimal  `json:"quantity_produced"`
	QuantityRemaining decimal.Decimal  `json:"quantity_remaining"`
	EstimatedRate     decimal.Decimal  `json:"estimated_rate"`
	EstimatedValue    decimal.Decimal  `json:"estimated_value"`
	ProductionDate    valueobject.Date `json:"production_date"`
	AgeDays           int              `json:"age_days"`
	Status            string           `json:"status"`
}

// InventoryResponse is the by-product stock in FIFO order
type InventoryResponse struct {
	Lots    []LotResponse           `json:"lots"`
	Summary []report.ByProductStock `json:"summary,omitempty"`
}

// SalesFilter narrows sales history
type SalesFilter struct {
	ByProductType string           `form:"byproduct_type"`
	BatchID       *uuid.UUID       `form:"-"` // batch_id, parsed by the handler
	From          valueobject.Date `form:"from_date"`
	To            valueobject.Date `form:"to_date"`
	Limit         int              `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset        int              `form:"offset" binding:"omitempty,min=0"`
}

func (f SalesFilter) toDomain(t byproduct.Type) byproduct.SaleFilter {
	return byproduct.SaleFilter{
		Filter:  shared.Filter{Limit: f.Limit, Offset: f.Offset, From: f.From.OrNil(), To: f.To.OrNil()},
		Type:    t,
		BatchID: f.BatchID,
	}
}

// SalesHistoryResponse is a page of sales with per-type totals
type SalesHistoryResponse struct {
	Sales   []SaleResponse                 `json:"sales"`
	Summary []report.ByProductSalesSummary `json:"summary,omitempty"`
}

// ReconciliationFilter narrows the cost reconciliation report
type ReconciliationFilter struct {
	OilType string           `form:"oil_type"`
	From    valueobject.Date `form:"from_date"`
	To      valueobject.Date `form:"to_date"`
}

// ToReport converts the filter for the report repository
func (f ReconciliationFilter) ToReport() report.Filter {
	return report.Filter{From: f.From.OrNil(), To: f.To.OrNil(), OilType: f.OilType}
}
