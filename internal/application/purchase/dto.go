package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/purchase"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RecordPurchaseRequest represents a supplier invoice to post
type RecordPurchaseRequest struct {
	SupplierID      uuid.UUID             `json:"supplier_id" binding:"required"`
	InvoiceRef      string                `json:"invoice_ref" binding:"required,max=50"`
	PurchaseDate    valueobject.Date      `json:"purchase_date"`
	TransportCost   decimal.Decimal       `json:"transport_cost"`
	HandlingCharges decimal.Decimal       `json:"loading_charges"`
	Items           []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes           string                `json:"notes" binding:"max=500"`
	CreatedBy       string                `json:"-"`
}

// PurchaseItemRequest is one invoice line. TaxRate defaults to the
// material's GST rate when omitted.
type PurchaseItemRequest struct {
	MaterialID      uuid.UUID        `json:"material_id" binding:"required"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Rate            decimal.Decimal  `json:"rate"`
	TaxRate         *decimal.Decimal `json:"gst_rate"`
	TransportCost   decimal.Decimal  `json:"transport_charges"`
	HandlingCharges decimal.Decimal  `json:"handling_charges"`
}

// HistoryFilter narrows purchase history
type HistoryFilter struct {
	MaterialID *uuid.UUID       `form:"-"` // material_id, parsed by the handler
	SupplierID *uuid.UUID       `form:"-"` // supplier_id, parsed by the handler
	From       valueobject.Date `form:"from_date"`
	To         valueobject.Date `form:"to_date"`
	Limit      int              `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int              `form:"offset" binding:"omitempty,min=0"`
}

func (f HistoryFilter) toDomain() purchase.Filter {
	return purchase.Filter{
		Filter:     shared.Filter{Limit: f.Limit, Offset: f.Offset, From: f.From.OrNil(), To: f.To.OrNil()},
		MaterialID: f.MaterialID,
		SupplierID: f.SupplierID,
	}
}

// ItemResponse represents a costed purchase line
type ItemResponse struct {
	ID                 uuid.UUID        `json:"id"`
	MaterialID         uuid.UUID        `json:"material_id"`
	MaterialName       string           `json:"material_name,omitempty"`
	Quantity           decimal.Decimal  `json:"quantity"`
	Rate               decimal.Decimal  `json:"rate"`
	Amount             decimal.Decimal  `json:"amount"`
	TaxRate            decimal.Decimal  `json:"gst_rate"`
	TransportCost      decimal.Decimal  `json:"transport_charges"`
	HandlingCharges    decimal.Decimal  `json:"handling_charges"`
	AllocatedTransport decimal.Decimal  `json:"allocated_transport"`
	AllocatedHandling  decimal.Decimal  `json:"allocated_handling"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	TaxAmount          decimal.Decimal  `json:"gst_amount"`
	TotalCost          decimal.Decimal  `json:"total_cost"`
	LandedCostPerUnit  decimal.Decimal  `json:"landed_cost_per_unit"`
	TraceableCode      string           `json:"traceable_code,omitempty"`
	NewWeightedAvgCost *decimal.Decimal `json:"new_weighted_avg_cost,omitempty"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID              uuid.UUID        `json:"id"`
	SupplierID      uuid.UUID        `json:"supplier_id"`
	SupplierName    string           `json:"supplier_name,omitempty"`
	InvoiceRef      string           `json:"invoice_ref"`
	PurchaseDate    valueobject.Date `json:"purchase_date"`
	TransportCost   decimal.Decimal  `json:"transport_cost"`
	HandlingCharges decimal.Decimal  `json:"loading_charges"`
	SubtotalAmount  decimal.Decimal  `json:"subtotal_amount"`
	TaxAmount       decimal.Decimal  `json:"gst_amount"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
	Notes           string           `json:"notes,omitempty"`
	CreatedBy       string           `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Items           []ItemResponse   `json:"items"`
}

// ToPurchaseResponse converts a domain purchase to a response
func ToPurchaseResponse(p *purchase.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:              p.ID,
		SupplierID:      p.SupplierID,
		InvoiceRef:      p.InvoiceRef,
		PurchaseDate:    p.PurchaseDate,
		TransportCost:   p.TransportCost,
		HandlingCharges: p.HandlingCharges,
		SubtotalAmount:  p.SubtotalAmount,
		TaxAmount:       p.TaxAmount,
		TotalCost:       p.TotalCost,
		Notes:           p.Notes,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		Items:           make([]ItemResponse, len(p.Items)),
	}
	for i, item := range p.Items {
		resp.Items[i] = ItemResponse{
			ID:                 item.ID,
			MaterialID:         item.MaterialID,
			Quantity:           item.Quantity,
			Rate:               item.Rate,
			Amount:             item.Amount,
			TaxRate:            item.TaxRate,
			TransportCost:      item.Transport,
			HandlingCharges:    item.Handling,
			AllocatedTransport: item.AllocatedTransport,
			AllocatedHandling:  item.AllocatedHandling,
			Subtotal:           item.Subtotal,
			TaxAmount:          item.TaxAmount,
			TotalCost:          item.TotalCost,
			LandedCostPerUnit:  item.LandedCostPerUnit,
			TraceableCode:      item.TraceableCode,
		}
	}
	return resp
}

// HistoryResponse is a page of purchases with totals for the whole filter
type HistoryResponse struct {
	Purchases []PurchaseResponse      `json:"purchases"`
	Summary   *report.PurchaseSummary `json:"summary"`
}
