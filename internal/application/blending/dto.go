package blending

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/blending"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateBlendRequest mixes bulk oil lots into a new lot
type CreateBlendRequest struct {
	Description   string             `json:"blend_description" binding:"required,max=100"`
	BlendDate     valueobject.Date   `json:"blend_date"`
	TotalQuantity decimal.Decimal    `json:"total_quantity"`
	Components    []ComponentRequest `json:"components" binding:"required,min=2,dive"`
	CreatedBy     string             `json:"-"`
}

// ComponentRequest is one source lot and its percentage of the blend
type ComponentRequest struct {
	SourceLotID uuid.UUID       `json:"source_lot_id" binding:"required"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// ComponentResponse is a priced component of a blend
type ComponentResponse struct {
	SourceLotID       uuid.UUID       `json:"source_lot_id"`
	SourceType        string          `json:"source_type"`
	SourceReferenceID *uuid.UUID      `json:"source_reference_id,omitempty"`
	OilType           string          `json:"oil_type"`
	TraceableCode     string          `json:"traceable_code,omitempty"`
	Percentage        decimal.Decimal `json:"percentage"`
	QuantityUsed      decimal.Decimal `json:"quantity_used"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	TotalCost         decimal.Decimal `json:"total_cost"`
}

// BlendResponse represents a blend in API responses
type BlendResponse struct {
	ID              uuid.UUID           `json:"id"`
	BlendCode       string              `json:"blend_code"`
	TraceableCode   string              `json:"traceable_code"`
	Description     string              `json:"blend_description"`
	BlendDate       valueobject.Date    `json:"blend_date"`
	OilType         string              `json:"oil_type"`
	TotalQuantity   decimal.Decimal     `json:"total_quantity"`
	WeightedAvgCost decimal.Decimal     `json:"weighted_avg_cost"`
	TotalCost       decimal.Decimal     `json:"total_cost"`
	LotID           *uuid.UUID          `json:"lot_id,omitempty"`
	Components      []ComponentResponse `json:"components"`
	CreatedBy       string              `json:"created_by,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ToBlendResponse converts a domain blend to a response
func ToBlendResponse(b *blending.Blend) BlendResponse {
	resp := BlendResponse{
		ID:              b.ID,
		BlendCode:       b.BlendCode,
		TraceableCode:   b.TraceableCode,
		Description:     b.Description,
		BlendDate:       b.BlendDate,
		OilType:         b.OilType,
		TotalQuantity:   b.TotalQuantity,
		WeightedAvgCost: b.WeightedAvgCost,
		TotalCost:       b.TotalCost(),
		LotID:           b.LotID,
		Components:      make([]ComponentResponse, len(b.Components)),
		CreatedBy:       b.CreatedBy,
		CreatedAt:       b.CreatedAt,
	}
	for i, c := range b.Components {
		resp.Components[i] = ComponentResponse{
			SourceLotID:       c.SourceLotID,
			SourceType:        c.SourceType.String(),
			SourceReferenceID: c.SourceReferenceID,
			OilType:           c.OilType,
			TraceableCode:     c.TraceableCode,
			Percentage:        c.Percentage,
			QuantityUsed:      c.QuantityUsed,
			CostPerUnit:       c.CostPerUnit,
			TotalCost:         c.TotalCost,
		}
	}
	return resp
}

// SourceLotResponse is a bulk oil lot that can feed a blend
type SourceLotResponse struct {
	LotID             uuid.UUID        `json:"lot_id"`
	LotKey            string           `json:"lot_key"`
	SourceType        string           `json:"source_type"`
	SourceReferenceID *uuid.UUID       `json:"source_reference_id,omitempty"`
	OilType           string           `json:"oil_type"`
	TraceableCode     string           `json:"traceable_code,omitempty"`
	AvailableQuantity decimal.Decimal  `json:"available_quantity"`
	CostPerKg         decimal.Decimal  `json:"cost_per_kg"`
	LastUpdated       valueobject.Date `json:"last_updated"`
}

func toSourceLotResponse(l *inventory.InventoryLot) SourceLotResponse {
	return SourceLotResponse{
		LotID:             l.ID,
		LotKey:            l.LotKey,
		SourceType:        l.Source.String(),
		SourceReferenceID: l.SourceReferenceID,
		OilType:           l.OilType,
		TraceableCode:     l.TraceableCode,
		AvailableQuantity: l.ClosingStock,
		CostPerKg:         l.WeightedAvgCost,
		LastUpdated:       l.LastUpdated,
	}
}

// HistoryFilter narrows blend history
type HistoryFilter struct {
	OilType string           `form:"oil_type"`
	From    valueobject.Date `form:"from_date"`
	To      valueobject.Date `form:"to_date"`
	Limit   int              `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int              `form:"offset" binding:"omitempty,min=0"`
}

func (f HistoryFilter) toDomain() blending.Filter {
	return blending.Filter{
		Filter:  shared.Filter{Limit: f.Limit, Offset: f.Offset, From: f.From.OrNil(), To: f.To.OrNil()},
		OilType: f.OilType,
	}
}

// HistoryResponse is a page of blends with totals for the whole filter
type HistoryResponse struct {
	Blends  []BlendResponse      `json:"blends"`
	Summary *report.BlendSummary `json:"summary,omitempty"`
}
