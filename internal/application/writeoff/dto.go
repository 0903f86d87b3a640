package writeoff

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/domain/writeoff"
	"github.com/shopspring/decimal"
)

// RecordWriteoffRequest writes stock off a lot. Exactly one of LotID and
// MaterialID names the lot; a material means its purchase lot.
type RecordWriteoffRequest struct {
	LotID        *uuid.UUID       `json:"lot_id"`
	MaterialID   *uuid.UUID       `json:"material_id"`
	WriteoffDate valueobject.Date `json:"writeoff_date"`
	Quantity     decimal.Decimal  `json:"quantity"`
	ScrapValue   decimal.Decimal  `json:"scrap_value"`
	ReasonCode   string           `json:"reason_code" binding:"required,max=20"`
	ReferenceNo  string           `json:"reference_no" binding:"max=50"`
	Notes        string           `json:"notes" binding:"max=500"`
	CreatedBy    string           `json:"-"`
}

// ReasonResponse is an entry of the reason master
type ReasonResponse struct {
	Code        string `json:"reason_code"`
	Description string `json:"reason_description"`
	Category    string `json:"category"`
}

// WriteoffResponse represents a writeoff in API responses
type WriteoffResponse struct {
	ID                uuid.UUID        `json:"id"`
	LotID             uuid.UUID        `json:"lot_id"`
	LotKey            string           `json:"lot_key"`
	MaterialID        *uuid.UUID       `json:"material_id,omitempty"`
	MaterialName      string           `json:"material_name,omitempty"`
	WriteoffDate      valueobject.Date `json:"writeoff_date"`
	Quantity          decimal.Decimal  `json:"quantity"`
	WeightedAvgCost   decimal.Decimal  `json:"weighted_avg_cost"`
	TotalCost         decimal.Decimal  `json:"total_cost"`
	ScrapValue        decimal.Decimal  `json:"scrap_value"`
	NetLoss           decimal.Decimal  `json:"net_loss"`
	ReasonCode        string           `json:"reason_code"`
	ReasonDescription string           `json:"reason_description"`
	ReferenceNo       string           `json:"reference_no,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	CreatedBy         string           `json:"created_by,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	RemainingStock    *decimal.Decimal `json:"remaining_stock,omitempty"`
}

// ToWriteoffResponse converts a domain writeoff to a response
func ToWriteoffResponse(w *writeoff.Writeoff) WriteoffResponse {
	return WriteoffResponse{
		ID:                w.ID,
		LotID:             w.LotID,
		LotKey:            w.LotKey,
		MaterialID:        w.MaterialID,
		WriteoffDate:      w.WriteoffDate,
		Quantity:          w.Quantity,
		WeightedAvgCost:   w.WeightedAvgCost,
		TotalCost:         w.TotalCost,
		ScrapValue:        w.ScrapValue,
		NetLoss:           w.NetLoss,
		ReasonCode:        w.ReasonCode,
		ReasonDescription: w.ReasonDescription,
		ReferenceNo:       w.ReferenceNo,
		Notes:             w.Notes,
		CreatedBy:         w.CreatedBy,
		CreatedAt:         w.CreatedAt,
	}
}

// HistoryFilter narrows writeoff history
type HistoryFilter struct {
	MaterialID *uuid.UUID       `form:"-"` // material_id, parsed by the handler
	ReasonCode string           `form:"reason_code"`
	From       valueobject.Date `form:"from_date"`
	To         valueobject.Date `form:"to_date"`
	Limit      int              `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int              `form:"offset" binding:"omitempty,min=0"`
}

func (f HistoryFilter) toDomain() writeoff.Filter {
	return writeoff.Filter{
		Filter:     shared.Filter{Limit: f.Limit, Offset: f.Offset, From: f.From.OrNil(), To: f.To.OrNil()},
		MaterialID: f.MaterialID,
		ReasonCode: f.ReasonCode,
	}
}

// HistoryResponse is a page of writeoffs with totals for the period
type HistoryResponse struct {
	Writeoffs []WriteoffResponse        `json:"writeoffs"`
	Summary   *report.WriteoffSummary   `json:"summary,omitempty"`
	ByReason  []report.WriteoffByReason `json:"by_reason,omitempty"`
}
