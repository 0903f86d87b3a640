package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RecordBatchRequest captures one extraction batch. Estimated rates left
// empty fall back to the current rate for the oil type; a missing seed cost
// is the consumed quantity at the seed lot's weighted average.
type RecordBatchRequest struct {
	OilType             string               `json:"oil_type" binding:"required,max=50"`
	Description         string               `json:"batch_description" binding:"required,max=100"`
	ProductionDate      valueobject.Date     `json:"production_date"`
	SeedMaterialID      uuid.UUID            `json:"seed_material_id" binding:"required"`
	SeedPurchaseCode    string               `json:"seed_purchase_code" binding:"max=50"`
	SeedQtyBeforeDrying decimal.Decimal      `json:"seed_quantity_before_drying"`
	SeedQtyAfterDrying  decimal.Decimal      `json:"seed_quantity_after_drying"`
	SeedCostTotal       *decimal.Decimal     `json:"seed_cost_total"`
	OilYield            decimal.Decimal      `json:"oil_yield"`
	CakeYield           decimal.Decimal      `json:"cake_yield"`
	SludgeYield         decimal.Decimal      `json:"sludge_yield"`
	CakeEstimatedRate   *decimal.Decimal     `json:"cake_estimated_rate"`
	SludgeEstimatedRate *decimal.Decimal     `json:"sludge_estimated_rate"`
	CrushingHours       decimal.Decimal      `json:"crushing_hours"`
	CostDetails         []CostDetailRequest  `json:"cost_details" binding:"dive"`
	TimeTracking        *TimeTrackingRequest `json:"time_tracking"`
	CreatedBy           string               `json:"-"`
}

// CostDetailRequest is one cost captured on a batch. With an ElementID the
// master rate comes from the cost element; a nil Quantity is estimated from
// the seed weight or crushing hours. An override rate is written to the
// override log with its reason.
type CostDetailRequest struct {
	ElementID      *uuid.UUID       `json:"element_id"`
	ElementName    string           `json:"element_name" binding:"max=100"`
	Category       string           `json:"category" binding:"max=50"`
	MasterRate     decimal.Decimal  `json:"master_rate"`
	OverrideRate   *decimal.Decimal `json:"override_rate"`
	OverrideReason string           `json:"override_reason" binding:"max=200"`
	Quantity       *decimal.Decimal `json:"quantity"`
}

// CostDetailResponse is a costed element on a batch or in an estimate
type CostDetailResponse struct {
	ElementID     *uuid.UUID       `json:"element_id,omitempty"`
	ElementName   string           `json:"element_name"`
	Category      string           `json:"category"`
	MasterRate    decimal.Decimal  `json:"master_rate"`
	OverrideRate  *decimal.Decimal `json:"override_rate,omitempty"`
	EffectiveRate decimal.Decimal  `json:"effective_rate"`
	Quantity      decimal.Decimal  `json:"quantity"`
	TotalCost     decimal.Decimal  `json:"total_cost"`
}

func toDetailResponse(d costing.CostDetail) CostDetailResponse {
	return CostDetailResponse{
		ElementID:     d.ElementID,
		ElementName:   d.ElementName,
		Category:      d.Category,
		MasterRate:    d.MasterRate,
		OverrideRate:  d.OverrideRate,
		EffectiveRate: d.EffectiveRate(),
		Quantity:      d.Quantity,
		TotalCost:     d.TotalCost,
	}
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID                  uuid.UUID            `json:"id"`
	BatchCode           string               `json:"batch_code"`
	TraceableCode       string               `json:"traceable_code,omitempty"`
	OilType             string               `json:"oil_type"`
	Description         string               `json:"batch_description"`
	ProductionDate      valueobject.Date     `json:"production_date"`
	SeedMaterialID      uuid.UUID            `json:"seed_material_id"`
	SeedMaterialName    string               `json:"seed_material_name,omitempty"`
	SeedPurchaseCode    string               `json:"seed_purchase_code,omitempty"`
	SeedQtyBeforeDrying decimal.Decimal      `json:"seed_quantity_before_drying"`
	SeedQtyAfterDrying  decimal.Decimal      `json:"seed_quantity_after_drying"`
	DryingLoss          decimal.Decimal      `json:"drying_loss"`
	OilYield            decimal.Decimal      `json:"oil_yield"`
	OilYieldPercent     decimal.Decimal      `json:"oil_yield_percent"`
	CakeYield           decimal.Decimal      `json:"cake_yield"`
	CakeYieldPercent    decimal.Decimal      `json:"cake_yield_percent"`
	SludgeYield         decimal.Decimal      `json:"sludge_yield"`
	SludgeYieldPercent  decimal.Decimal      `json:"sludge_yield_percent"`
	CrushingHours       decimal.Decimal      `json:"crushing_hours"`
	SeedCostTotal       decimal.Decimal      `json:"seed_cost_total"`
	ExtractionCost      decimal.Decimal      `json:"extraction_cost"`
	TotalProductionCost decimal.Decimal      `json:"total_production_cost"`
	CakeEstimatedRate   decimal.Decimal      `json:"cake_estimated_rate"`
	SludgeEstimatedRate decimal.Decimal      `json:"sludge_estimated_rate"`
	NetOilCost          decimal.Decimal      `json:"net_oil_cost"`
	OilCostPerKg        decimal.Decimal      `json:"oil_cost_per_kg"`
	CakeSoldQty         decimal.Decimal      `json:"cake_sold_quantity"`
	CakeActualRate      *decimal.Decimal     `json:"cake_actual_rate,omitempty"`
	SludgeSoldQty       decimal.Decimal      `json:"sludge_sold_quantity"`
	SludgeActualRate    *decimal.Decimal     `json:"sludge_actual_rate,omitempty"`
	CostAdjustment      decimal.Decimal      `json:"cost_adjustment"`
	OilLotID            *uuid.UUID           `json:"oil_lot_id,omitempty"`
	CostDetails         []CostDetailResponse `json:"cost_details"`
	TimeEntries         []TimeEntryResponse  `json:"time_entries,omitempty"`
	Version             int                  `json:"version"`
	CreatedBy           string               `json:"created_by,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// ToBatchResponse converts a domain batch to a response
func ToBatchResponse(b *production.Batch) BatchResponse {
	resp := BatchResponse{
		ID:                  b.ID,
		BatchCode:           b.BatchCode,
		TraceableCode:       b.TraceableCode,
		OilType:             b.OilType,
		Description:         b.Description,
		ProductionDate:      b.ProductionDate,
		SeedMaterialID:      b.SeedMaterialID,
		SeedPurchaseCode:    b.SeedPurchaseCode,
		SeedQtyBeforeDrying: b.SeedQtyBeforeDrying,
		SeedQtyAfterDrying:  b.SeedQtyAfterDrying,
		DryingLoss:          b.DryingLoss,
		OilYield:            b.OilYield,
		OilYieldPercent:     b.OilYieldPercent,
		CakeYield:           b.CakeYield,
		CakeYieldPercent:    b.CakeYieldPercent,
		SludgeYield:         b.SludgeYield,
		SludgeYieldPercent:  b.SludgeYieldPercent,
		CrushingHours:       b.CrushingHours,
		SeedCostTotal:       b.SeedCostTotal,
		ExtractionCost:      b.ExtractionCost(),
		TotalProductionCost: b.TotalProductionCost,
		CakeEstimatedRate:   b.CakeEstimatedRate,
		SludgeEstimatedRate: b.SludgeEstimatedRate,
		NetOilCost:          b.NetOilCost,
		OilCostPerKg:        b.OilCostPerKg,
		CakeSoldQty:         b.CakeSoldQty,
		CakeActualRate:      b.CakeActualRate,
		SludgeSoldQty:       b.SludgeSoldQty,
		SludgeActualRate:    b.SludgeActualRate,
		CostAdjustment:      b.CostAdjustment(),
		OilLotID:            b.OilLotID,
		CostDetails:         make([]CostDetailResponse, len(b.CostDetails)),
		Version:             b.Version,
		CreatedBy:           b.CreatedBy,
		CreatedAt:           b.CreatedAt,
	}
	for i, d := range b.CostDetails {
		resp.CostDetails[i] = toDetailResponse(d)
	}
	return resp
}

// HistoryFilter narrows batch history
type HistoryFilter struct {
	OilType string           `form:"oil_type"`
	From    valueobject.Date `form:"from_date"`
	To      valueobject.Date `form:"to_date"`
	Limit   int              `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int              `form:"offset" binding:"omitempty,min=0"`
}

func (f HistoryFilter) toDomain() production.Filter {
	return production.Filter{
		Filter:  shared.Filter{Limit: f.Limit, Offset: f.Offset, From: f.From.OrNil(), To: f.To.OrNil()},
		OilType: f.OilType,
	}
}

func (f HistoryFilter) toReport() report.Filter {
	return report.Filter{From: f.From.OrNil(), To: f.To.OrNil(), OilType: f.OilType}
}

// HistoryResponse is a page of batches with totals for the whole filter
type HistoryResponse struct {
	Batches   []BatchResponse            `json:"batches"`
	Summary   *report.BatchSummary       `json:"summary,omitempty"`
	ByOilType []report.OilTypeProduction `json:"oil_type_summary,omitempty"`
}

// SeedResponse is a seed material with stock available for crushing
type SeedResponse struct {
	MaterialID          uuid.UUID       `json:"material_id"`
	Name                string          `json:"material_name"`
	ShortCode           string          `json:"short_code,omitempty"`
	LotID               uuid.UUID       `json:"lot_id"`
	AvailableQuantity   decimal.Decimal `json:"available_quantity"`
	WeightedAvgCost     decimal.Decimal `json:"weighted_avg_cost"`
	LatestTraceableCode string          `json:"latest_traceable_code,omitempty"`
}

// RateResponse is the estimated by-product rate for an oil type
type RateResponse struct {
	OilType       string           `json:"oil_type"`
	CakeRate      decimal.Decimal  `json:"cake_rate"`
	SludgeRate    decimal.Decimal  `json:"sludge_rate"`
	EffectiveFrom valueobject.Date `json:"effective_from"`
	Source        string           `json:"source"`
}

// SetRateRequest publishes a new rate for an oil type
type SetRateRequest struct {
	OilType       string           `json:"oil_type" binding:"required,max=50"`
	CakeRate      decimal.Decimal  `json:"cake_rate"`
	SludgeRate    decimal.Decimal  `json:"sludge_rate"`
	EffectiveFrom valueobject.Date `json:"effective_from"`
}

// EstimateRequest drives a cost preview before a batch is recorded
type EstimateRequest struct {
	SeedQuantity  decimal.Decimal `json:"seed_quantity"`
	CrushingHours decimal.Decimal `json:"crushing_hours"`
}

// EstimateResponse is the previewed extraction cost per element
type EstimateResponse struct {
	Elements  []CostDetailResponse `json:"elements"`
	TotalCost decimal.Decimal      `json:"total_cost"`
}

// TimeTrackingRequest is a process run entered as "YYYY-MM-DD HH:MM" times.
// Recorded with a batch, its billed hours become the crushing hours and every
// per-hour cost element is charged for them.
type TimeTrackingRequest struct {
	ProcessType   string `json:"process_type" binding:"max=20"`
	StartDatetime string `json:"start_datetime" binding:"required"`
	EndDatetime   string `json:"end_datetime" binding:"required"`
	OperatorName  string `json:"operator_name" binding:"max=100"`
	Notes         string `json:"notes" binding:"max=500"`
}

func (r TimeTrackingRequest) toDomain() (*costing.TimeEntry, error) {
	return costing.ParseTimeEntry(r.ProcessType, r.StartDatetime, r.EndDatetime, r.OperatorName, r.Notes)
}

// TimeEntryResponse is a measured process run
type TimeEntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	BatchID      uuid.UUID       `json:"batch_id"`
	ProcessType  string          `json:"process_type"`
	Start        time.Time       `json:"start_datetime"`
	End          time.Time       `json:"end_datetime"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	BilledHours  decimal.Decimal `json:"billed_hours"`
	OperatorName string          `json:"operator_name,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

func toTimeEntryResponse(e *costing.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:           e.ID,
		BatchID:      e.BatchID,
		ProcessType:  string(e.ProcessType),
		Start:        e.Start,
		End:          e.End,
		TotalHours:   e.TotalHours,
		BilledHours:  e.BilledHours,
		OperatorName: e.OperatorName,
		Notes:        e.Notes,
	}
}

// TimeCostResponse previews what a process run will charge
type TimeCostResponse struct {
	TimeEntry     TimeEntryResponse    `json:"time_entry"`
	TimeCosts     []CostDetailResponse `json:"time_costs"`
	TotalTimeCost decimal.Decimal      `json:"total_time_cost"`
}

// OverrideResponse is an audited rate override
type OverrideResponse struct {
	ID           uuid.UUID       `json:"id"`
	ElementID    *uuid.UUID      `json:"element_id,omitempty"`
	ElementName  string          `json:"element_name"`
	OriginalRate decimal.Decimal `json:"original_rate"`
	OverrideRate decimal.Decimal `json:"override_rate"`
	Difference   decimal.Decimal `json:"difference"`
	Reason       string          `json:"reason"`
	OverriddenBy string          `json:"overridden_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toOverrideResponse(o *costing.OverrideEntry) OverrideResponse {
	return OverrideResponse{
		ID:           o.ID,
		ElementID:    o.ElementID,
		ElementName:  o.ElementName,
		OriginalRate: o.OriginalRate,
		OverrideRate: o.OverrideRate,
		Difference:   o.Difference(),
		Reason:       o.Reason,
		OverriddenBy: o.OverriddenBy,
		CreatedAt:    o.CreatedAt,
	}
}
