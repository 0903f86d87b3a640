package report

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
)

// DefaultValidationDays is the look-back window of the cost validation report
const DefaultValidationDays = 30

// PeriodFilter defines the period and oil type a report covers
type PeriodFilter struct {
	OilType string           `form:"oil_type"`
	From    valueobject.Date `form:"from_date"`
	To      valueobject.Date `form:"to_date"`
}

// ToReport converts the filter to the read-model filter
func (f PeriodFilter) ToReport() report.Filter {
	return report.Filter{From: f.From.OrNil(), To: f.To.OrNil(), OilType: f.OilType}
}

func (f PeriodFilter) batches(limit, offset int) production.Filter {
	return production.Filter{
		Filter:  shared.Filter{Limit: limit, Offset: offset, From: f.From.OrNil(), To: f.To.OrNil()},
		OilType: f.OilType,
	}
}

// DashboardResponse gathers the headline figures of every ledger for a period
type DashboardResponse struct {
	Production     *report.BatchSummary           `json:"production"`
	ByOilType      []report.OilTypeProduction     `json:"production_by_oil_type"`
	Purchases      *report.PurchaseSummary        `json:"purchases"`
	Blends         *report.BlendSummary           `json:"blends"`
	ByProductSales []report.ByProductSalesSummary `json:"byproduct_sales"`
	ByProductStock []report.ByProductStock        `json:"byproduct_stock"`
	Writeoffs      *report.WriteoffSummary        `json:"writeoffs"`
	Inventory      []report.InventoryValue        `json:"inventory"`
}

// BatchCostValidation lists the mandatory cost elements a batch did not capture
type BatchCostValidation struct {
	BatchID         uuid.UUID        `json:"batch_id"`
	BatchCode       string           `json:"batch_code"`
	OilType         string           `json:"oil_type"`
	ProductionDate  valueobject.Date `json:"production_date"`
	CostsCaptured   int              `json:"costs_captured"`
	CostsExpected   int              `json:"costs_expected"`
	MissingCount    int              `json:"missing_count"`
	MissingElements []string         `json:"missing_elements"`
	Complete        bool             `json:"is_complete"`
}

// CostValidationResponse is the cost validation report
type CostValidationResponse struct {
	From            valueobject.Date      `json:"from_date"`
	LatestDate      valueobject.Date      `json:"latest_production_date"`
	Batches         []BatchCostValidation `json:"batches"`
	TotalBatches    int                   `json:"total_batches"`
	BatchesWithGaps int                   `json:"batches_with_gaps"`
}
