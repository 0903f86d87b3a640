package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Filter defines the period and oil type a report covers
type Filter struct {
	From    *valueobject.Date
	To      *valueobject.Date
	OilType string
}

// BatchSummary provides aggregated production statistics
type BatchSummary struct {
	TotalBatches        int64           `db:"total_batches" json:"total_batches"`
	TotalSeedConsumed   decimal.Decimal `db:"total_seed_consumed" json:"total_seed_consumed"`
	TotalOilProduced    decimal.Decimal `db:"total_oil_produced" json:"total_oil_produced"`
	TotalCakeProduced   decimal.Decimal `db:"total_cake_produced" json:"total_cake_produced"`
	TotalSludgeProduced decimal.Decimal `db:"total_sludge_produced" json:"total_sludge_produced"`
	TotalProductionCost decimal.Decimal `db:"total_production_cost" json:"total_production_cost"`
	TotalNetOilCost     decimal.Decimal `db:"total_net_oil_cost" json:"total_net_oil_cost"`
	AvgCostPerKg        decimal.Decimal `db:"-" json:"avg_cost_per_kg"` // TotalNetOilCost / TotalOilProduced
}

// OilTypeProduction is production grouped by oil type
type OilTypeProduction struct {
	OilType          string          `db:"oil_type" json:"oil_type"`
	BatchCount       int64           `db:"batch_count" json:"batch_count"`
	TotalOilProduced decimal.Decimal `db:"total_oil_produced" json:"total_oil_produced"`
	TotalNetOilCost  decimal.Decimal `db:"total_net_oil_cost" json:"total_net_oil_cost"`
	AvgCostPerKg     decimal.Decimal `db:"-" json:"avg_cost_per_kg"`
}

// CostReconciliation compares a batch's estimated by-product credit with what
// was actually realized
type CostReconciliation struct {
	BatchID             uuid.UUID           `db:"batch_id" json:"batch_id"`
	BatchCode           string              `db:"batch_code" json:"batch_code"`
	OilType             string              `db:"oil_type" json:"oil_type"`
	ProductionDate      valueobject.Date    `db:"production_date" json:"production_date"`
	OilYield            decimal.Decimal     `db:"oil_yield" json:"oil_yield"`
	TotalProductionCost decimal.Decimal     `db:"total_production_cost" json:"total_production_cost"`
	CakeYield           decimal.Decimal     `db:"cake_yield" json:"cake_yield"`
	CakeSoldQty         decimal.Decimal     `db:"cake_sold_qty" json:"cake_sold_qty"`
	CakeEstimatedRate   decimal.Decimal     `db:"cake_estimated_rate" json:"cake_estimated_rate"`
	CakeActualRate      decimal.NullDecimal `db:"cake_actual_rate" json:"cake_actual_rate"`
	SludgeYield         decimal.Decimal     `db:"sludge_yield" json:"sludge_yield"`
	SludgeSoldQty       decimal.Decimal     `db:"sludge_sold_qty" json:"sludge_sold_qty"`
	SludgeEstimatedRate decimal.Decimal     `db:"sludge_estimated_rate" json:"sludge_estimated_rate"`
	SludgeActualRate    decimal.NullDecimal `db:"sludge_actual_rate" json:"sludge_actual_rate"`
	NetOilCost          decimal.Decimal     `db:"net_oil_cost" json:"net_oil_cost"`
	OilCostPerKg        decimal.Decimal     `db:"oil_cost_per_kg" json:"oil_cost_per_kg"`
	EstimatedNetOilCost decimal.Decimal     `db:"-" json:"estimated_net_oil_cost"`
	TotalAdjustment     decimal.Decimal     `db:"-" json:"total_adjustment"`
}

// Derive fills the computed columns
func (r *CostReconciliation) Derive() {
	r.EstimatedNetOilCost = r.TotalProductionCost.
		Sub(r.CakeYield.Mul(r.CakeEstimatedRate)).
		Sub(r.SludgeYield.Mul(r.SludgeEstimatedRate))
	r.TotalAdjustment = r.NetOilCost.Sub(r.EstimatedNetOilCost)
}

// CostCapture is one cost element recorded on a batch. ElementID is nil for
// a batch with no element-linked cost details.
type CostCapture struct {
	BatchID        uuid.UUID        `db:"batch_id"`
	BatchCode      string           `db:"batch_code"`
	OilType        string           `db:"oil_type"`
	ProductionDate valueobject.Date `db:"production_date"`
	ElementID      *uuid.UUID       `db:"element_id"`
}

// PurchaseSummary provides aggregated purchase statistics
type PurchaseSummary struct {
	TotalPurchases    int64           `db:"total_purchases" json:"total_purchases"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	DistinctMaterials int64           `db:"distinct_materials" json:"distinct_materials"`
	DistinctSuppliers int64           `db:"distinct_suppliers" json:"distinct_suppliers"`
}

// BlendSummary provides aggregated blending statistics
type BlendSummary struct {
	TotalBlends   int64           `db:"total_blends" json:"total_blends"`
	TotalQuantity decimal.Decimal `db:"total_quantity" json:"total_quantity"`
	TotalValue    decimal.Decimal `db:"total_value" json:"total_value"`
}

// ByProductSalesSummary is sales totals for one by-product type
type ByProductSalesSummary struct {
	ByProductType   string          `db:"byproduct_type" json:"byproduct_type"`
	TotalSales      int64           `db:"total_sales" json:"total_sales"`
	TotalQuantity   decimal.Decimal `db:"total_quantity" json:"total_quantity"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	TotalAdjustment decimal.Decimal `db:"total_adjustment" json:"total_adjustment"`
}

// ByProductStock is unsold by-product stock grouped by type and oil type
type ByProductStock struct {
	ByProductType     string          `db:"byproduct_type" json:"byproduct_type"`
	OilType           string          `db:"oil_type" json:"oil_type"`
	LotCount          int64           `db:"lot_count" json:"lot_count"`
	QuantityRemaining decimal.Decimal `db:"quantity_remaining" json:"quantity_remaining"`
	EstimatedValue    decimal.Decimal `db:"estimated_value" json:"estimated_value"`
}

// WriteoffSummary provides aggregated writeoff statistics
type WriteoffSummary struct {
	TotalWriteoffs  int64           `db:"total_writeoffs" json:"total_writeoffs"`
	TotalQuantity   decimal.Decimal `db:"total_quantity" json:"total_quantity"`
	TotalCost       decimal.Decimal `db:"total_cost" json:"total_cost"`
	TotalScrapValue decimal.Decimal `db:"total_scrap_value" json:"total_scrap_value"`
	TotalNetLoss    decimal.Decimal `db:"total_net_loss" json:"total_net_loss"`
}

// WriteoffByReason is writeoff totals per reason code
type WriteoffByReason struct {
	ReasonCode        string          `db:"reason_code" json:"reason_code"`
	ReasonDescription string          `db:"reason_description" json:"reason_description"`
	Count             int64           `db:"writeoff_count" json:"count"`
	TotalNetLoss      decimal.Decimal `db:"total_net_loss" json:"total_net_loss"`
}

// InventoryValue is stock on hand grouped by lot type
type InventoryValue struct {
	LotType    string          `db:"lot_type" json:"lot_type"`
	LotCount   int64           `db:"lot_count" json:"lot_count"`
	TotalStock decimal.Decimal `db:"total_stock" json:"total_stock"`
	TotalValue decimal.Decimal `db:"total_value" json:"total_value"`
}

// Repository defines the read-side queries behind the reports
type Repository interface {
	BatchSummary(ctx context.Context, filter Filter) (*BatchSummary, error)
	ProductionByOilType(ctx context.Context, filter Filter) ([]OilTypeProduction, error)
	CostReconciliation(ctx context.Context, filter Filter) ([]CostReconciliation, error)

	// LatestProductionDate returns the zero Date when there are no batches
	LatestProductionDate(ctx context.Context) (valueobject.Date, error)
	// CostCaptures lists the distinct elements captured on each batch
	// produced on or after from, newest batch first
	CostCaptures(ctx context.Context, from valueobject.Date) ([]CostCapture, error)

	PurchaseSummary(ctx context.Context, filter Filter, materialID *uuid.UUID) (*PurchaseSummary, error)
	BlendSummary(ctx context.Context, filter Filter) (*BlendSummary, error)
	ByProductSalesSummary(ctx context.Context, filter Filter) ([]ByProductSalesSummary, error)
	ByProductStock(ctx context.Context) ([]ByProductStock, error)
	WriteoffSummary(ctx context.Context, filter Filter) (*WriteoffSummary, error)
	WriteoffsByReason(ctx context.Context, filter Filter) ([]WriteoffByReason, error)
	InventoryValue(ctx context.Context) ([]InventoryValue, error)
}

// CostPerKg divides cost by quantity, zero when there is no quantity
func CostPerKg(cost, quantity decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return cost.Div(quantity)
}
