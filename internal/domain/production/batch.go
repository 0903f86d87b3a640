// Package production records oil extraction batches and keeps each batch's
// oil cost in step with what its cake and sludge actually sell for.
package production

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BatchInput is everything measured and priced for one extraction batch
type BatchInput struct {
	OilType             string
	Description         string
	ProductionDate      valueobject.Date
	SeedMaterialID      uuid.UUID
	SeedLotID           uuid.UUID
	SeedPurchaseCode    string
	TraceableCode       string
	SeedQtyBeforeDrying decimal.Decimal
	SeedQtyAfterDrying  decimal.Decimal
	SeedCostTotal       decimal.Decimal
	OilYield            decimal.Decimal
	CakeYield           decimal.Decimal
	SludgeYield         decimal.Decimal
	CakeEstimatedRate   decimal.Decimal
	SludgeEstimatedRate decimal.Decimal
	CrushingHours       decimal.Decimal
	CostDetails         []costing.CostDetail
	CreatedBy           string
}

// Validate checks the measurements before anything is posted
func (in BatchInput) Validate() error {
	if strings.TrimSpace(in.OilType) == "" {
		return shared.NewValidationError("oil type is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return shared.NewValidationError("batch description is required")
	}
	if in.ProductionDate.IsZero() {
		return shared.NewValidationError("production date is required")
	}
	if in.SeedMaterialID == uuid.Nil {
		return shared.NewValidationError("seed material is required")
	}
	if !in.SeedQtyBeforeDrying.IsPositive() {
		return shared.NewValidationError("seed quantity before drying must be positive")
	}
	if in.SeedQtyAfterDrying.IsNegative() {
		return shared.NewValidationError("seed quantity after drying cannot be negative")
	}
	if in.SeedQtyAfterDrying.GreaterThan(in.SeedQtyBeforeDrying) {
		return shared.NewValidationError("seed quantity after drying (%s) cannot exceed quantity before drying (%s)",
			in.SeedQtyAfterDrying, in.SeedQtyBeforeDrying)
	}
	if in.SeedCostTotal.IsNegative() {
		return shared.NewValidationError("seed cost cannot be negative")
	}
	checks := []struct {
		name  string
		value decimal.Decimal
	}{
		{"oil yield", in.OilYield},
		{"cake yield", in.CakeYield},
		{"sludge yield", in.SludgeYield},
		{"cake estimated rate", in.CakeEstimatedRate},
		{"sludge estimated rate", in.SludgeEstimatedRate},
		{"crushing hours", in.CrushingHours},
	}
	for _, c := range checks {
		if c.value.IsNegative() {
			return shared.NewValidationError("%s cannot be negative", c.name)
		}
	}
	return nil
}

// Batch is one extraction run: seed in; oil, cake and sludge out.
//
// NetOilCost always equals TotalProductionCost minus the by-product credit,
// where sold quantities are credited at their realized revenue and unsold
// quantities at the estimated rate.
type Batch struct {
	shared.BaseAggregateRoot
	BatchCode           string
	TraceableCode       string
	OilType             string
	Description         string
	ProductionDate      valueobject.Date
	SeedMaterialID      uuid.UUID
	SeedLotID           uuid.UUID
	SeedPurchaseCode    string
	SeedQtyBeforeDrying decimal.Decimal
	SeedQtyAfterDrying  decimal.Decimal
	DryingLoss          decimal.Decimal
	OilYield            decimal.Decimal
	OilYieldPercent     decimal.Decimal
	CakeYield           decimal.Decimal
	CakeYieldPercent    decimal.Decimal
	SludgeYield         decimal.Decimal
	SludgeYieldPercent  decimal.Decimal
	CrushingHours       decimal.Decimal
	SeedCostTotal       decimal.Decimal
	CostDetails         []costing.CostDetail
	TotalProductionCost decimal.Decimal
	CakeEstimatedRate   decimal.Decimal
	SludgeEstimatedRate decimal.Decimal
	NetOilCost          decimal.Decimal
	OilCostPerKg        decimal.Decimal
	CakeSoldQty         decimal.Decimal
	CakeRealizedRevenue decimal.Decimal
	CakeActualRate      *decimal.Decimal
	SludgeSoldQty       decimal.Decimal
	SludgeRealized      decimal.Decimal
	SludgeActualRate    *decimal.Decimal
	OilLotID            *uuid.UUID
	CreatedBy           string
}

// NewBatch validates the input and derives every cost figure
func NewBatch(in BatchInput) (*Batch, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	b := &Batch{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		BatchCode:           BatchCode(in.ProductionDate, in.Description),
		TraceableCode:       in.TraceableCode,
		OilType:             strings.TrimSpace(in.OilType),
		Description:         strings.TrimSpace(in.Description),
		ProductionDate:      in.ProductionDate,
		SeedMaterialID:      in.SeedMaterialID,
		SeedLotID:           in.SeedLotID,
		SeedPurchaseCode:    in.SeedPurchaseCode,
		SeedQtyBeforeDrying: in.SeedQtyBeforeDrying,
		SeedQtyAfterDrying:  in.SeedQtyAfterDrying,
		DryingLoss:          in.SeedQtyBeforeDrying.Sub(in.SeedQtyAfterDrying),
		OilYield:            in.OilYield,
		CakeYield:           in.CakeYield,
		SludgeYield:         in.SludgeYield,
		CrushingHours:       in.CrushingHours,
		SeedCostTotal:       in.SeedCostTotal,
		CostDetails:         in.CostDetails,
		CakeEstimatedRate:   in.CakeEstimatedRate,
		SludgeEstimatedRate: in.SludgeEstimatedRate,
		CakeSoldQty:         decimal.Zero,
		CakeRealizedRevenue: decimal.Zero,
		SludgeSoldQty:       decimal.Zero,
		SludgeRealized:      decimal.Zero,
		CreatedBy:           in.CreatedBy,
	}
	b.OilYieldPercent = yieldPercent(in.OilYield, in.SeedQtyAfterDrying)
	b.CakeYieldPercent = yieldPercent(in.CakeYield, in.SeedQtyAfterDrying)
	b.SludgeYieldPercent = yieldPercent(in.SludgeYield, in.SeedQtyAfterDrying)
	b.TotalProductionCost = in.SeedCostTotal.Add(costing.SumDetails(in.CostDetails))
	b.recompute()

	b.AddDomainEvent(NewBatchProducedEvent(b))
	return b, nil
}

// BatchCode is BATCH-YYYYMMDD-<description>
func BatchCode(date valueobject.Date, description string) string {
	return fmt.Sprintf("BATCH-%s-%s", date.Compact(), strings.TrimSpace(description))
}

func yieldPercent(yield, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return yield.Div(base).Mul(hundred)
}

// ByProductCredit is what cake and sludge are worth against the batch:
// realized revenue for what has been sold, the estimate for the rest.
func (b *Batch) ByProductCredit() decimal.Decimal {
	cake := b.CakeRealizedRevenue.Add(b.CakeYield.Sub(b.CakeSoldQty).Mul(b.CakeEstimatedRate))
	sludge := b.SludgeRealized.Add(b.SludgeYield.Sub(b.SludgeSoldQty).Mul(b.SludgeEstimatedRate))
	return cake.Add(sludge)
}

func (b *Batch) recompute() {
	b.NetOilCost = b.TotalProductionCost.Sub(b.ByProductCredit())
	if b.OilYield.IsPositive() {
		b.OilCostPerKg = b.NetOilCost.Div(b.OilYield)
	} else {
		b.OilCostPerKg = decimal.Zero
	}
}

// InventoryUnitCost is the per-kg cost the batch's oil enters stock at.
// A by-product credit larger than the production cost leaves OilCostPerKg
// negative; stock is never valued below zero, so the oil is received free.
func (b *Batch) InventoryUnitCost() decimal.Decimal {
	if b.OilCostPerKg.IsNegative() {
		return decimal.Zero
	}
	return b.OilCostPerKg
}

// AssignOilLot links the batch to the lot its oil was received into
func (b *Batch) AssignOilLot(lotID uuid.UUID) {
	b.OilLotID = &lotID
}

// RecordByProductSale books quantity of t sold at rate against this batch and
// recomputes the net oil cost from the batch's revenue ledger.
func (b *Batch) RecordByProductSale(t byproduct.Type, quantity, rate decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("sold quantity must be positive")
	}
	if rate.IsNegative() {
		return shared.NewValidationError("sale rate cannot be negative")
	}

	oldNet := b.NetOilCost
	revenue := quantity.Mul(rate)
	switch t {
	case byproduct.TypeOilCake:
		if b.CakeSoldQty.Add(quantity).GreaterThan(b.CakeYield) {
			return shared.NewInsufficientStockError("oil cake of batch "+b.BatchCode, b.CakeYield.Sub(b.CakeSoldQty), quantity)
		}
		b.CakeSoldQty = b.CakeSoldQty.Add(quantity)
		b.CakeRealizedRevenue = b.CakeRealizedRevenue.Add(revenue)
		r := rate
		b.CakeActualRate = &r
	case byproduct.TypeSludge:
		if b.SludgeSoldQty.Add(quantity).GreaterThan(b.SludgeYield) {
			return shared.NewInsufficientStockError("sludge of batch "+b.BatchCode, b.SludgeYield.Sub(b.SludgeSoldQty), quantity)
		}
		b.SludgeSoldQty = b.SludgeSoldQty.Add(quantity)
		b.SludgeRealized = b.SludgeRealized.Add(revenue)
		r := rate
		b.SludgeActualRate = &r
	default:
		return shared.NewValidationError("invalid by-product type: %s", t)
	}

	b.recompute()
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBatchCostAdjustedEvent(b, t, quantity, rate, oldNet))
	return nil
}

// CostAdjustment is the cumulative change to net oil cost caused by actual
// by-product prices differing from the estimates.
func (b *Batch) CostAdjustment() decimal.Decimal {
	estimated := b.TotalProductionCost.
		Sub(b.CakeYield.Mul(b.CakeEstimatedRate)).
		Sub(b.SludgeYield.Mul(b.SludgeEstimatedRate))
	return b.NetOilCost.Sub(estimated)
}

// CapturedElements is the set of cost element ids recorded on the batch
func (b *Batch) CapturedElements() map[uuid.UUID]bool {
	captured := make(map[uuid.UUID]bool, len(b.CostDetails))
	for _, d := range b.CostDetails {
		if d.ElementID != nil {
			captured[*d.ElementID] = true
		}
	}
	return captured
}

// ExtractionCost is the total of the captured cost details, without seed
func (b *Batch) ExtractionCost() decimal.Decimal {
	return costing.SumDetails(b.CostDetails)
}
