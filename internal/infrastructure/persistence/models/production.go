package models

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BatchModel is the persistence model for the Batch aggregate root.
type BatchModel struct {
	AggregateModel
	BatchCode           string                 `gorm:"type:varchar(120);not null;uniqueIndex"`
	TraceableCode       string                 `gorm:"type:varchar(60);index"`
	OilType             string                 `gorm:"type:varchar(50);not null;index"`
	Description         string                 `gorm:"type:varchar(200);not null"`
	ProductionDate      valueobject.Date       `gorm:"type:integer;not null;index"`
	SeedMaterialID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	SeedLotID           uuid.UUID              `gorm:"type:uuid;not null"`
	SeedPurchaseCode    string                 `gorm:"type:varchar(60)"`
	SeedQtyBeforeDrying decimal.Decimal        `gorm:"type:numeric;not null"`
	SeedQtyAfterDrying  decimal.Decimal        `gorm:"type:numeric;not null"`
	DryingLoss          decimal.Decimal        `gorm:"type:numeric;not null"`
	OilYield            decimal.Decimal        `gorm:"type:numeric;not null"`
	OilYieldPercent     decimal.Decimal        `gorm:"type:numeric;not null"`
	CakeYield           decimal.Decimal        `gorm:"type:numeric;not null"`
	CakeYieldPercent    decimal.Decimal        `gorm:"type:numeric;not null"`
	SludgeYield         decimal.Decimal        `gorm:"type:numeric;not null"`
	SludgeYieldPercent  decimal.Decimal        `gorm:"type:numeric;not null"`
	CrushingHours       decimal.Decimal        `gorm:"type:numeric;not null;default:0"`
	SeedCostTotal       decimal.Decimal        `gorm:"type:numeric;not null"`
	TotalProductionCost decimal.Decimal        `gorm:"type:numeric;not null"`
	CakeEstimatedRate   decimal.Decimal        `gorm:"type:numeric;not null"`
	SludgeEstimatedRate decimal.Decimal        `gorm:"type:numeric;not null"`
	NetOilCost          decimal.Decimal        `gorm:"type:numeric;not null"`
	OilCostPerKg        decimal.Decimal        `gorm:"type:numeric;not null"`
	CakeSoldQty         decimal.Decimal        `gorm:"type:numeric;not null;default:0"`
	CakeRealizedRevenue decimal.Decimal        `gorm:"type:numeric;not null;default:0"`
	CakeActualRate      decimal.NullDecimal    `gorm:"type:numeric"`
	SludgeSoldQty       decimal.Decimal        `gorm:"type:numeric;not null;default:0"`
	SludgeRealized      decimal.Decimal        `gorm:"column:sludge_realized_revenue;type:numeric;not null;default:0"`
	SludgeActualRate    decimal.NullDecimal    `gorm:"type:numeric"`
	OilLotID            *uuid.UUID             `gorm:"type:uuid"`
	CreatedBy           string                 `gorm:"type:varchar(100)"`
	CostDetails         []BatchCostDetailModel `gorm:"foreignKey:BatchID;references:ID"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch
func (m *BatchModel) ToDomain() *production.Batch {
	b := &production.Batch{
		BaseAggregateRoot:   m.ToAggregateRoot(),
		BatchCode:           m.BatchCode,
		TraceableCode:       m.TraceableCode,
		OilType:             m.OilType,
		Description:         m.Description,
		ProductionDate:      m.ProductionDate,
		SeedMaterialID:      m.SeedMaterialID,
		SeedLotID:           m.SeedLotID,
		SeedPurchaseCode:    m.SeedPurchaseCode,
		SeedQtyBeforeDrying: m.SeedQtyBeforeDrying,
		SeedQtyAfterDrying:  m.SeedQtyAfterDrying,
		DryingLoss:          m.DryingLoss,
		OilYield:            m.OilYield,
		OilYieldPercent:     m.OilYieldPercent,
		CakeYield:           m.CakeYield,
		CakeYieldPercent:    m.CakeYieldPercent,
		SludgeYield:         m.SludgeYield,
		SludgeYieldPercent:  m.SludgeYieldPercent,
		CrushingHours:       m.CrushingHours,
		SeedCostTotal:       m.SeedCostTotal,
		TotalProductionCost: m.TotalProductionCost,
		CakeEstimatedRate:   m.CakeEstimatedRate,
		SludgeEstimatedRate: m.SludgeEstimatedRate,
		NetOilCost:          m.NetOilCost,
		OilCostPerKg:        m.OilCostPerKg,
		CakeSoldQty:         m.CakeSoldQty,
		CakeRealizedRevenue: m.CakeRealizedRevenue,
		CakeActualRate:      fromNullDecimal(m.CakeActualRate),
		SludgeSoldQty:       m.SludgeSoldQty,
		SludgeRealized:      m.SludgeRealized,
		SludgeActualRate:    fromNullDecimal(m.SludgeActualRate),
		OilLotID:            m.OilLotID,
		CreatedBy:           m.CreatedBy,
		CostDetails:         make([]costing.CostDetail, len(m.CostDetails)),
	}
	for i, d := range m.CostDetails {
		b.CostDetails[i] = d.ToDomain()
	}
	return b
}

// BatchModelFromDomain creates a persistence model from a domain Batch
func BatchModelFromDomain(b *production.Batch) *BatchModel {
	m := &BatchModel{
		BatchCode:           b.BatchCode,
		TraceableCode:       b.TraceableCode,
		OilType:             b.OilType,
		Description:         b.Description,
		ProductionDate:      b.ProductionDate,
		SeedMaterialID:      b.SeedMaterialID,
		SeedLotID:           b.SeedLotID,
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
		TotalProductionCost: b.TotalProductionCost,
		CakeEstimatedRate:   b.CakeEstimatedRate,
		SludgeEstimatedRate: b.SludgeEstimatedRate,
		NetOilCost:          b.NetOilCost,
		OilCostPerKg:        b.OilCostPerKg,
		CakeSoldQty:         b.CakeSoldQty,
		CakeRealizedRevenue: b.CakeRealizedRevenue,
		CakeActualRate:      toNullDecimal(b.CakeActualRate),
		SludgeSoldQty:       b.SludgeSoldQty,
		SludgeRealized:      b.SludgeRealized,
		SludgeActualRate:    toNullDecimal(b.SludgeActualRate),
		OilLotID:            b.OilLotID,
		CreatedBy:           b.CreatedBy,
		CostDetails:         make([]BatchCostDetailModel, len(b.CostDetails)),
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	for i, d := range b.CostDetails {
		m.CostDetails[i] = BatchCostDetailModelFromDomain(b.ID, d)
	}
	return m
}

// BatchCostDetailModel is one cost element captured on a batch.
type BatchCostDetailModel struct {
	ID           uuid.UUID           `gorm:"type:uuid;primary_key"`
	BatchID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	ElementID    *uuid.UUID          `gorm:"type:uuid;index"`
	ElementName  string              `gorm:"type:varchar(100);not null"`
	Category     string              `gorm:"type:varchar(50)"`
	MasterRate   decimal.Decimal     `gorm:"type:numeric;not null"`
	OverrideRate decimal.NullDecimal `gorm:"type:numeric"`
	Quantity     decimal.Decimal     `gorm:"type:numeric;not null"`
	TotalCost    decimal.Decimal     `gorm:"type:numeric;not null"`
}

// TableName returns the table name for GORM
func (BatchCostDetailModel) TableName() string {
	return "batch_cost_details"
}

// ToDomain converts the persistence model to a domain CostDetail
func (m *BatchCostDetailModel) ToDomain() costing.CostDetail {
	return costing.CostDetail{
		ID:           m.ID,
		ElementID:    m.ElementID,
		ElementName:  m.ElementName,
		Category:     m.Category,
		MasterRate:   m.MasterRate,
		OverrideRate: fromNullDecimal(m.OverrideRate),
		Quantity:     m.Quantity,
		TotalCost:    m.TotalCost,
	}
}

// BatchCostDetailModelFromDomain creates a persistence model from a domain CostDetail
func BatchCostDetailModelFromDomain(batchID uuid.UUID, d costing.CostDetail) BatchCostDetailModel {
	return BatchCostDetailModel{
		ID:           d.ID,
		BatchID:      batchID,
		ElementID:    d.ElementID,
		ElementName:  d.ElementName,
		Category:     d.Category,
		MasterRate:   d.MasterRate,
		OverrideRate: toNullDecimal(d.OverrideRate),
		Quantity:     d.Quantity,
		TotalCost:    d.TotalCost,
	}
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
