package models

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ByProductLotModel is the persistence model for a by-product Lot.
type ByProductLotModel struct {
	AggregateModel
	BatchID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	BatchCode         string           `gorm:"type:varchar(120);not null"`
	ByProductType     string           `gorm:"column:byproduct_type;type:varchar(20);not null;index:idx_byproduct_lot_fifo,priority:1"`
	OilType           string           `gorm:"type:varchar(50);not null;index:idx_byproduct_lot_fifo,priority:2"`
	QuantityProduced  decimal.Decimal  `gorm:"type:numeric;not null"`
	QuantityRemaining decimal.Decimal  `gorm:"type:numeric;not null"`
	EstimatedRate     decimal.Decimal  `gorm:"type:numeric;not null"`
	ProductionDate    valueobject.Date `gorm:"type:integer;not null;index:idx_byproduct_lot_fifo,priority:3"`
	Status            string           `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ByProductLotModel) TableName() string {
	return "byproduct_lots"
}

// ToDomain converts the persistence model to a domain by-product Lot
func (m *ByProductLotModel) ToDomain() *byproduct.Lot {
	return &byproduct.Lot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BatchID:           m.BatchID,
		BatchCode:         m.BatchCode,
		Type:              byproduct.Type(m.ByProductType),
		OilType:           m.OilType,
		QuantityProduced:  m.QuantityProduced,
		QuantityRemaining: m.QuantityRemaining,
		EstimatedRate:     m.EstimatedRate,
		ProductionDate:    m.ProductionDate,
		Status:            byproduct.LotStatus(m.Status),
	}
}

// ByProductLotModelFromDomain creates a persistence model from a domain by-product Lot
func ByProductLotModelFromDomain(l *byproduct.Lot) *ByProductLotModel {
	m := &ByProductLotModel{
		BatchID:           l.BatchID,
		BatchCode:         l.BatchCode,
		ByProductType:     string(l.Type),
		OilType:           l.OilType,
		QuantityProduced:  l.QuantityProduced,
		QuantityRemaining: l.QuantityRemaining,
		EstimatedRate:     l.EstimatedRate,
		ProductionDate:    l.ProductionDate,
		Status:            string(l.Status),
	}
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	return m
}

// ByProductSaleModel is the persistence model for the by-product Sale aggregate root.
type ByProductSaleModel struct {
	AggregateModel
	SaleDate      valueobject.Date      `gorm:"type:integer;not null;index"`
	InvoiceNumber string                `gorm:"type:varchar(60);not null"`
	BuyerName     string                `gorm:"type:varchar(200);not null"`
	ByProductType string                `gorm:"column:byproduct_type;type:varchar(20);not null;index"`
	OilType       string                `gorm:"type:varchar(50)"`
	Quantity      decimal.Decimal       `gorm:"type:numeric;not null"`
	SaleRate      decimal.Decimal       `gorm:"type:numeric;not null"`
	TotalAmount   decimal.Decimal       `gorm:"type:numeric;not null"`
	TransportCost decimal.Decimal       `gorm:"type:numeric;not null;default:0"`
	NetRate       decimal.Decimal       `gorm:"type:numeric;not null"`
	Notes         string                `gorm:"type:text"`
	CreatedBy     string                `gorm:"type:varchar(100)"`
	Allocations   []SaleAllocationModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (ByProductSaleModel) TableName() string {
	return "byproduct_sales"
}

// ToDomain converts the persistence model to a domain Sale
func (m *ByProductSaleModel) ToDomain() *byproduct.Sale {
	s := &byproduct.Sale{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SaleDate:          m.SaleDate,
		InvoiceNumber:     m.InvoiceNumber,
		BuyerName:         m.BuyerName,
		Type:              byproduct.Type(m.ByProductType),
		OilType:           m.OilType,
		Quantity:          m.Quantity,
		SaleRate:          m.SaleRate,
		TotalAmount:       m.TotalAmount,
		TransportCost:     m.TransportCost,
		NetRate:           m.NetRate,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		Allocations:       make([]byproduct.Allocation, len(m.Allocations)),
	}
	for i, a := range m.Allocations {
		s.Allocations[i] = a.ToDomain()
	}
	return s
}

// ByProductSaleModelFromDomain creates a persistence model from a domain Sale
func ByProductSaleModelFromDomain(s *byproduct.Sale) *ByProductSaleModel {
	m := &ByProductSaleModel{
		SaleDate:      s.SaleDate,
		InvoiceNumber: s.InvoiceNumber,
		BuyerName:     s.BuyerName,
		ByProductType: string(s.Type),
		OilType:       s.OilType,
		Quantity:      s.Quantity,
		SaleRate:      s.SaleRate,
		TotalAmount:   s.TotalAmount,
		TransportCost: s.TransportCost,
		NetRate:       s.NetRate,
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		Allocations:   make([]SaleAllocationModel, len(s.Allocations)),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	for i, a := range s.Allocations {
		m.Allocations[i] = SaleAllocationModelFromDomain(a)
	}
	return m
}

// SaleAllocationModel is the persistence model for a sale Allocation.
type SaleAllocationModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchCode            string          `gorm:"type:varchar(120)"`
	QuantityAllocated    decimal.Decimal `gorm:"type:numeric;not null"`
	OriginalEstimateRate decimal.Decimal `gorm:"type:numeric;not null"`
	ActualSaleRate       decimal.Decimal `gorm:"type:numeric;not null"`
	CostAdjustmentPerKg  decimal.Decimal `gorm:"type:numeric;not null"`
	CostAdjustment       decimal.Decimal `gorm:"type:numeric;not null"`
}

// TableName returns the table name for GORM
func (SaleAllocationModel) TableName() string {
	return "byproduct_sale_allocations"
}

// ToDomain converts the persistence model to a domain Allocation
func (m *SaleAllocationModel) ToDomain() byproduct.Allocation {
	return byproduct.Allocation{
		ID:                   m.ID,
		SaleID:               m.SaleID,
		LotID:                m.LotID,
		BatchID:              m.BatchID,
		BatchCode:            m.BatchCode,
		QuantityAllocated:    m.QuantityAllocated,
		OriginalEstimateRate: m.OriginalEstimateRate,
		ActualSaleRate:       m.ActualSaleRate,
		CostAdjustmentPerKg:  m.CostAdjustmentPerKg,
		CostAdjustment:       m.CostAdjustment,
	}
}

// SaleAllocationModelFromDomain creates a persistence model from a domain Allocation
func SaleAllocationModelFromDomain(a byproduct.Allocation) SaleAllocationModel {
	return SaleAllocationModel{
		ID:                   a.ID,
		SaleID:               a.SaleID,
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
