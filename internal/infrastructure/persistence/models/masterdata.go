package models

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MaterialModel is the persistence model for the Material aggregate root.
type MaterialModel struct {
	AggregateModel
	Name        string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Unit        string          `gorm:"type:varchar(20);not null;default:'kg'"`
	Category    string          `gorm:"type:varchar(30);not null;index"`
	ShortCode   string          `gorm:"type:varchar(10)"`
	TaxRate     decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	CurrentCost decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a domain Material
func (m *MaterialModel) ToDomain() *masterdata.Material {
	return &masterdata.Material{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Unit:              m.Unit,
		Category:          masterdata.MaterialCategory(m.Category),
		ShortCode:         m.ShortCode,
		TaxRate:           m.TaxRate,
		CurrentCost:       m.CurrentCost,
		Active:            m.Active,
	}
}

// MaterialModelFromDomain creates a persistence model from a domain Material
func MaterialModelFromDomain(mat *masterdata.Material) *MaterialModel {
	m := &MaterialModel{
		Name:        mat.Name,
		Unit:        mat.Unit,
		Category:    string(mat.Category),
		ShortCode:   mat.ShortCode,
		TaxRate:     mat.TaxRate,
		CurrentCost: mat.CurrentCost,
		Active:      mat.Active,
	}
	m.FromDomainAggregateRoot(mat.BaseAggregateRoot)
	return m
}

// SupplierModel is the persistence model for the Supplier aggregate root.
type SupplierModel struct {
	AggregateModel
	Name          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	ShortCode     string `gorm:"type:varchar(3)"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Phone         string `gorm:"type:varchar(30)"`
	Email         string `gorm:"type:varchar(100)"`
	Address       string `gorm:"type:text"`
	GSTNumber     string `gorm:"column:gst_number;type:varchar(20)"`
	Active        bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *masterdata.Supplier {
	return &masterdata.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		ShortCode:         m.ShortCode,
		ContactPerson:     m.ContactPerson,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		GSTNumber:         m.GSTNumber,
		Active:            m.Active,
	}
}

// SupplierModelFromDomain creates a persistence model from a domain Supplier
func SupplierModelFromDomain(s *masterdata.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:          s.Name,
		ShortCode:     s.ShortCode,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		GSTNumber:     s.GSTNumber,
		Active:        s.Active,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// PurchaseSerialModel holds the last traceability serial issued per
// material, supplier and financial year.
type PurchaseSerialModel struct {
	MaterialID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FinancialYear string    `gorm:"type:varchar(7);primaryKey"`
	CurrentSerial int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseSerialModel) TableName() string {
	return "purchase_serials"
}

// CostElementModel is the persistence model for the CostElement master.
type CostElementModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Category     string          `gorm:"type:varchar(50);not null"`
	UnitType     string          `gorm:"type:varchar(30)"`
	Method       string          `gorm:"column:calculation_method;type:varchar(20);not null"`
	DefaultRate  decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	ApplicableTo string          `gorm:"type:varchar(10);not null;default:'ALL'"`
	IsOptional   bool            `gorm:"not null;default:false"`
	Active       bool            `gorm:"not null;default:true"`
	DisplayOrder int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CostElementModel) TableName() string {
	return "cost_elements"
}

// ToDomain converts the persistence model to a domain CostElement
func (m *CostElementModel) ToDomain() *costing.CostElement {
	return &costing.CostElement{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Category:          m.Category,
		UnitType:          m.UnitType,
		Method:            costing.CalculationMethod(m.Method),
		DefaultRate:       m.DefaultRate,
		ApplicableTo:      costing.Applicability(m.ApplicableTo),
		IsOptional:        m.IsOptional,
		Active:            m.Active,
		DisplayOrder:      m.DisplayOrder,
	}
}

// CostElementModelFromDomain creates a persistence model from a domain CostElement
func CostElementModelFromDomain(e *costing.CostElement) *CostElementModel {
	m := &CostElementModel{
		Name:         e.Name,
		Category:     e.Category,
		UnitType:     e.UnitType,
		Method:       string(e.Method),
		DefaultRate:  e.DefaultRate,
		ApplicableTo: string(e.ApplicableTo),
		IsOptional:   e.IsOptional,
		Active:       e.Active,
		DisplayOrder: e.DisplayOrder,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}

// ByProductRateModel is one effective-dated row of estimated by-product rates.
type ByProductRateModel struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key"`
	OilType       string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_byproduct_rate_oil_from,priority:1"`
	CakeRate      decimal.Decimal  `gorm:"type:numeric;not null"`
	SludgeRate    decimal.Decimal  `gorm:"type:numeric;not null"`
	EffectiveFrom valueobject.Date `gorm:"type:integer;not null;uniqueIndex:idx_byproduct_rate_oil_from,priority:2"`
}

// TableName returns the table name for GORM
func (ByProductRateModel) TableName() string {
	return "byproduct_rates"
}

// ToDomain converts the persistence model to a domain ByProductRate
func (m *ByProductRateModel) ToDomain() production.ByProductRate {
	return production.ByProductRate{
		OilType:       m.OilType,
		CakeRate:      m.CakeRate,
		SludgeRate:    m.SludgeRate,
		EffectiveFrom: m.EffectiveFrom,
	}
}
