package models

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/purchase"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseModel is the persistence model for the Purchase aggregate root.
type PurchaseModel struct {
	AggregateModel
	SupplierID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	InvoiceRef      string              `gorm:"type:varchar(100);not null"`
	PurchaseDate    valueobject.Date    `gorm:"type:integer;not null;index"`
	TransportCost   decimal.Decimal     `gorm:"type:numeric;not null;default:0"`
	HandlingCharges decimal.Decimal     `gorm:"type:numeric;not null;default:0"`
	SubtotalAmount  decimal.Decimal     `gorm:"type:numeric;not null"`
	TaxAmount       decimal.Decimal     `gorm:"type:numeric;not null"`
	TotalCost       decimal.Decimal     `gorm:"type:numeric;not null"`
	Notes           string              `gorm:"type:text"`
	CreatedBy       string              `gorm:"type:varchar(100)"`
	Items           []PurchaseItemModel `gorm:"foreignKey:PurchaseID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToDomain converts the persistence model to a domain Purchase
func (m *PurchaseModel) ToDomain() *purchase.Purchase {
	p := &purchase.Purchase{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SupplierID:        m.SupplierID,
		InvoiceRef:        m.InvoiceRef,
		PurchaseDate:      m.PurchaseDate,
		TransportCost:     m.TransportCost,
		HandlingCharges:   m.HandlingCharges,
		SubtotalAmount:    m.SubtotalAmount,
		TaxAmount:         m.TaxAmount,
		TotalCost:         m.TotalCost,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		Items:             make([]purchase.Item, len(m.Items)),
	}
	for i, item := range m.Items {
		p.Items[i] = item.ToDomain()
	}
	return p
}

// PurchaseModelFromDomain creates a persistence model from a domain Purchase
func PurchaseModelFromDomain(p *purchase.Purchase) *PurchaseModel {
	m := &PurchaseModel{
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
		Items:           make([]PurchaseItemModel, len(p.Items)),
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	for i, item := range p.Items {
		m.Items[i] = PurchaseItemModelFromDomain(item)
	}
	return m
}

// PurchaseItemModel is the persistence model for a costed purchase line.
type PurchaseItemModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity           decimal.Decimal `gorm:"type:numeric;not null"`
	Rate               decimal.Decimal `gorm:"type:numeric;not null"`
	Amount             decimal.Decimal `gorm:"type:numeric;not null"`
	TaxRate            decimal.Decimal `gorm:"type:numeric;not null"`
	Transport          decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Handling           decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	AllocatedTransport decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	AllocatedHandling  decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Subtotal           decimal.Decimal `gorm:"type:numeric;not null"`
	TaxAmount          decimal.Decimal `gorm:"type:numeric;not null"`
	TotalCost          decimal.Decimal `gorm:"type:numeric;not null"`
	LandedCostPerUnit  decimal.Decimal `gorm:"type:numeric;not null"`
	TraceableCode      string          `gorm:"type:varchar(60);index"`
}

// TableName returns the table name for GORM
func (PurchaseItemModel) TableName() string {
	return "purchase_items"
}

// ToDomain converts the persistence model to a domain purchase Item
func (m *PurchaseItemModel) ToDomain() purchase.Item {
	return purchase.Item{
		ID:                 m.ID,
		PurchaseID:         m.PurchaseID,
		MaterialID:         m.MaterialID,
		Quantity:           m.Quantity,
		Rate:               m.Rate,
		Amount:             m.Amount,
		TaxRate:            m.TaxRate,
		Transport:          m.Transport,
		Handling:           m.Handling,
		AllocatedTransport: m.AllocatedTransport,
		AllocatedHandling:  m.AllocatedHandling,
		Subtotal:           m.Subtotal,
		TaxAmount:          m.TaxAmount,
		TotalCost:          m.TotalCost,
		LandedCostPerUnit:  m.LandedCostPerUnit,
		TraceableCode:      m.TraceableCode,
	}
}

// PurchaseItemModelFromDomain creates a persistence model from a domain purchase Item
func PurchaseItemModelFromDomain(i purchase.Item) PurchaseItemModel {
	return PurchaseItemModel{
		ID:                 i.ID,
		PurchaseID:         i.PurchaseID,
		MaterialID:         i.MaterialID,
		Quantity:           i.Quantity,
		Rate:               i.Rate,
		Amount:             i.Amount,
		TaxRate:            i.TaxRate,
		Transport:          i.Transport,
		Handling:           i.Handling,
		AllocatedTransport: i.AllocatedTransport,
		AllocatedHandling:  i.AllocatedHandling,
		Subtotal:           i.Subtotal,
		TaxAmount:          i.TaxAmount,
		TotalCost:          i.TotalCost,
		LandedCostPerUnit:  i.LandedCostPerUnit,
		TraceableCode:      i.TraceableCode,
	}
}
