package models

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/blending"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BlendModel is the persistence model for the Blend aggregate root.
type BlendModel struct {
	AggregateModel
	BlendCode       string                `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description     string                `gorm:"type:varchar(200);not null"`
	BlendDate       valueobject.Date      `gorm:"type:integer;not null;index"`
	TotalQuantity   decimal.Decimal       `gorm:"type:numeric;not null"`
	WeightedAvgCost decimal.Decimal       `gorm:"type:numeric;not null"`
	TraceableCode   string                `gorm:"type:varchar(120)"`
	OilType         string                `gorm:"type:varchar(50);not null"`
	LotID           *uuid.UUID            `gorm:"type:uuid"`
	CreatedBy       string                `gorm:"type:varchar(100)"`
	Components      []BlendComponentModel `gorm:"foreignKey:BlendID;references:ID"`
}

// TableName returns the table name for GORM
func (BlendModel) TableName() string {
	return "blends"
}

// ToDomain converts the persistence model to a domain Blend
func (m *BlendModel) ToDomain() *blending.Blend {
	b := &blending.Blend{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BlendCode:         m.BlendCode,
		Description:       m.Description,
		BlendDate:         m.BlendDate,
		TotalQuantity:     m.TotalQuantity,
		WeightedAvgCost:   m.WeightedAvgCost,
		TraceableCode:     m.TraceableCode,
		OilType:           m.OilType,
		LotID:             m.LotID,
		CreatedBy:         m.CreatedBy,
		Components:        make([]blending.Component, len(m.Components)),
	}
	for i, c := range m.Components {
		b.Components[i] = c.ToDomain()
	}
	return b
}

// BlendModelFromDomain creates a persistence model from a domain Blend
func BlendModelFromDomain(b *blending.Blend) *BlendModel {
	m := &BlendModel{
		BlendCode:       b.BlendCode,
		Description:     b.Description,
		BlendDate:       b.BlendDate,
		TotalQuantity:   b.TotalQuantity,
		WeightedAvgCost: b.WeightedAvgCost,
		TraceableCode:   b.TraceableCode,
		OilType:         b.OilType,
		LotID:           b.LotID,
		CreatedBy:       b.CreatedBy,
		Components:      make([]BlendComponentModel, len(b.Components)),
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	for i, c := range b.Components {
		m.Components[i] = BlendComponentModel{
			ID:                c.ID,
			BlendID:           b.ID,
			SourceLotID:       c.SourceLotID,
			SourceType:        string(c.SourceType),
			SourceReferenceID: c.SourceReferenceID,
			OilType:           c.OilType,
			TraceableCode:     c.TraceableCode,
			Percentage:        c.Percentage,
			QuantityUsed:      c.QuantityUsed,
			CostPerUnit:       c.CostPerUnit,
			TotalCost:         c.TotalCost,
		}
	}
	return m
}

// BlendComponentModel is the persistence model for a blend Component.
type BlendComponentModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	BlendID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceLotID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceType        string          `gorm:"type:varchar(20);not null"`
	SourceReferenceID *uuid.UUID      `gorm:"type:uuid"`
	OilType           string          `gorm:"type:varchar(50)"`
	TraceableCode     string          `gorm:"type:varchar(120)"`
	Percentage        decimal.Decimal `gorm:"type:numeric;not null"`
	QuantityUsed      decimal.Decimal `gorm:"type:numeric;not null"`
	CostPerUnit       decimal.Decimal `gorm:"type:numeric;not null"`
	TotalCost         decimal.Decimal `gorm:"type:numeric;not null"`
}

// TableName returns the table name for GORM
func (BlendComponentModel) TableName() string {
	return "blend_components"
}

// ToDomain converts the persistence model to a domain Component
func (m *BlendComponentModel) ToDomain() blending.Component {
	return blending.Component{
		ID:                m.ID,
		BlendID:           m.BlendID,
		SourceLotID:       m.SourceLotID,
		SourceType:        inventory.LotSource(m.SourceType),
		SourceReferenceID: m.SourceReferenceID,
		OilType:           m.OilType,
		TraceableCode:     m.TraceableCode,
		Percentage:        m.Percentage,
		QuantityUsed:      m.QuantityUsed,
		CostPerUnit:       m.CostPerUnit,
		TotalCost:         m.TotalCost,
	}
}
