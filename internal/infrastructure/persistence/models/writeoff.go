package models

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/domain/writeoff"
	"github.com/shopspring/decimal"
)

// WriteoffReasonModel is the persistence model for the reason master.
type WriteoffReasonModel struct {
	Code        string `gorm:"column:reason_code;type:varchar(30);primaryKey"`
	Description string `gorm:"column:reason_description;type:varchar(200);not null"`
	Category    string `gorm:"type:varchar(50)"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (WriteoffReasonModel) TableName() string {
	return "writeoff_reasons"
}

// ToDomain converts the persistence model to a domain Reason
func (m *WriteoffReasonModel) ToDomain() writeoff.Reason {
	return writeoff.Reason{
		Code:        m.Code,
		Description: m.Description,
		Category:    m.Category,
		Active:      m.Active,
	}
}

// WriteoffModel is the persistence model for the Writeoff aggregate root.
type WriteoffModel struct {
	AggregateModel
	LotID             uuid.UUID        `gorm:"type:uuid;not null;index"`
	LotKey            string           `gorm:"type:varchar(120);not null"`
	MaterialID        *uuid.UUID       `gorm:"type:uuid;index"`
	WriteoffDate      valueobject.Date `gorm:"type:integer;not null;index"`
	Quantity          decimal.Decimal  `gorm:"type:numeric;not null"`
	WeightedAvgCost   decimal.Decimal  `gorm:"type:numeric;not null"`
	TotalCost         decimal.Decimal  `gorm:"type:numeric;not null"`
	ScrapValue        decimal.Decimal  `gorm:"type:numeric;not null;default:0"`
	NetLoss           decimal.Decimal  `gorm:"type:numeric;not null"`
	ReasonCode        string           `gorm:"type:varchar(30);not null;index"`
	ReasonDescription string           `gorm:"type:varchar(200)"`
	ReferenceNo       string           `gorm:"type:varchar(100)"`
	Notes             string           `gorm:"type:text"`
	CreatedBy         string           `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (WriteoffModel) TableName() string {
	return "writeoffs"
}

// ToDomain converts the persistence model to a domain Writeoff
func (m *WriteoffModel) ToDomain() *writeoff.Writeoff {
	return &writeoff.Writeoff{
		BaseAggregateRoot: m.ToAggregateRoot(),
		LotID:             m.LotID,
		LotKey:            m.LotKey,
		MaterialID:        m.MaterialID,
		WriteoffDate:      m.WriteoffDate,
		Quantity:          m.Quantity,
		WeightedAvgCost:   m.WeightedAvgCost,
		TotalCost:         m.TotalCost,
		ScrapValue:        m.ScrapValue,
		NetLoss:           m.NetLoss,
		ReasonCode:        m.ReasonCode,
		ReasonDescription: m.ReasonDescription,
		ReferenceNo:       m.ReferenceNo,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
	}
}

// WriteoffModelFromDomain creates a persistence model from a domain Writeoff
func WriteoffModelFromDomain(w *writeoff.Writeoff) *WriteoffModel {
	m := &WriteoffModel{
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
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}
