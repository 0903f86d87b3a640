package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/shopspring/decimal"
)

// BatchTimeEntryModel is a measured process run of a batch.
type BatchTimeEntryModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	BatchID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProcessType  string          `gorm:"type:varchar(20);not null"`
	StartTime    time.Time       `gorm:"not null"`
	EndTime      time.Time       `gorm:"not null"`
	TotalHours   decimal.Decimal `gorm:"type:numeric;not null"`
	BilledHours  decimal.Decimal `gorm:"type:numeric;not null"`
	OperatorName string          `gorm:"type:varchar(100)"`
	Notes        string          `gorm:"type:text"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BatchTimeEntryModel) TableName() string {
	return "batch_time_entries"
}

// ToDomain converts the persistence model to a domain TimeEntry
func (m *BatchTimeEntryModel) ToDomain() costing.TimeEntry {
	return costing.TimeEntry{
		ID:           m.ID,
		BatchID:      m.BatchID,
		ProcessType:  costing.ProcessType(m.ProcessType),
		Start:        m.StartTime,
		End:          m.EndTime,
		TotalHours:   m.TotalHours,
		BilledHours:  m.BilledHours,
		OperatorName: m.OperatorName,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
	}
}

// BatchTimeEntryModelFromDomain creates a persistence model from a domain TimeEntry
func BatchTimeEntryModelFromDomain(e *costing.TimeEntry) *BatchTimeEntryModel {
	return &BatchTimeEntryModel{
		ID:           e.ID,
		BatchID:      e.BatchID,
		ProcessType:  string(e.ProcessType),
		StartTime:    e.Start,
		EndTime:      e.End,
		TotalHours:   e.TotalHours,
		BilledHours:  e.BilledHours,
		OperatorName: e.OperatorName,
		Notes:        e.Notes,
		CreatedAt:    e.CreatedAt,
	}
}

// CostOverrideLogModel is one audited rate override.
type CostOverrideLogModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	Module       string          `gorm:"column:module_name;type:varchar(20);not null;index:idx_cost_override_log_record"`
	RecordID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_cost_override_log_record"`
	ElementID    *uuid.UUID      `gorm:"type:uuid"`
	ElementName  string          `gorm:"type:varchar(100);not null"`
	OriginalRate decimal.Decimal `gorm:"type:numeric;not null"`
	OverrideRate decimal.Decimal `gorm:"type:numeric;not null"`
	Reason       string          `gorm:"type:varchar(200);not null"`
	OverriddenBy string          `gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CostOverrideLogModel) TableName() string {
	return "cost_override_log"
}

// ToDomain converts the persistence model to a domain OverrideEntry
func (m *CostOverrideLogModel) ToDomain() costing.OverrideEntry {
	return costing.OverrideEntry{
		ID:           m.ID,
		Module:       m.Module,
		RecordID:     m.RecordID,
		ElementID:    m.ElementID,
		ElementName:  m.ElementName,
		OriginalRate: m.OriginalRate,
		OverrideRate: m.OverrideRate,
		Reason:       m.Reason,
		OverriddenBy: m.OverriddenBy,
		CreatedAt:    m.CreatedAt,
	}
}

// CostOverrideLogModelFromDomain creates a persistence model from a domain OverrideEntry
func CostOverrideLogModelFromDomain(o *costing.OverrideEntry) *CostOverrideLogModel {
	return &CostOverrideLogModel{
		ID:           o.ID,
		Module:       o.Module,
		RecordID:     o.RecordID,
		ElementID:    o.ElementID,
		ElementName:  o.ElementName,
		OriginalRate: o.OriginalRate,
		OverrideRate: o.OverrideRate,
		Reason:       o.Reason,
		OverriddenBy: o.OverriddenBy,
		CreatedAt:    o.CreatedAt,
	}
}
