package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InventoryLotModel is the persistence model for the InventoryLot aggregate root.
type InventoryLotModel struct {
	AggregateModel
	LotKey            string           `gorm:"type:varchar(120);not null;uniqueIndex"`
	LotType           string           `gorm:"type:varchar(20);not null;index"`
	SourceType        string           `gorm:"type:varchar(20);not null"`
	MaterialID        *uuid.UUID       `gorm:"type:uuid;index"`
	OilType           string           `gorm:"type:varchar(50);index"`
	SourceReferenceID *uuid.UUID       `gorm:"type:uuid"`
	TraceableCode     string           `gorm:"type:varchar(60)"`
	OpeningStock      decimal.Decimal  `gorm:"type:numeric;not null;default:0"`
	Purchases         decimal.Decimal  `gorm:"type:numeric;not null;default:0"`
	Consumption       decimal.Decimal  `gorm:"type:numeric;not null;default:0"`
	ClosingStock      decimal.Decimal  `gorm:"type:numeric;not null;default:0"`
	WeightedAvgCost   decimal.Decimal  `gorm:"type:numeric;not null;default:0"`
	LastUpdated       valueobject.Date `gorm:"type:integer;not null"`
}

// TableName returns the table name for GORM
func (InventoryLotModel) TableName() string {
	return "inventory_lots"
}

// ToDomain converts the persistence model to a domain InventoryLot
func (m *InventoryLotModel) ToDomain() *inventory.InventoryLot {
	return &inventory.InventoryLot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		LotKey:            m.LotKey,
		LotType:           inventory.LotType(m.LotType),
		Source:            inventory.LotSource(m.SourceType),
		MaterialID:        m.MaterialID,
		OilType:           m.OilType,
		SourceReferenceID: m.SourceReferenceID,
		TraceableCode:     m.TraceableCode,
		OpeningStock:      m.OpeningStock,
		Purchases:         m.Purchases,
		Consumption:       m.Consumption,
		ClosingStock:      m.ClosingStock,
		WeightedAvgCost:   m.WeightedAvgCost,
		LastUpdated:       m.LastUpdated,
	}
}

// FromDomain populates the persistence model from a domain InventoryLot
func (m *InventoryLotModel) FromDomain(l *inventory.InventoryLot) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.LotKey = l.LotKey
	m.LotType = string(l.LotType)
	m.SourceType = string(l.Source)
	m.MaterialID = l.MaterialID
	m.OilType = l.OilType
	m.SourceReferenceID = l.SourceReferenceID
	m.TraceableCode = l.TraceableCode
	m.OpeningStock = l.OpeningStock
	m.Purchases = l.Purchases
	m.Consumption = l.Consumption
	m.ClosingStock = l.ClosingStock
	m.WeightedAvgCost = l.WeightedAvgCost
	m.LastUpdated = l.LastUpdated
}

// InventoryLotModelFromDomain creates a new persistence model from a domain InventoryLot
func InventoryLotModelFromDomain(l *inventory.InventoryLot) *InventoryLotModel {
	m := &InventoryLotModel{}
	m.FromDomain(l)
	return m
}

// StockMovementModel is the persistence model for the immutable StockMovement record.
type StockMovementModel struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key"`
	LotID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	LotKey        string           `gorm:"type:varchar(120);not null"`
	MovementType  string           `gorm:"type:varchar(20);not null"`
	Quantity      decimal.Decimal  `gorm:"type:numeric;not null"`
	UnitCost      decimal.Decimal  `gorm:"type:numeric;not null"`
	TotalCost     decimal.Decimal  `gorm:"type:numeric;not null"`
	BalanceBefore decimal.Decimal  `gorm:"type:numeric;not null"`
	BalanceAfter  decimal.Decimal  `gorm:"type:numeric;not null"`
	AvgCostBefore decimal.Decimal  `gorm:"type:numeric;not null"`
	AvgCostAfter  decimal.Decimal  `gorm:"type:numeric;not null"`
	ReferenceType string           `gorm:"type:varchar(20);not null;index:idx_stock_movement_reference,priority:1"`
	ReferenceID   *uuid.UUID       `gorm:"type:uuid;index:idx_stock_movement_reference,priority:2"`
	ReferenceCode string           `gorm:"type:varchar(120)"`
	MovementDate  valueobject.Date `gorm:"type:integer;not null;index"`
	Notes         string           `gorm:"type:text"`
	CreatedBy     string           `gorm:"type:varchar(100)"`
	CreatedAt     time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:            m.ID,
		LotID:         m.LotID,
		LotKey:        m.LotKey,
		MovementType:  inventory.MovementType(m.MovementType),
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		AvgCostBefore: m.AvgCostBefore,
		AvgCostAfter:  m.AvgCostAfter,
		ReferenceType: inventory.ReferenceType(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		ReferenceCode: m.ReferenceCode,
		MovementDate:  m.MovementDate,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:            s.ID,
		LotID:         s.LotID,
		LotKey:        s.LotKey,
		MovementType:  string(s.MovementType),
		Quantity:      s.Quantity,
		UnitCost:      s.UnitCost,
		TotalCost:     s.TotalCost,
		BalanceBefore: s.BalanceBefore,
		BalanceAfter:  s.BalanceAfter,
		AvgCostBefore: s.AvgCostBefore,
		AvgCostAfter:  s.AvgCostAfter,
		ReferenceType: string(s.ReferenceType),
		ReferenceID:   s.ReferenceID,
		ReferenceCode: s.ReferenceCode,
		MovementDate:  s.MovementDate,
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
	}
}
