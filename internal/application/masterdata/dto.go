package masterdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/shopspring/decimal"
)

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	ShortCode   string          `json:"short_code,omitempty"`
	TaxRate     decimal.Decimal `json:"gst_rate"`
	CurrentCost decimal.Decimal `json:"current_cost"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToMaterialResponse converts a domain material to a response
func ToMaterialResponse(m *masterdata.Material) MaterialResponse {
	return MaterialResponse{
		ID:          m.ID,
		Name:        m.Name,
		Unit:        m.Unit,
		Category:    m.Category.String(),
		ShortCode:   m.ShortCode,
		TaxRate:     m.TaxRate,
		CurrentCost: m.CurrentCost,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateMaterialRequest represents a request to create a material
type CreateMaterialRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Unit      string          `json:"unit" binding:"max=20"`
	Category  string          `json:"category" binding:"required,oneof=SEEDS BULK_OIL PACKAGING CONSUMABLE OTHER"`
	ShortCode string          `json:"short_code" binding:"max=6"`
	TaxRate   decimal.Decimal `json:"gst_rate"`
}

// MaterialListFilter narrows the material listing
type MaterialListFilter struct {
	Category   string `form:"category" binding:"omitempty,oneof=SEEDS BULK_OIL PACKAGING CONSUMABLE OTHER"`
	ActiveOnly bool   `form:"active_only"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ShortCode     string    `json:"short_code,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	GSTNumber     string    `json:"gst_number,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToSupplierResponse converts a domain supplier to a response
func ToSupplierResponse(s *masterdata.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ShortCode:     s.ShortCode,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		GSTNumber:     s.GSTNumber,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt,
	}
}

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ShortCode     string `json:"short_code" binding:"omitempty,len=3,alpha"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Phone         string `json:"phone" binding:"max=30"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Address       string `json:"address" binding:"max=500"`
	GSTNumber     string `json:"gst_number" binding:"max=20"`
}

// CostElementResponse represents a cost element in API responses
type CostElementResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"element_name"`
	Category          string          `json:"category"`
	UnitType          string          `json:"unit_type"`
	CalculationMethod string          `json:"calculation_method"`
	DefaultRate       decimal.Decimal `json:"default_rate"`
	ApplicableTo      string          `json:"applicable_to"`
	IsOptional        bool            `json:"is_optional"`
	Active            bool            `json:"active"`
	DisplayOrder      int             `json:"display_order"`
	Version           int             `json:"version"`
}

// ToCostElementResponse converts a domain cost element to a response
func ToCostElementResponse(e *costing.CostElement) CostElementResponse {
	return CostElementResponse{
		ID:                e.ID,
		Name:              e.Name,
		Category:          e.Category,
		UnitType:          e.UnitType,
		CalculationMethod: string(e.Method),
		DefaultRate:       e.DefaultRate,
		ApplicableTo:      string(e.ApplicableTo),
		IsOptional:        e.IsOptional,
		Active:            e.Active,
		DisplayOrder:      e.DisplayOrder,
		Version:           e.Version,
	}
}

// CreateCostElementRequest represents a request to create a cost element
type CreateCostElementRequest struct {
	Name              string          `json:"element_name" binding:"required,min=1,max=100"`
	Category          string          `json:"category" binding:"required,max=50"`
	UnitType          string          `json:"unit_type" binding:"max=30"`
	CalculationMethod string          `json:"calculation_method" binding:"required,oneof=PER_KG PER_HOUR FIXED ACTUAL"`
	DefaultRate       decimal.Decimal `json:"default_rate"`
	ApplicableTo      string          `json:"applicable_to" binding:"omitempty,oneof=BATCH BLEND ALL"`
	IsOptional        bool            `json:"is_optional"`
	DisplayOrder      int             `json:"display_order"`
}

// UpdateCostElementRequest revises a cost element. Omitted fields keep
// their current value; Version must match the stored version.
type UpdateCostElementRequest struct {
	DefaultRate  *decimal.Decimal `json:"default_rate"`
	Active       *bool            `json:"active"`
	IsOptional   *bool            `json:"is_optional"`
	DisplayOrder *int             `json:"display_order"`
	Version      int              `json:"version" binding:"required,min=1"`
}

// CostElementListFilter narrows the cost element listing
type CostElementListFilter struct {
	ApplicableTo string `form:"applicable_to" binding:"omitempty,oneof=BATCH BLEND ALL"`
	ActiveOnly   bool   `form:"active_only"`
}
