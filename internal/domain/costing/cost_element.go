package costing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CalculationMethod says what a cost element's rate is multiplied by
type CalculationMethod string

const (
	MethodPerKg   CalculationMethod = "PER_KG"
	MethodPerHour CalculationMethod = "PER_HOUR"
	MethodFixed   CalculationMethod = "FIXED"
	MethodActual  CalculationMethod = "ACTUAL"
)

// IsValid returns true if the method is known
func (m CalculationMethod) IsValid() bool {
	switch m {
	case MethodPerKg, MethodPerHour, MethodFixed, MethodActual:
		return true
	default:
		return false
	}
}

// Applicability scopes a cost element to a production stage
type Applicability string

const (
	ApplicableBatch Applicability = "BATCH"
	ApplicableBlend Applicability = "BLEND"
	ApplicableAll   Applicability = "ALL"
)

// IsValid returns true if the applicability is known
func (a Applicability) IsValid() bool {
	return a == ApplicableBatch || a == ApplicableBlend || a == ApplicableAll
}

// AppliesTo reports whether an element scoped to a covers stage
func (a Applicability) AppliesTo(stage Applicability) bool {
	return a == ApplicableAll || a == stage
}

// CostElement is a master-data entry for a production cost such as labour or power
type CostElement struct {
	shared.BaseAggregateRoot
	Name         string
	Category     string
	UnitType     string
	Method       CalculationMethod
	DefaultRate  decimal.Decimal
	ApplicableTo Applicability
	IsOptional   bool
	Active       bool
	DisplayOrder int
}

// NewCostElement creates a validated cost element
func NewCostElement(name, category, unitType string, method CalculationMethod, defaultRate decimal.Decimal, applicableTo Applicability, optional bool) (*CostElement, error) {
	e := &CostElement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Category:          strings.TrimSpace(category),
		UnitType:          strings.TrimSpace(unitType),
		Method:            method,
		DefaultRate:       defaultRate,
		ApplicableTo:      applicableTo,
		IsOptional:        optional,
		Active:            true,
	}
	if e.ApplicableTo == "" {
		e.ApplicableTo = ApplicableAll
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the element's invariants
func (e *CostElement) Validate() error {
	if e.Name == "" {
		return shared.NewValidationError("cost element name is required")
	}
	if !e.Method.IsValid() {
		return shared.NewValidationError("invalid calculation method: %s", e.Method)
	}
	if !e.ApplicableTo.IsValid() {
		return shared.NewValidationError("invalid applicability: %s", e.ApplicableTo)
	}
	if e.DefaultRate.IsNegative() {
		return shared.NewValidationError("default rate cannot be negative")
	}
	return nil
}

// Revision is a change to an element's rate and availability
type Revision struct {
	DefaultRate  decimal.Decimal
	Active       bool
	IsOptional   bool
	DisplayOrder int
}

// Revise applies r as a single new version of the element
func (e *CostElement) Revise(r Revision) error {
	if r.DefaultRate.IsNegative() {
		return shared.NewValidationError("default rate cannot be negative")
	}
	e.DefaultRate = r.DefaultRate
	e.Active = r.Active
	e.IsOptional = r.IsOptional
	e.DisplayOrder = r.DisplayOrder
	e.Touch()
	e.IncrementVersion()
	return nil
}

// EstimateQuantity is the driver quantity used for a cost preview:
// seed kilograms, crushing hours, one for fixed costs, zero for actuals.
func (e *CostElement) EstimateQuantity(seedQty, crushingHours decimal.Decimal) decimal.Decimal {
	switch e.Method {
	case MethodPerKg:
		return seedQty
	case MethodPerHour:
		return crushingHours
	case MethodFixed:
		return decimal.NewFromInt(1)
	default:
		return decimal.Zero
	}
}

// CostDetail is one costed element captured on a batch.
// TotalCost = Quantity x (OverrideRate if set, else MasterRate).
type CostDetail struct {
	ID           uuid.UUID
	ElementID    *uuid.UUID
	ElementName  string
	Category     string
	MasterRate   decimal.Decimal
	OverrideRate *decimal.Decimal
	Quantity     decimal.Decimal
	TotalCost    decimal.Decimal
}

// NewCostDetail validates and prices a cost detail
func NewCostDetail(elementID *uuid.UUID, name, category string, masterRate decimal.Decimal, overrideRate *decimal.Decimal, quantity decimal.Decimal) (CostDetail, error) {
	if strings.TrimSpace(name) == "" {
		return CostDetail{}, shared.NewValidationError("cost element name is required")
	}
	if masterRate.IsNegative() {
		return CostDetail{}, shared.NewValidationError("%s: master rate cannot be negative", name)
	}
	if overrideRate != nil && overrideRate.IsNegative() {
		return CostDetail{}, shared.NewValidationError("%s: override rate cannot be negative", name)
	}
	if quantity.IsNegative() {
		return CostDetail{}, shared.NewValidationError("%s: quantity cannot be negative", name)
	}
	d := CostDetail{
		ID:           uuid.New(),
		ElementID:    elementID,
		ElementName:  strings.TrimSpace(name),
		Category:     category,
		MasterRate:   masterRate,
		OverrideRate: overrideRate,
		Quantity:     quantity,
	}
	d.TotalCost = quantity.Mul(d.EffectiveRate())
	return d, nil
}

// EffectiveRate returns the override rate when present, else the master rate
func (d CostDetail) EffectiveRate() decimal.Decimal {
	if d.OverrideRate != nil {
		return *d.OverrideRate
	}
	return d.MasterRate
}

// SumDetails adds up detail totals
func SumDetails(details []CostDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.TotalCost)
	}
	return total
}

// MissingMandatory returns the active, non-optional elements for stage whose
// IDs are not in captured.
func MissingMandatory(elements []CostElement, stage Applicability, captured map[uuid.UUID]bool) []CostElement {
	var missing []CostElement
	for _, e := range elements {
		if !e.Active || e.IsOptional || !e.ApplicableTo.AppliesTo(stage) {
			continue
		}
		if !captured[e.ID] {
			missing = append(missing, e)
		}
	}
	return missing
}
