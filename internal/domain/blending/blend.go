// Package blending mixes bulk oil lots into a new lot priced at the
// quantity-weighted average of its components.
package blending

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/domain/traceability"
	"github.com/shopspring/decimal"
)

// MixedOilType names the output of a blend of more than one oil type
const MixedOilType = "Mixed"

var (
	hundred = decimal.NewFromInt(100)
	// PercentageTolerance is how far the component percentages may drift from 100
	PercentageTolerance = decimal.RequireFromString("0.01")
)

// ComponentInput is one source lot and its share of the blend.
// CostPerUnit is the lot's weighted-average cost when the blend is posted.
type ComponentInput struct {
	SourceLotID       uuid.UUID
	SourceType        inventory.LotSource
	SourceReferenceID *uuid.UUID
	OilType           string
	TraceableCode     string
	Percentage        decimal.Decimal
	CostPerUnit       decimal.Decimal
}

// Component is a priced share of a blend
type Component struct {
	ID                uuid.UUID
	BlendID           uuid.UUID
	SourceLotID       uuid.UUID
	SourceType        inventory.LotSource
	SourceReferenceID *uuid.UUID
	OilType           string
	TraceableCode     string
	Percentage        decimal.Decimal
	QuantityUsed      decimal.Decimal
	CostPerUnit       decimal.Decimal
	TotalCost         decimal.Decimal
}

// BlendInput is a blend request
type BlendInput struct {
	Description   string
	BlendDate     valueobject.Date
	TotalQuantity decimal.Decimal
	Components    []ComponentInput
	UnitCode      string
	CreatedBy     string
}

// Blend is a recorded blend and its components
type Blend struct {
	shared.BaseAggregateRoot
	BlendCode       string
	Description     string
	BlendDate       valueobject.Date
	TotalQuantity   decimal.Decimal
	WeightedAvgCost decimal.Decimal
	TraceableCode   string
	OilType         string
	LotID           *uuid.UUID
	Components      []Component
	CreatedBy       string
}

// ValidatePercentages checks that there are at least two distinct positive
// components summing to 100 within PercentageTolerance.
func ValidatePercentages(components []ComponentInput) error {
	if len(components) < 2 {
		return shared.NewValidationError("at least 2 components are required for blending")
	}
	seen := make(map[uuid.UUID]bool, len(components))
	total := decimal.Zero
	for _, c := range components {
		if c.SourceLotID == uuid.Nil {
			return shared.NewValidationError("component source lot is required")
		}
		if seen[c.SourceLotID] {
			return shared.NewValidationError("source lot %s is used more than once", c.SourceLotID)
		}
		seen[c.SourceLotID] = true
		if !c.Percentage.IsPositive() {
			return shared.NewValidationError("component percentage must be positive, got %s", c.Percentage)
		}
		total = total.Add(c.Percentage)
	}
	if total.Sub(hundred).Abs().GreaterThan(PercentageTolerance) {
		return shared.NewValidationError("percentages must sum to 100%%, current total: %s%%", total)
	}
	return nil
}

// NewBlend validates the request and prices every component
func NewBlend(in BlendInput) (*Blend, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, shared.NewValidationError("blend description is required")
	}
	if in.BlendDate.IsZero() {
		return nil, shared.NewValidationError("blend date is required")
	}
	if !in.TotalQuantity.IsPositive() {
		return nil, shared.NewValidationError("total quantity must be positive")
	}
	if err := ValidatePercentages(in.Components); err != nil {
		return nil, err
	}

	b := &Blend{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Description:       strings.TrimSpace(in.Description),
		BlendDate:         in.BlendDate,
		TotalQuantity:     in.TotalQuantity,
		CreatedBy:         in.CreatedBy,
	}

	totalCost := decimal.Zero
	sources := make([]traceability.BlendSource, 0, len(in.Components))
	for _, c := range in.Components {
		if c.CostPerUnit.IsNegative() {
			return nil, shared.NewValidationError("component cost cannot be negative")
		}
		qty := in.TotalQuantity.Mul(c.Percentage).Div(hundred)
		cost := qty.Mul(c.CostPerUnit)
		totalCost = totalCost.Add(cost)
		b.Components = append(b.Components, Component{
			ID:                uuid.New(),
			BlendID:           b.ID,
			SourceLotID:       c.SourceLotID,
			SourceType:        c.SourceType,
			SourceReferenceID: c.SourceReferenceID,
			OilType:           strings.TrimSpace(c.OilType),
			TraceableCode:     c.TraceableCode,
			Percentage:        c.Percentage,
			QuantityUsed:      qty,
			CostPerUnit:       c.CostPerUnit,
			TotalCost:         cost,
		})
		sources = append(sources, traceability.BlendSource{TraceableCode: c.TraceableCode, Percentage: c.Percentage})
	}
	b.WeightedAvgCost = totalCost.Div(in.TotalQuantity)

	oilTypes := b.OilTypes()
	b.OilType = MixedOilType
	if len(oilTypes) == 1 {
		b.OilType = oilTypes[0]
	}
	oilNames := OilNames(oilTypes)
	b.BlendCode = fmt.Sprintf("BLEND-%s-%s-%s", in.BlendDate.Compact(), oilNames, b.Description)
	if code, ok := traceability.BlendCode(sources, in.BlendDate, in.UnitCode); ok {
		b.TraceableCode = code
	} else {
		b.TraceableCode = traceability.FallbackBlendCode(oilNames, in.BlendDate)
	}

	b.AddDomainEvent(NewBlendCreatedEvent(b))
	return b, nil
}

// OilTypes lists the distinct component oil types in component order
func (b *Blend) OilTypes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range b.Components {
		key := strings.ToUpper(c.OilType)
		if c.OilType == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c.OilType)
	}
	return out
}

// OilNames joins oil types with '-', abbreviating to three upper-case
// letters each when there are more than three.
func OilNames(oilTypes []string) string {
	if len(oilTypes) <= 3 {
		return strings.Join(oilTypes, "-")
	}
	short := make([]string, len(oilTypes))
	for i, o := range oilTypes {
		o = strings.ToUpper(o)
		if len(o) > 3 {
			o = o[:3]
		}
		short[i] = o
	}
	return strings.Join(short, "-")
}

// AssignLot links the blend to the lot its output was received into
func (b *Blend) AssignLot(lotID uuid.UUID) {
	b.LotID = &lotID
}

// TotalCost sums the component costs
func (b *Blend) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, c := range b.Components {
		total = total.Add(c.TotalCost)
	}
	return total
}
