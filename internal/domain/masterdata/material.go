package masterdata

import (
	"regexp"
	"strings"

	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaterialCategory groups materials by how they are used
type MaterialCategory string

const (
	CategorySeeds      MaterialCategory = "SEEDS"
	CategoryBulkOil    MaterialCategory = "BULK_OIL"
	CategoryPackaging  MaterialCategory = "PACKAGING"
	CategoryConsumable MaterialCategory = "CONSUMABLE"
	CategoryOther      MaterialCategory = "OTHER"
)

// String returns the string representation
func (c MaterialCategory) String() string {
	return string(c)
}

// IsValid returns true if the category is known
func (c MaterialCategory) IsValid() bool {
	switch c {
	case CategorySeeds, CategoryBulkOil, CategoryPackaging, CategoryConsumable, CategoryOther:
		return true
	default:
		return false
	}
}

var (
	materialShortCodePattern = regexp.MustCompile(`^[A-Z]{1,3}-[A-Z]{1,2}$`)
	supplierShortCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateMaterialShortCode checks codes such as "GNS-K": one to three letters,
// a dash, then one or two letters.
func ValidateMaterialShortCode(code string) error {
	if !materialShortCodePattern.MatchString(code) {
		return shared.NewValidationError("material short code %q must look like GNS-K", code)
	}
	return nil
}

// ValidateSupplierShortCode checks three upper-case letters, e.g. "SKM"
func ValidateSupplierShortCode(code string) error {
	if !supplierShortCodePattern.MatchString(code) {
		return shared.NewValidationError("supplier short code %q must be three upper-case letters", code)
	}
	return nil
}

// Material is an item the mill buys and stocks
type Material struct {
	shared.BaseAggregateRoot
	Name        string
	Unit        string
	Category    MaterialCategory
	ShortCode   string
	TaxRate     decimal.Decimal
	CurrentCost decimal.Decimal
	Active      bool
}

// NewMaterial creates a validated material
func NewMaterial(name, unit string, category MaterialCategory, shortCode string, taxRate decimal.Decimal) (*Material, error) {
	m := &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Unit:              strings.TrimSpace(unit),
		Category:          category,
		ShortCode:         strings.ToUpper(strings.TrimSpace(shortCode)),
		TaxRate:           taxRate,
		CurrentCost:       decimal.Zero,
		Active:            true,
	}
	if m.Unit == "" {
		m.Unit = "kg"
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the material's invariants
func (m *Material) Validate() error {
	if m.Name == "" {
		return shared.NewValidationError("material name is required")
	}
	if !m.Category.IsValid() {
		return shared.NewValidationError("invalid material category: %s", m.Category)
	}
	if m.ShortCode != "" {
		if err := ValidateMaterialShortCode(m.ShortCode); err != nil {
			return err
		}
	}
	if m.TaxRate.IsNegative() {
		return shared.NewValidationError("tax rate cannot be negative")
	}
	return nil
}

// RefreshCost copies the material lot's weighted average into CurrentCost
func (m *Material) RefreshCost(avg decimal.Decimal) {
	m.CurrentCost = avg
	m.Touch()
}

// IsSeed reports whether the material can feed a crushing batch
func (m *Material) IsSeed() bool {
	return m.Category == CategorySeeds
}

// IsBulkOil reports whether the material is oil bought in bulk
func (m *Material) IsBulkOil() bool {
	return m.Category == CategoryBulkOil
}

// Supplier sells materials to the mill
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string
	ShortCode     string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	GSTNumber     string
	Active        bool
}

// NewSupplier creates a validated supplier
func NewSupplier(name, shortCode string) (*Supplier, error) {
	s := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		ShortCode:         strings.ToUpper(strings.TrimSpace(shortCode)),
		Active:            true,
	}
	if s.Name == "" {
		return nil, shared.NewValidationError("supplier name is required")
	}
	if s.ShortCode != "" {
		if err := ValidateSupplierShortCode(s.ShortCode); err != nil {
			return nil, err
		}
	}
	return s, nil
}
