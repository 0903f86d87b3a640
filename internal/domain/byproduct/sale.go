package byproduct

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSale = "ByProductSale"

// EventTypeSaleRecorded is raised once a sale and its allocations are posted
const EventTypeSaleRecorded = "ByProductSaleRecorded"

// Allocation is the share of a sale drawn from one lot.
// CostAdjustment = QuantityAllocated x (OriginalEstimateRate - ActualSaleRate).
type Allocation struct {
	ID                   uuid.UUID
	SaleID               uuid.UUID
	LotID                uuid.UUID
	BatchID              uuid.UUID
	BatchCode            string
	QuantityAllocated    decimal.Decimal
	OriginalEstimateRate decimal.Decimal
	ActualSaleRate       decimal.Decimal
	CostAdjustmentPerKg  decimal.Decimal
	CostAdjustment       decimal.Decimal
}

// Revenue is what the allocated quantity fetched
func (a Allocation) Revenue() decimal.Decimal {
	return a.QuantityAllocated.Mul(a.ActualSaleRate)
}

// SaleInput carries a sale request
type SaleInput struct {
	Type          Type
	OilType       string
	Quantity      decimal.Decimal
	SaleRate      decimal.Decimal
	BuyerName     string
	SaleDate      valueobject.Date
	InvoiceNumber string
	TransportCost decimal.Decimal
	Notes         string
	CreatedBy     string
}

// Validate checks the sale request
func (in SaleInput) Validate() error {
	if !in.Type.IsValid() {
		return shared.NewValidationError("invalid by-product type: %s", in.Type)
	}
	if !in.Quantity.IsPositive() {
		return shared.NewValidationError("quantity sold must be positive")
	}
	if !in.SaleRate.IsPositive() {
		return shared.NewValidationError("sale rate must be positive")
	}
	if in.TransportCost.IsNegative() {
		return shared.NewValidationError("transport cost cannot be negative")
	}
	if strings.TrimSpace(in.BuyerName) == "" {
		return shared.NewValidationError("buyer name is required")
	}
	if in.SaleDate.IsZero() {
		return shared.NewValidationError("sale date is required")
	}
	return nil
}

// Sale is one by-product sale with the FIFO allocations that fulfilled it
type Sale struct {
	shared.BaseAggregateRoot
	SaleDate      valueobject.Date
	InvoiceNumber string
	BuyerName     string
	Type          Type
	OilType       string
	Quantity      decimal.Decimal
	SaleRate      decimal.Decimal
	TotalAmount   decimal.Decimal
	TransportCost decimal.Decimal
	NetRate       decimal.Decimal
	Notes         string
	CreatedBy     string
	Allocations   []Allocation
}

// NewSale builds the sale record for allocations already computed
func NewSale(in SaleInput, allocations []Allocation) (*Sale, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return nil, shared.NewValidationError("a sale needs at least one allocation")
	}
	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleDate:          in.SaleDate,
		InvoiceNumber:     strings.TrimSpace(in.InvoiceNumber),
		BuyerName:         strings.TrimSpace(in.BuyerName),
		Type:              in.Type,
		OilType:           strings.TrimSpace(in.OilType),
		Quantity:          in.Quantity,
		SaleRate:          in.SaleRate,
		TotalAmount:       in.Quantity.Mul(in.SaleRate),
		TransportCost:     in.TransportCost,
		NetRate:           in.SaleRate.Sub(in.TransportCost.Div(in.Quantity)),
		Notes:             in.Notes,
		CreatedBy:         in.CreatedBy,
	}
	if s.InvoiceNumber == "" {
		s.InvoiceNumber = DefaultInvoiceNumber(s.SaleDate, s.BuyerName)
	}
	for i := range allocations {
		allocations[i].SaleID = s.ID
	}
	s.Allocations = allocations
	s.AddDomainEvent(&SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Type:            s.Type,
		Quantity:        s.Quantity,
		SaleRate:        s.SaleRate,
		TotalAdjustment: s.TotalAdjustment(),
	})
	return s, nil
}

// TotalAdjustment sums the allocation cost adjustments
func (s *Sale) TotalAdjustment() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Allocations {
		total = total.Add(a.CostAdjustment)
	}
	return total
}

// DefaultInvoiceNumber is INV-YYYYMMDD-<first three letters of the buyer>
func DefaultInvoiceNumber(date valueobject.Date, buyer string) string {
	var prefix []rune
	for _, r := range strings.ToUpper(buyer) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			prefix = append(prefix, r)
		}
		if len(prefix) == 3 {
			break
		}
	}
	if len(prefix) == 0 {
		prefix = []rune("GEN")
	}
	return fmt.Sprintf("INV-%s-%s", date.Compact(), string(prefix))
}

// SaleRecordedEvent is raised when a by-product sale is posted
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleID          uuid.UUID       `json:"sale_id"`
	Type            Type            `json:"byproduct_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	SaleRate        decimal.Decimal `json:"sale_rate"`
	TotalAdjustment decimal.Decimal `json:"total_adjustment"`
}
