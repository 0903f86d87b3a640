package purchase

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineInput is one requested purchase line before costing
type LineInput struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
	Rate       decimal.Decimal
	TaxRate    decimal.Decimal
	Transport  decimal.Decimal
	Handling   decimal.Decimal
}

// Item is a costed purchase line
type Item struct {
	ID                 uuid.UUID
	PurchaseID         uuid.UUID
	MaterialID         uuid.UUID
	Quantity           decimal.Decimal
	Rate               decimal.Decimal
	Amount             decimal.Decimal
	TaxRate            decimal.Decimal
	Transport          decimal.Decimal
	Handling           decimal.Decimal
	AllocatedTransport decimal.Decimal
	AllocatedHandling  decimal.Decimal
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	TotalCost          decimal.Decimal
	LandedCostPerUnit  decimal.Decimal
	TraceableCode      string
}

// Purchase is an immutable supplier invoice. Header transport and handling
// are spread over the lines in proportion to line value; the last line takes
// the rounding remainder so the lines always add up to the header.
type Purchase struct {
	shared.BaseAggregateRoot
	SupplierID      uuid.UUID
	InvoiceRef      string
	PurchaseDate    valueobject.Date
	TransportCost   decimal.Decimal
	HandlingCharges decimal.Decimal
	Items           []Item
	SubtotalAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalCost       decimal.Decimal
	Notes           string
	CreatedBy       string
}

// NewPurchase validates the header and lines and computes every line's landed cost
func NewPurchase(
	supplierID uuid.UUID,
	invoiceRef string,
	purchaseDate valueobject.Date,
	transport, handling decimal.Decimal,
	lines []LineInput,
) (*Purchase, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier is required")
	}
	if strings.TrimSpace(invoiceRef) == "" {
		return nil, shared.NewValidationError("invoice reference is required")
	}
	if purchaseDate.IsZero() {
		return nil, shared.NewValidationError("purchase date is required")
	}
	if transport.IsNegative() || handling.IsNegative() {
		return nil, shared.NewValidationError("transport and handling charges cannot be negative")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("at least one purchase item is required")
	}

	totalValue := decimal.Zero
	for i, line := range lines {
		if err := validateLine(i, line); err != nil {
			return nil, err
		}
		totalValue = totalValue.Add(line.Quantity.Mul(line.Rate))
	}

	p := &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		InvoiceRef:        strings.TrimSpace(invoiceRef),
		PurchaseDate:      purchaseDate,
		TransportCost:     transport,
		HandlingCharges:   handling,
		Items:             make([]Item, 0, len(lines)),
		SubtotalAmount:    decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalCost:         decimal.Zero,
	}

	transportLeft, handlingLeft := transport, handling
	for i, line := range lines {
		amount := line.Quantity.Mul(line.Rate)

		var allocTransport, allocHandling decimal.Decimal
		if i == len(lines)-1 {
			allocTransport, allocHandling = transportLeft, handlingLeft
		} else {
			share := amount.Div(totalValue)
			allocTransport = transport.Mul(share).Round(2)
			allocHandling = handling.Mul(share).Round(2)
			transportLeft = transportLeft.Sub(allocTransport)
			handlingLeft = handlingLeft.Sub(allocHandling)
		}

		item := costLine(line, allocTransport, allocHandling)
		item.ID = uuid.New()
		item.PurchaseID = p.ID
		p.Items = append(p.Items, item)

		p.SubtotalAmount = p.SubtotalAmount.Add(item.Subtotal)
		p.TaxAmount = p.TaxAmount.Add(item.TaxAmount)
		p.TotalCost = p.TotalCost.Add(item.TotalCost)
	}

	p.AddDomainEvent(NewPurchaseRecordedEvent(p))
	return p, nil
}

func validateLine(index int, line LineInput) error {
	if line.MaterialID == uuid.Nil {
		return shared.NewValidationError("item %d: material is required", index+1)
	}
	if !line.Quantity.IsPositive() {
		return shared.NewValidationError("item %d: quantity must be positive", index+1)
	}
	if !line.Rate.IsPositive() {
		return shared.NewValidationError("item %d: rate must be positive", index+1)
	}
	if line.TaxRate.IsNegative() {
		return shared.NewValidationError("item %d: tax rate cannot be negative", index+1)
	}
	if line.Transport.IsNegative() || line.Handling.IsNegative() {
		return shared.NewValidationError("item %d: charges cannot be negative", index+1)
	}
	return nil
}

// costLine applies landed cost = (qty x rate + charges) x (1 + tax/100) / qty
func costLine(line LineInput, allocTransport, allocHandling decimal.Decimal) Item {
	amount := line.Quantity.Mul(line.Rate)
	subtotal := amount.
		Add(line.Transport).Add(line.Handling).
		Add(allocTransport).Add(allocHandling)
	tax := subtotal.Mul(line.TaxRate).Div(hundred)
	total := subtotal.Add(tax)

	return Item{
		MaterialID:         line.MaterialID,
		Quantity:           line.Quantity,
		Rate:               line.Rate,
		Amount:             amount,
		TaxRate:            line.TaxRate,
		Transport:          line.Transport,
		Handling:           line.Handling,
		AllocatedTransport: allocTransport,
		AllocatedHandling:  allocHandling,
		Subtotal:           subtotal,
		TaxAmount:          tax,
		TotalCost:          total,
		LandedCostPerUnit:  total.Div(line.Quantity),
	}
}

// LandedCostPerUnit is the single-line landed cost formula
func LandedCostPerUnit(quantity, rate, transport, handling, taxRate decimal.Decimal) decimal.Decimal {
	return costLine(LineInput{Quantity: quantity, Rate: rate, TaxRate: taxRate}, transport, handling).LandedCostPerUnit
}
