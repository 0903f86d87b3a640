package purchase

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchase = "Purchase"

// EventTypePurchaseRecorded is raised once a purchase has been costed
const EventTypePurchaseRecorded = "PurchaseRecorded"

// PurchaseRecordedEvent is raised when a purchase is recorded
type PurchaseRecordedEvent struct {
	shared.BaseDomainEvent
	PurchaseID uuid.UUID       `json:"purchase_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	InvoiceRef string          `json:"invoice_ref"`
	ItemCount  int             `json:"item_count"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// NewPurchaseRecordedEvent creates a new PurchaseRecordedEvent
func NewPurchaseRecordedEvent(p *Purchase) *PurchaseRecordedEvent {
	return &PurchaseRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseRecorded, AggregateTypePurchase, p.ID),
		PurchaseID:      p.ID,
		SupplierID:      p.SupplierID,
		InvoiceRef:      p.InvoiceRef,
		ItemCount:       len(p.Items),
		TotalCost:       p.TotalCost,
	}
}
