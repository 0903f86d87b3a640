package writeoff

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Reason is a coded cause for writing stock off, e.g. DAMAGE or EXPIRY
type Reason struct {
	Code        string
	Description string
	Category    string
	Active      bool
}

// Input is a writeoff request; the cost comes from the lot at posting time
type Input struct {
	LotID        uuid.UUID
	MaterialID   *uuid.UUID
	WriteoffDate valueobject.Date
	Quantity     decimal.Decimal
	ScrapValue   decimal.Decimal
	Reason       Reason
	ReferenceNo  string
	Notes        string
	CreatedBy    string
}

// Writeoff removes stock from a lot at its weighted-average cost.
// NetLoss = TotalCost - ScrapValue.
type Writeoff struct {
	shared.BaseAggregateRoot
	LotID             uuid.UUID
	LotKey            string
	MaterialID        *uuid.UUID
	WriteoffDate      valueobject.Date
	Quantity          decimal.Decimal
	WeightedAvgCost   decimal.Decimal
	TotalCost         decimal.Decimal
	ScrapValue        decimal.Decimal
	NetLoss           decimal.Decimal
	ReasonCode        string
	ReasonDescription string
	ReferenceNo       string
	Notes             string
	CreatedBy         string
}

// Validate checks the request before the lot is touched
func (in Input) Validate() error {
	if in.LotID == uuid.Nil {
		return shared.NewValidationError("inventory lot is required")
	}
	if !in.Quantity.IsPositive() {
		return shared.NewValidationError("writeoff quantity must be positive")
	}
	if in.ScrapValue.IsNegative() {
		return shared.NewValidationError("scrap value cannot be negative")
	}
	if in.WriteoffDate.IsZero() {
		return shared.NewValidationError("writeoff date is required")
	}
	if strings.TrimSpace(in.Reason.Code) == "" {
		return shared.NewValidationError("reason code is required")
	}
	if !in.Reason.Active {
		return shared.NewValidationError("reason %s is not active", in.Reason.Code)
	}
	return nil
}

// NewWriteoff prices a writeoff at avgCost
func NewWriteoff(in Input, lotKey string, avgCost decimal.Decimal) (*Writeoff, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	total := in.Quantity.Mul(avgCost)
	return &Writeoff{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LotID:             in.LotID,
		LotKey:            lotKey,
		MaterialID:        in.MaterialID,
		WriteoffDate:      in.WriteoffDate,
		Quantity:          in.Quantity,
		WeightedAvgCost:   avgCost,
		TotalCost:         total,
		ScrapValue:        in.ScrapValue,
		NetLoss:           total.Sub(in.ScrapValue),
		ReasonCode:        in.Reason.Code,
		ReasonDescription: in.Reason.Description,
		ReferenceNo:       strings.TrimSpace(in.ReferenceNo),
		Notes:             in.Notes,
		CreatedBy:         in.CreatedBy,
	}, nil
}

// Filter narrows writeoff listings
type Filter struct {
	shared.Filter
	MaterialID *uuid.UUID
	ReasonCode string
}

// ReasonRepository reads the reason master
type ReasonRepository interface {
	FindByCode(ctx context.Context, code string) (*Reason, error)
	List(ctx context.Context) ([]Reason, error)
}

// Repository defines the interface for writeoff persistence
type Repository interface {
	Create(ctx context.Context, w *Writeoff) error
	List(ctx context.Context, filter Filter) ([]Writeoff, error)
}
