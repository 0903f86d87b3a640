package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Ledger is the single entry point for changing lot stock. Every Receive and
// Consume locks the lot row, mutates the aggregate, saves it with a version
// check and appends a StockMovement, all on the repositories it was built
// with. Build it from transaction-scoped repositories so the whole call
// commits or rolls back with the surrounding unit of work.
type Ledger struct {
	lots         LotRepository
	movements    MovementRepository
	costStrategy strategy.CostCalculationStrategy
}

// NewLedger creates a Ledger
func NewLedger(lots LotRepository, movements MovementRepository, costStrategy strategy.CostCalculationStrategy) *Ledger {
	return &Ledger{
		lots:         lots,
		movements:    movements,
		costStrategy: costStrategy,
	}
}

// ReceiveCommand adds stock to the lot named by Lot.Key, creating it from Lot when absent
type ReceiveCommand struct {
	Lot       LotSpec
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Date      valueobject.Date
	Reference Reference
	Notes     string
	CreatedBy string
}

// ConsumeCommand removes stock from a lot identified by LotID or, when LotID is nil, LotKey
type ConsumeCommand struct {
	LotID     uuid.UUID
	LotKey    string
	Quantity  decimal.Decimal
	Date      valueobject.Date
	Reference Reference
	Notes     string
	CreatedBy string
}

// Entry is the outcome of one ledger operation
type Entry struct {
	Lot      *InventoryLot
	Movement *StockMovement
	Created  bool
}

// Receive implements the weighted-average receipt:
// new_avg = (stock x avg + qty x unit_cost) / (stock + qty)
func (l *Ledger) Receive(ctx context.Context, cmd ReceiveCommand) (*Entry, error) {
	if !cmd.Quantity.IsPositive() {
		return nil, shared.NewValidationError("receipt quantity must be positive, got %s", cmd.Quantity)
	}
	if cmd.UnitCost.IsNegative() {
		return nil, shared.NewValidationError("unit cost cannot be negative, got %s", cmd.UnitCost)
	}
	if cmd.Date.IsZero() {
		return nil, shared.NewValidationError("receipt date is required")
	}

	lot, err := l.lots.FindByKeyForUpdate(ctx, cmd.Lot.Key)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		lot, err = NewInventoryLot(cmd.Lot, cmd.Date)
		if err != nil {
			return nil, err
		}
		created = true
	default:
		return nil, fmt.Errorf("load lot %s: %w", cmd.Lot.Key, err)
	}

	balanceBefore := lot.ClosingStock
	avgBefore := lot.WeightedAvgCost

	result, err := l.costStrategy.CalculateCost(ctx,
		strategy.CostContext{FallbackUnitCost: cmd.UnitCost},
		[]strategy.CostEntry{
			{Reference: lot.LotKey, Quantity: lot.ClosingStock, UnitCost: lot.WeightedAvgCost},
			{Reference: cmd.Reference.Code, Quantity: cmd.Quantity, UnitCost: cmd.UnitCost},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("calculate weighted average for %s: %w", lot.LotKey, err)
	}

	if err := lot.ApplyReceipt(cmd.Quantity, cmd.UnitCost, result.UnitCost, cmd.Date); err != nil {
		return nil, err
	}

	if created {
		// A fresh lot is inserted at version 1 with the receipt already applied.
		lot.Version = 1
		if err := l.lots.Create(ctx, lot); err != nil {
			return nil, fmt.Errorf("create lot %s: %w", lot.LotKey, err)
		}
	} else if err := l.lots.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}

	movement := newMovement(lot, MovementReceipt, cmd.Quantity, cmd.UnitCost, balanceBefore, avgBefore,
		cmd.Date, cmd.Reference, cmd.Notes, cmd.CreatedBy)
	if err := l.movements.Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("record receipt movement: %w", err)
	}

	return &Entry{Lot: lot, Movement: movement, Created: created}, nil
}

// Consume removes stock at the lot's current weighted average
func (l *Ledger) Consume(ctx context.Context, cmd ConsumeCommand) (*Entry, error) {
	if !cmd.Quantity.IsPositive() {
		return nil, shared.NewValidationError("consumption quantity must be positive, got %s", cmd.Quantity)
	}
	if cmd.Date.IsZero() {
		return nil, shared.NewValidationError("consumption date is required")
	}

	var (
		lot *InventoryLot
		err error
	)
	if cmd.LotID != uuid.Nil {
		lot, err = l.lots.FindByIDForUpdate(ctx, cmd.LotID)
	} else {
		lot, err = l.lots.FindByKeyForUpdate(ctx, cmd.LotKey)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("inventory lot", firstNonEmpty(cmd.LotKey, cmd.LotID.String()))
		}
		return nil, fmt.Errorf("load lot: %w", err)
	}

	balanceBefore := lot.ClosingStock
	if err := lot.ApplyConsumption(cmd.Quantity, cmd.Date); err != nil {
		return nil, err
	}
	if err := l.lots.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}

	movement := newMovement(lot, MovementConsumption, cmd.Quantity, lot.WeightedAvgCost, balanceBefore, lot.WeightedAvgCost,
		cmd.Date, cmd.Reference, cmd.Notes, cmd.CreatedBy)
	if err := l.movements.Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("record consumption movement: %w", err)
	}

	return &Entry{Lot: lot, Movement: movement}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
