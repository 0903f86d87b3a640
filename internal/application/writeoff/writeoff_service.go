// Package writeoff removes damaged, expired or lost stock from the ledger.
package writeoff

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/oilmill/backend/internal/domain/writeoff"
)

// WriteoffService records writeoffs against inventory lots
type WriteoffService struct {
	scope        uow.TransactionScope
	repos        uow.Repositories
	reports      report.Repository
	costStrategy strategy.CostCalculationStrategy
	publisher    shared.EventPublisher
}

// NewWriteoffService creates a new WriteoffService
func NewWriteoffService(
	scope uow.TransactionScope,
	repos uow.Repositories,
	reports report.Repository,
	costStrategy strategy.CostCalculationStrategy,
) *WriteoffService {
	return &WriteoffService{
		scope:        scope,
		repos:        repos,
		reports:      reports,
		costStrategy: costStrategy,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *WriteoffService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Reasons lists the active writeoff reasons
func (s *WriteoffService) Reasons(ctx context.Context) ([]ReasonResponse, error) {
	reasons, err := s.repos.WriteoffReasons().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ReasonResponse, len(reasons))
	for i, r := range reasons {
		out[i] = ReasonResponse{Code: r.Code, Description: r.Description, Category: r.Category}
	}
	return out, nil
}

// Record consumes the quantity from the lot at its weighted-average cost and
// stores the writeoff in the same transaction
func (s *WriteoffService) Record(ctx context.Context, req RecordWriteoffRequest) (*WriteoffResponse, error) {
	if (req.LotID == nil) == (req.MaterialID == nil) {
		return nil, shared.NewValidationError("exactly one of lot_id and material_id is required")
	}

	var (
		resp   WriteoffResponse
		events uow.Events
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		reason, err := repos.WriteoffReasons().FindByCode(ctx, req.ReasonCode)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewValidationError("unknown writeoff reason %q", req.ReasonCode)
			}
			return err
		}

		var lot *inventory.InventoryLot
		if req.LotID != nil {
			lot, err = repos.Lots().FindByIDForUpdate(ctx, *req.LotID)
		} else {
			lot, err = repos.Lots().FindByKeyForUpdate(ctx, inventory.MaterialLotKey(*req.MaterialID))
		}
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewNotFoundError("inventory lot", firstID(req.LotID, req.MaterialID))
			}
			return err
		}

		w, err := writeoff.NewWriteoff(writeoff.Input{
			LotID:        lot.ID,
			MaterialID:   lot.MaterialID,
			WriteoffDate: req.WriteoffDate,
			Quantity:     req.Quantity,
			ScrapValue:   req.ScrapValue,
			Reason:       *reason,
			ReferenceNo:  req.ReferenceNo,
			Notes:        req.Notes,
			CreatedBy:    req.CreatedBy,
		}, lot.LotKey, lot.WeightedAvgCost)
		if err != nil {
			return err
		}

		writeoffID := w.ID
		ledger := inventory.NewLedger(repos.Lots(), repos.Movements(), s.costStrategy)
		entry, err := ledger.Consume(ctx, inventory.ConsumeCommand{
			LotID:     lot.ID,
			Quantity:  w.Quantity,
			Date:      w.WriteoffDate,
			Reference: inventory.Reference{Type: inventory.ReferenceWriteoff, ID: &writeoffID, Code: w.ReasonCode},
			Notes:     w.Notes,
			CreatedBy: w.CreatedBy,
		})
		if err != nil {
			return err
		}
		if err := repos.Writeoffs().Create(ctx, w); err != nil {
			return err
		}
		events.Collect(entry.Lot, w)

		resp = ToWriteoffResponse(w)
		remaining := entry.Lot.ClosingStock
		resp.RemainingStock = &remaining
		if w.MaterialID != nil {
			if m, err := repos.Materials().FindByID(ctx, *w.MaterialID); err == nil {
				resp.MaterialName = m.Name
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher)
	return &resp, nil
}

// History lists writeoffs newest first with totals and a per-reason breakdown
func (s *WriteoffService) History(ctx context.Context, filter HistoryFilter) (*HistoryResponse, error) {
	rows, err := s.repos.Writeoffs().List(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}
	out := &HistoryResponse{Writeoffs: make([]WriteoffResponse, len(rows))}
	for i := range rows {
		out.Writeoffs[i] = ToWriteoffResponse(&rows[i])
	}
	if s.reports == nil {
		return out, nil
	}
	period := report.Filter{From: filter.From.OrNil(), To: filter.To.OrNil()}
	if out.Summary, err = s.reports.WriteoffSummary(ctx, period); err != nil {
		return nil, err
	}
	if out.ByReason, err = s.reports.WriteoffsByReason(ctx, period); err != nil {
		return nil, err
	}
	return out, nil
}

func firstID(ids ...*uuid.UUID) uuid.UUID {
	for _, id := range ids {
		if id != nil {
			return *id
		}
	}
	return uuid.Nil
}
