// Package blending mixes bulk oil lots into new blended lots.
package blending

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/blending"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
)

// BlendingService records blends and lists the oil available to blend
type BlendingService struct {
	scope        uow.TransactionScope
	repos        uow.Repositories
	reports      report.Repository
	costStrategy strategy.CostCalculationStrategy
	unitCode     string
	publisher    shared.EventPublisher
}

// NewBlendingService creates a new BlendingService
func NewBlendingService(
	scope uow.TransactionScope,
	repos uow.Repositories,
	reports report.Repository,
	costStrategy strategy.CostCalculationStrategy,
	unitCode string,
) *BlendingService {
	return &BlendingService{
		scope:        scope,
		repos:        repos,
		reports:      reports,
		costStrategy: costStrategy,
		unitCode:     unitCode,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *BlendingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// OilTypes lists the oil types that have bulk oil in stock
func (s *BlendingService) OilTypes(ctx context.Context) ([]string, error) {
	lots, err := s.repos.Lots().List(ctx, inventory.LotFilter{
		Filter:  shared.Filter{Limit: shared.MaxListLimit},
		LotType: inventory.LotTypeBulkOil,
		InStock: true,
	})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, l := range lots {
		if l.OilType == "" || seen[l.OilType] {
			continue
		}
		seen[l.OilType] = true
		out = append(out, l.OilType)
	}
	sort.Strings(out)
	return out, nil
}

// SourceLots lists the bulk oil lots of an oil type with stock left:
// extracted, blended and bought-in oil alike
func (s *BlendingService) SourceLots(ctx context.Context, oilType string) ([]SourceLotResponse, error) {
	if strings.TrimSpace(oilType) == "" {
		return nil, shared.NewValidationError("oil type is required")
	}
	lots, err := s.repos.Lots().List(ctx, inventory.LotFilter{
		Filter:  shared.Filter{Limit: shared.MaxListLimit},
		LotType: inventory.LotTypeBulkOil,
		OilType: oilType,
		InStock: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]SourceLotResponse, len(lots))
	for i := range lots {
		out[i] = toSourceLotResponse(&lots[i])
	}
	return out, nil
}

// CreateBlend prices the components at their lots' current weighted average,
// consumes them and receives the blend into its own lot, all in one
// transaction.
func (s *BlendingService) CreateBlend(ctx context.Context, req CreateBlendRequest) (*BlendResponse, error) {
	inputs := make([]blending.ComponentInput, len(req.Components))
	for i, c := range req.Components {
		inputs[i] = blending.ComponentInput{SourceLotID: c.SourceLotID, Percentage: c.Percentage}
	}
	if err := blending.ValidatePercentages(inputs); err != nil {
		return nil, err
	}

	var (
		blend  *blending.Blend
		events uow.Events
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		for i := range inputs {
			lot, err := repos.Lots().FindByIDForUpdate(ctx, inputs[i].SourceLotID)
			if err != nil {
				if shared.IsNotFound(err) {
					return shared.NewNotFoundError("inventory lot", inputs[i].SourceLotID)
				}
				return err
			}
			if lot.LotType != inventory.LotTypeBulkOil {
				return shared.NewValidationError("lot %s does not hold bulk oil", lot.LotKey)
			}
			inputs[i].SourceType = lot.Source
			inputs[i].SourceReferenceID = lot.SourceReferenceID
			inputs[i].OilType = lot.OilType
			inputs[i].TraceableCode = lot.TraceableCode
			inputs[i].CostPerUnit = lot.WeightedAvgCost
		}

		var err error
		blend, err = blending.NewBlend(blending.BlendInput{
			Description:   req.Description,
			BlendDate:     req.BlendDate,
			TotalQuantity: req.TotalQuantity,
			Components:    inputs,
			UnitCode:      s.unitCode,
			CreatedBy:     req.CreatedBy,
		})
		if err != nil {
			return err
		}

		blendID := blend.ID
		ref := inventory.Reference{Type: inventory.ReferenceBlend, ID: &blendID, Code: blend.BlendCode}
		ledger := inventory.NewLedger(repos.Lots(), repos.Movements(), s.costStrategy)
		for _, c := range blend.Components {
			entry, err := ledger.Consume(ctx, inventory.ConsumeCommand{
				LotID:     c.SourceLotID,
				Quantity:  c.QuantityUsed,
				Date:      blend.BlendDate,
				Reference: ref,
				CreatedBy: req.CreatedBy,
			})
			if err != nil {
				return err
			}
			events.Collect(entry.Lot)
		}

		if err := repos.Blends().Create(ctx, blend); err != nil {
			return err
		}
		entry, err := ledger.Receive(ctx, inventory.ReceiveCommand{
			Lot: inventory.LotSpec{
				Key:               inventory.BlendLotKey(blend.ID),
				Type:              inventory.LotTypeBulkOil,
				Source:            inventory.LotSourceBlended,
				OilType:           blend.OilType,
				SourceReferenceID: &blendID,
				TraceableCode:     blend.TraceableCode,
			},
			Quantity:  blend.TotalQuantity,
			UnitCost:  blend.WeightedAvgCost,
			Date:      blend.BlendDate,
			Reference: ref,
			CreatedBy: req.CreatedBy,
		})
		if err != nil {
			return err
		}
		if err := repos.Blends().SetLot(ctx, blend.ID, entry.Lot.ID); err != nil {
			return err
		}
		blend.AssignLot(entry.Lot.ID)
		events.Collect(entry.Lot, blend)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher)

	resp := ToBlendResponse(blend)
	return &resp, nil
}

// GetBlend returns one blend with its components
func (s *BlendingService) GetBlend(ctx context.Context, id uuid.UUID) (*BlendResponse, error) {
	blend, err := s.repos.Blends().FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("blend", id)
		}
		return nil, err
	}
	resp := ToBlendResponse(blend)
	return &resp, nil
}

// History lists blends newest first with totals for the filter
func (s *BlendingService) History(ctx context.Context, filter HistoryFilter) (*HistoryResponse, error) {
	blends, err := s.repos.Blends().List(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}
	out := &HistoryResponse{Blends: make([]BlendResponse, len(blends))}
	for i := range blends {
		out.Blends[i] = ToBlendResponse(&blends[i])
	}
	if s.reports != nil {
		out.Summary, err = s.reports.BlendSummary(ctx, report.Filter{
			From:    filter.From.OrNil(),
			To:      filter.To.OrNil(),
			OilType: filter.OilType,
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
