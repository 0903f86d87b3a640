package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
)

// InventoryService exposes the ledger for lot queries and manual postings
type InventoryService struct {
	scope        uow.TransactionScope
	repos        uow.Repositories
	costStrategy strategy.CostCalculationStrategy
	publisher    shared.EventPublisher
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope uow.TransactionScope, repos uow.Repositories, costStrategy strategy.CostCalculationStrategy) *InventoryService {
	return &InventoryService{
		scope:        scope,
		repos:        repos,
		costStrategy: costStrategy,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// ListLots lists lots matching the filter
func (s *InventoryService) ListLots(ctx context.Context, filter LotListFilter) ([]LotResponse, error) {
	lots, err := s.repos.Lots().List(ctx, inventory.LotFilter{
		Filter:     shared.Filter{Limit: filter.Limit, Offset: filter.Offset},
		LotType:    inventory.LotType(filter.LotType),
		Source:     inventory.LotSource(filter.Source),
		OilType:    filter.OilType,
		MaterialID: filter.MaterialID,
		InStock:    filter.InStock,
	})
	if err != nil {
		return nil, err
	}
	out := make([]LotResponse, len(lots))
	for i := range lots {
		out[i] = ToLotResponse(&lots[i])
	}
	return out, nil
}

// GetLot returns one lot
func (s *InventoryService) GetLot(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.repos.Lots().FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("inventory lot", id)
		}
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// ListMovements lists a lot's movements, newest first
func (s *InventoryService) ListMovements(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	if _, err := s.GetLot(ctx, lotID); err != nil {
		return nil, err
	}
	movements, err := s.repos.Movements().ListByLot(ctx, lotID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out, nil
}

// Receive posts a manual receipt
func (s *InventoryService) Receive(ctx context.Context, req ReceiveRequest) (*LedgerEntryResponse, error) {
	var (
		entry  *inventory.Entry
		events uow.Events
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		spec, err := resolveReceiptLot(ctx, repos, req)
		if err != nil {
			return err
		}

		ledger := inventory.NewLedger(repos.Lots(), repos.Movements(), s.costStrategy)
		entry, err = ledger.Receive(ctx, inventory.ReceiveCommand{
			Lot:       spec,
			Quantity:  req.Quantity,
			UnitCost:  req.UnitCost,
			Date:      req.Date,
			Reference: inventory.Reference{Type: inventory.ReferenceManual, Code: "MANUAL-RECEIPT"},
			Notes:     req.Notes,
			CreatedBy: req.CreatedBy,
		})
		if err != nil {
			return err
		}
		if spec.MaterialID != nil {
			if err := repos.Materials().UpdateCurrentCost(ctx, *spec.MaterialID, entry.Lot.WeightedAvgCost); err != nil {
				return err
			}
		}
		events.Collect(entry.Lot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher)
	return toEntryResponse(entry), nil
}

// Consume posts a manual consumption
func (s *InventoryService) Consume(ctx context.Context, req ConsumeRequest) (*LedgerEntryResponse, error) {
	var (
		entry  *inventory.Entry
		events uow.Events
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		ledger := inventory.NewLedger(repos.Lots(), repos.Movements(), s.costStrategy)
		var err error
		entry, err = ledger.Consume(ctx, inventory.ConsumeCommand{
			LotID:     req.LotID,
			Quantity:  req.Quantity,
			Date:      req.Date,
			Reference: inventory.Reference{Type: inventory.ReferenceManual, Code: "MANUAL-CONSUMPTION"},
			Notes:     req.Notes,
			CreatedBy: req.CreatedBy,
		})
		if err != nil {
			return err
		}
		if entry.Lot.MaterialID != nil {
			if err := repos.Materials().UpdateCurrentCost(ctx, *entry.Lot.MaterialID, entry.Lot.WeightedAvgCost); err != nil {
				return err
			}
		}
		events.Collect(entry.Lot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher)
	return toEntryResponse(entry), nil
}

func resolveReceiptLot(ctx context.Context, repos uow.Repositories, req ReceiveRequest) (inventory.LotSpec, error) {
	selectors := 0
	if req.LotID != nil {
		selectors++
	}
	if req.MaterialID != nil {
		selectors++
	}
	if strings.TrimSpace(req.OilType) != "" {
		selectors++
	}
	if selectors != 1 {
		return inventory.LotSpec{}, shared.NewValidationError("exactly one of lot_id, material_id or oil_type is required")
	}

	switch {
	case req.LotID != nil:
		lot, err := repos.Lots().FindByID(ctx, *req.LotID)
		if err != nil {
			if shared.IsNotFound(err) {
				return inventory.LotSpec{}, shared.NewNotFoundError("inventory lot", *req.LotID)
			}
			return inventory.LotSpec{}, err
		}
		return inventory.LotSpec{Key: lot.LotKey, Type: lot.LotType, Source: lot.Source, MaterialID: lot.MaterialID}, nil
	case req.MaterialID != nil:
		material, err := repos.Materials().FindByID(ctx, *req.MaterialID)
		if err != nil {
			if shared.IsNotFound(err) {
				return inventory.LotSpec{}, shared.NewNotFoundError("material", *req.MaterialID)
			}
			return inventory.LotSpec{}, err
		}
		return MaterialLotSpec(material, ""), nil
	default:
		oilType := inventory.NormalizeOilType(req.OilType)
		return inventory.LotSpec{
			Key:     inventory.ExtractionLotKey(oilType),
			Type:    inventory.LotTypeBulkOil,
			Source:  inventory.LotSourceExtraction,
			OilType: oilType,
		}, nil
	}
}

// MaterialLotSpec describes the lot a material is stocked in. Bulk oil
// bought in is a BULK_OIL lot so it can feed blends.
func MaterialLotSpec(m *masterdata.Material, traceableCode string) inventory.LotSpec {
	materialID := m.ID
	spec := inventory.LotSpec{
		Key:           inventory.MaterialLotKey(materialID),
		Type:          inventory.LotTypeMaterial,
		Source:        inventory.LotSourcePurchase,
		MaterialID:    &materialID,
		TraceableCode: traceableCode,
	}
	if m.IsBulkOil() {
		spec.Type = inventory.LotTypeBulkOil
		spec.OilType = OilTypeOfMaterial(m.Name)
	}
	return spec
}

// OilTypeOfMaterial derives an oil type from a bulk oil material name,
// e.g. "Groundnut Oil" is GROUNDNUT.
func OilTypeOfMaterial(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], " oil") {
		name = name[:len(name)-4]
	}
	return inventory.NormalizeOilType(name)
}
