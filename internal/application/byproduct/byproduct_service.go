// Package byproduct sells oil cake and sludge first-in first-out and feeds
// the realized prices back into the producing batches' oil cost.
package byproduct

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultLockTTL = 30 * time.Second

// ByProductService records by-product sales and reports stock and reconciliation
type ByProductService struct {
	scope     uow.TransactionScope
	repos     uow.Repositories
	reports   report.Repository
	allocator *byproduct.Allocator
	locker    shared.Locker
	lockTTL   time.Duration
	logger    *zap.Logger
	publisher shared.EventPublisher
}

// Option configures a ByProductService
type Option func(*ByProductService)

// WithLocker serializes sales of the same by-product type across instances
func WithLocker(locker shared.Locker, ttl time.Duration) Option {
	return func(s *ByProductService) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *ByProductService) {
		s.logger = logger
	}
}

// NewByProductService creates a new ByProductService
func NewByProductService(
	scope uow.TransactionScope,
	repos uow.Repositories,
	reports report.Repository,
	allocation strategy.LotAllocationStrategy,
	opts ...Option,
) *ByProductService {
	s := &ByProductService{
		scope:     scope,
		repos:     repos,
		reports:   reports,
		allocator: byproduct.NewAllocator(allocation),
		lockTTL:   defaultLockTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *ByProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Types lists the sellable by-product types
func (s *ByProductService) Types() []TypeResponse {
	out := make([]TypeResponse, len(byproduct.AllTypes))
	for i, t := range byproduct.AllTypes {
		out[i] = TypeResponse{Value: t.String(), Label: t.Label()}
	}
	return out
}

// RecordSale allocates a sale over the oldest lots and recomputes every
// batch it draws on. Lots, batches and the sale are written in one
// transaction; if stock is short nothing is written.
func (s *ByProductService) RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResponse, error) {
	t, err := byproduct.ParseType(req.ByProductType)
	if err != nil {
		return nil, err
	}
	input := byproduct.SaleInput{
		Type:          t,
		OilType:       strings.TrimSpace(req.OilType),
		Quantity:      req.Quantity,
		SaleRate:      req.SaleRate,
		BuyerName:     req.BuyerName,
		SaleDate:      req.SaleDate,
		InvoiceNumber: req.InvoiceNumber,
		TransportCost: req.TransportCost,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if s.locker != nil {
		unlock, err := s.locker.Obtain(ctx, "byproduct-sale:"+t.String(), s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				s.logger.Warn("release by-product sale lock", zap.Error(err))
			}
		}()
	}

	var (
		sale    *byproduct.Sale
		impacts []BatchImpact
		events  uow.Events
	)
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		lots, err := repos.ByProductLots().FindAvailableForUpdate(ctx, t, input.OilType)
		if err != nil {
			return err
		}
		allocations, err := s.allocator.Allocate(ctx, lots, input.Quantity, input.SaleRate)
		if err != nil {
			return err
		}

		touched := make(map[uuid.UUID]bool, len(allocations))
		var batchOrder []uuid.UUID
		soldPerBatch := make(map[uuid.UUID]decimal.Decimal)
		for _, a := range allocations {
			touched[a.LotID] = true
			if _, ok := soldPerBatch[a.BatchID]; !ok {
				batchOrder = append(batchOrder, a.BatchID)
				soldPerBatch[a.BatchID] = decimal.Zero
			}
			soldPerBatch[a.BatchID] = soldPerBatch[a.BatchID].Add(a.QuantityAllocated)
		}
		for _, lot := range lots {
			if !touched[lot.ID] {
				continue
			}
			if err := repos.ByProductLots().SaveWithLock(ctx, lot); err != nil {
				return err
			}
			events.Collect(lot)
		}

		for _, batchID := range batchOrder {
			batch, err := repos.Batches().FindByIDForUpdate(ctx, batchID)
			if err != nil {
				if shared.IsNotFound(err) {
					return shared.NewNotFoundError("batch", batchID)
				}
				return err
			}
			impact := BatchImpact{
				BatchID:         batch.ID,
				BatchCode:       batch.BatchCode,
				QuantitySold:    soldPerBatch[batchID],
				OldNetOilCost:   batch.NetOilCost,
				OldOilCostPerKg: batch.OilCostPerKg,
			}
			if err := batch.RecordByProductSale(t, soldPerBatch[batchID], input.SaleRate); err != nil {
				return err
			}
			if err := repos.Batches().SaveWithLock(ctx, batch); err != nil {
				return err
			}
			impact.NewNetOilCost = batch.NetOilCost
			impact.NewOilCostPerKg = batch.OilCostPerKg
			impacts = append(impacts, impact)
			events.Collect(batch)
		}

		sale, err = byproduct.NewSale(input, allocations)
		if err != nil {
			return err
		}
		if err := repos.ByProductSales().Create(ctx, sale); err != nil {
			return err
		}
		events.Collect(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher)

	s.logger.Info("by-product sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("type", t.String()),
		zap.String("quantity", sale.Quantity.String()),
		zap.Int("batches", len(impacts)),
	)

	resp := ToSaleResponse(sale)
	resp.BatchesUpdated = impacts
	return &resp, nil
}

// GetSale returns one sale with its allocations
func (s *ByProductService) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.repos.ByProductSales().FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("by-product sale", id)
		}
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// Inventory lists unsold lots oldest first with their age
func (s *ByProductService) Inventory(ctx context.Context, filter InventoryFilter) (*InventoryResponse, error) {
	var t byproduct.Type
	if filter.ByProductType != "" {
		var err error
		if t, err = byproduct.ParseType(filter.ByProductType); err != nil {
			return nil, err
		}
	}
	lots, err := s.repos.ByProductLots().List(ctx, byproduct.LotFilter{
		Filter:        shared.Filter{Limit: shared.MaxListLimit},
		Type:          t,
		OilType:       filter.OilType,
		AvailableOnly: true,
	})
	if err != nil {
		return nil, err
	}

	today := valueobject.Today()
	out := &InventoryResponse{Lots: make([]LotResponse, len(lots))}
	for i := range lots {
		l := &lots[i]
		out.Lots[i] = LotResponse{
			ID:                l.ID,
			BatchID:           l.BatchID,
			BatchCode:         l.BatchCode,
			ByProductType:     l.Type.String(),
			OilType:           l.OilType,
			QuantityProduced:  l.QuantityProduced,
			QuantityRemaining: l.QuantityRemaining,
			EstimatedRate:     l.EstimatedRate,
			EstimatedValue:    l.QuantityRemaining.Mul(l.EstimatedRate),
			ProductionDate:    l.ProductionDate,
			AgeDays:           l.AgeDays(today),
			Status:            string(l.Status),
		}
	}
	if s.reports != nil {
		if out.Summary, err = s.reports.ByProductStock(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SalesHistory lists sales newest first with per-type totals
func (s *ByProductService) SalesHistory(ctx context.Context, filter SalesFilter) (*SalesHistoryResponse, error) {
	var t byproduct.Type
	if filter.ByProductType != "" {
		var err error
		if t, err = byproduct.ParseType(filter.ByProductType); err != nil {
			return nil, err
		}
	}
	sales, err := s.repos.ByProductSales().List(ctx, filter.toDomain(t))
	if err != nil {
		return nil, err
	}
	out := &SalesHistoryResponse{Sales: make([]SaleResponse, len(sales))}
	for i := range sales {
		out.Sales[i] = ToSaleResponse(&sales[i])
	}
	if s.reports != nil {
		out.Summary, err = s.reports.ByProductSalesSummary(ctx, report.Filter{From: filter.From.OrNil(), To: filter.To.OrNil()})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Reconciliation compares each batch's estimated by-product credit with
// what its cake and sludge actually sold for
func (s *ByProductService) Reconciliation(ctx context.Context, filter ReconciliationFilter) ([]report.CostReconciliation, error) {
	if s.reports == nil {
		return nil, nil
	}
	return s.reports.CostReconciliation(ctx, filter.ToReport())
}
