// Package purchase posts supplier invoices: landed cost per line, traceable
// codes and a weighted-average receipt into each material's lot.
package purchase

import (
	"context"

	"github.com/google/uuid"
	appinventory "github.com/oilmill/backend/internal/application/inventory"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/purchase"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/oilmill/backend/internal/domain/traceability"
	"github.com/shopspring/decimal"
)

// PurchaseService records and lists purchases
type PurchaseService struct {
	scope        uow.TransactionScope
	repos        uow.Repositories
	reports      report.Repository
	costStrategy strategy.CostCalculationStrategy
	publisher    shared.EventPublisher
}

// NewPurchaseService creates a new PurchaseService. reports may be nil, in
// which case history comes back without a summary.
func NewPurchaseService(
	scope uow.TransactionScope,
	repos uow.Repositories,
	reports report.Repository,
	costStrategy strategy.CostCalculationStrategy,
) *PurchaseService {
	return &PurchaseService{
		scope:        scope,
		repos:        repos,
		reports:      reports,
		costStrategy: costStrategy,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *PurchaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Record posts a purchase. Every line is received into its material lot at
// the landed cost; the whole invoice commits or nothing does.
func (s *PurchaseService) Record(ctx context.Context, req RecordPurchaseRequest) (*PurchaseResponse, error) {
	var (
		resp   PurchaseResponse
		events uow.Events
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		supplier, err := repos.Suppliers().FindByID(ctx, req.SupplierID)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewNotFoundError("supplier", req.SupplierID)
			}
			return err
		}

		materials := make(map[uuid.UUID]*masterdata.Material, len(req.Items))
		lines := make([]purchase.LineInput, len(req.Items))
		for i, item := range req.Items {
			material, ok := materials[item.MaterialID]
			if !ok {
				material, err = repos.Materials().FindByID(ctx, item.MaterialID)
				if err != nil {
					if shared.IsNotFound(err) {
						return shared.NewNotFoundError("material", item.MaterialID)
					}
					return err
				}
				materials[item.MaterialID] = material
			}
			taxRate := material.TaxRate
			if item.TaxRate != nil {
				taxRate = *item.TaxRate
			}
			lines[i] = purchase.LineInput{
				MaterialID: item.MaterialID,
				Quantity:   item.Quantity,
				Rate:       item.Rate,
				TaxRate:    taxRate,
				Transport:  item.TransportCost,
				Handling:   item.HandlingCharges,
			}
		}

		p, err := purchase.NewPurchase(req.SupplierID, req.InvoiceRef, req.PurchaseDate, req.TransportCost, req.HandlingCharges, lines)
		if err != nil {
			return err
		}
		p.Notes = req.Notes
		p.CreatedBy = req.CreatedBy

		fy := p.PurchaseDate.FinancialYear()
		for i := range p.Items {
			material := materials[p.Items[i].MaterialID]
			if material.ShortCode == "" || supplier.ShortCode == "" {
				continue
			}
			serial, err := repos.Serials().Next(ctx, material.ID, supplier.ID, fy)
			if err != nil {
				return err
			}
			code, err := traceability.PurchaseCode(material.ShortCode, serial, p.PurchaseDate, supplier.ShortCode)
			if err != nil {
				return err
			}
			p.Items[i].TraceableCode = code
		}

		if err := repos.Purchases().Create(ctx, p); err != nil {
			return err
		}

		ledger := inventory.NewLedger(repos.Lots(), repos.Movements(), s.costStrategy)
		avgCosts := make(map[uuid.UUID]decimal.Decimal, len(materials))
		for _, item := range p.Items {
			material := materials[item.MaterialID]
			purchaseID := p.ID
			entry, err := ledger.Receive(ctx, inventory.ReceiveCommand{
				Lot:      appinventory.MaterialLotSpec(material, item.TraceableCode),
				Quantity: item.Quantity,
				UnitCost: item.LandedCostPerUnit,
				Date:     p.PurchaseDate,
				Reference: inventory.Reference{
					Type: inventory.ReferencePurchase,
					ID:   &purchaseID,
					Code: p.InvoiceRef,
				},
				CreatedBy: req.CreatedBy,
			})
			if err != nil {
				return err
			}
			avgCosts[item.MaterialID] = entry.Lot.WeightedAvgCost
			events.Collect(entry.Lot)
		}
		for materialID, avg := range avgCosts {
			if err := repos.Materials().UpdateCurrentCost(ctx, materialID, avg); err != nil {
				return err
			}
		}

		events.Collect(p)
		resp = ToPurchaseResponse(p)
		resp.SupplierName = supplier.Name
		for i := range resp.Items {
			resp.Items[i].MaterialName = materials[resp.Items[i].MaterialID].Name
			avg := avgCosts[resp.Items[i].MaterialID]
			resp.Items[i].NewWeightedAvgCost = &avg
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher)
	return &resp, nil
}

// Get returns one purchase
func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	p, err := s.repos.Purchases().FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("purchase", id)
		}
		return nil, err
	}
	resp := ToPurchaseResponse(p)
	s.decorate(ctx, []*PurchaseResponse{&resp})
	return &resp, nil
}

// History lists purchases, newest first, with totals for the whole period
func (s *PurchaseService) History(ctx context.Context, filter HistoryFilter) (*HistoryResponse, error) {
	purchases, err := s.repos.Purchases().List(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}
	out := &HistoryResponse{Purchases: make([]PurchaseResponse, len(purchases))}
	refs := make([]*PurchaseResponse, len(purchases))
	for i := range purchases {
		out.Purchases[i] = ToPurchaseResponse(&purchases[i])
		refs[i] = &out.Purchases[i]
	}
	s.decorate(ctx, refs)

	if s.reports != nil {
		out.Summary, err = s.reports.PurchaseSummary(ctx, report.Filter{
			From: filter.From.OrNil(),
			To:   filter.To.OrNil(),
		}, filter.MaterialID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decorate fills supplier and material names. Lookups that fail leave the
// name empty.
func (s *PurchaseService) decorate(ctx context.Context, purchases []*PurchaseResponse) {
	suppliers := make(map[uuid.UUID]string)
	materials := make(map[uuid.UUID]string)
	for _, p := range purchases {
		name, ok := suppliers[p.SupplierID]
		if !ok {
			if sup, err := s.repos.Suppliers().FindByID(ctx, p.SupplierID); err == nil {
				name = sup.Name
			}
			suppliers[p.SupplierID] = name
		}
		p.SupplierName = name

		for i := range p.Items {
			id := p.Items[i].MaterialID
			mname, ok := materials[id]
			if !ok {
				if m, err := s.repos.Materials().FindByID(ctx, id); err == nil {
					mname = m.Name
				}
				materials[id] = mname
			}
			p.Items[i].MaterialName = mname
		}
	}
}
