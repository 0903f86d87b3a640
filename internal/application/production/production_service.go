// Package production records extraction batches: seed out of stock, oil into
// the extraction lot, cake and sludge into by-product lots.
package production

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/domain/traceability"
	"github.com/shopspring/decimal"
)

// Settings are the mill-level production settings
type Settings struct {
	UnitCode          string
	DefaultCakeRate   decimal.Decimal
	DefaultSludgeRate decimal.Decimal
}

// ProductionService records and reports extraction batches
type ProductionService struct {
	scope        uow.TransactionScope
	repos        uow.Repositories
	reports      report.Repository
	costStrategy strategy.CostCalculationStrategy
	settings     Settings
	publisher    shared.EventPublisher
}

// NewProductionService creates a new ProductionService
func NewProductionService(
	scope uow.TransactionScope,
	repos uow.Repositories,
	reports report.Repository,
	costStrategy strategy.CostCalculationStrategy,
	settings Settings,
) *ProductionService {
	return &ProductionService{
		scope:        scope,
		repos:        repos,
		reports:      reports,
		costStrategy: costStrategy,
		settings:     settings,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *ProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// RecordBatch posts a batch in one transaction: seed consumption, cost
// capture, oil receipt and by-product lots.
func (s *ProductionService) RecordBatch(ctx context.Context, req RecordBatchRequest) (*BatchResponse, error) {
	var (
		batch     *production.Batch
		seed      *masterdata.Material
		timeEntry *costing.TimeEntry
		events    uow.Events
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		seed, err = repos.Materials().FindByID(ctx, req.SeedMaterialID)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewNotFoundError("seed material", req.SeedMaterialID)
			}
			return err
		}
		if !seed.IsSeed() {
			return shared.NewValidationError("material %s is not a seed", seed.Name)
		}

		crushingHours := req.CrushingHours
		timeEntry = nil
		if req.TimeTracking != nil {
			if timeEntry, err = req.TimeTracking.toDomain(); err != nil {
				return err
			}
			crushingHours = timeEntry.BilledHours
		}

		details, overrides, err := s.buildCostDetails(ctx, repos, req, crushingHours, timeEntry != nil)
		if err != nil {
			return err
		}
		cakeRate, sludgeRate, err := s.resolveRates(ctx, repos, req)
		if err != nil {
			return err
		}

		seedKey := inventory.MaterialLotKey(seed.ID)
		seedLot, err := repos.Lots().FindByKeyForUpdate(ctx, seedKey)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewInsufficientStockError(seed.Name, decimal.Zero, req.SeedQtyBeforeDrying)
			}
			return err
		}

		seedCost := req.SeedQtyBeforeDrying.Mul(seedLot.WeightedAvgCost)
		if req.SeedCostTotal != nil {
			seedCost = *req.SeedCostTotal
		}

		purchaseCode := strings.TrimSpace(req.SeedPurchaseCode)
		if purchaseCode == "" {
			if purchaseCode, err = s.latestPurchaseCode(ctx, repos, seed.ID); err != nil {
				return err
			}
		}
		traceableCode, err := s.traceableCode(purchaseCode, seed.ShortCode)
		if err != nil {
			return err
		}

		batch, err = production.NewBatch(production.BatchInput{
			OilType:             req.OilType,
			Description:         req.Description,
			ProductionDate:      req.ProductionDate,
			SeedMaterialID:      seed.ID,
			SeedLotID:           seedLot.ID,
			SeedPurchaseCode:    purchaseCode,
			TraceableCode:       traceableCode,
			SeedQtyBeforeDrying: req.SeedQtyBeforeDrying,
			SeedQtyAfterDrying:  req.SeedQtyAfterDrying,
			SeedCostTotal:       seedCost,
			OilYield:            req.OilYield,
			CakeYield:           req.CakeYield,
			SludgeYield:         req.SludgeYield,
			CakeEstimatedRate:   cakeRate,
			SludgeEstimatedRate: sludgeRate,
			CrushingHours:       crushingHours,
			CostDetails:         details,
			CreatedBy:           req.CreatedBy,
		})
		if err != nil {
			return err
		}

		exists, err := repos.Batches().ExistsByCode(ctx, batch.BatchCode)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewValidationError("batch code %s already exists", batch.BatchCode)
		}

		batchID := batch.ID
		ref := inventory.Reference{Type: inventory.ReferenceBatch, ID: &batchID, Code: batch.BatchCode}
		ledger := inventory.NewLedger(repos.Lots(), repos.Movements(), s.costStrategy)

		seedEntry, err := ledger.Consume(ctx, inventory.ConsumeCommand{
			LotID:     seedLot.ID,
			Quantity:  req.SeedQtyBeforeDrying,
			Date:      batch.ProductionDate,
			Reference: ref,
			CreatedBy: req.CreatedBy,
		})
		if err != nil {
			return err
		}
		events.Collect(seedEntry.Lot)

		if batch.OilYield.IsPositive() {
			oilType := inventory.NormalizeOilType(batch.OilType)
			oilEntry, err := ledger.Receive(ctx, inventory.ReceiveCommand{
				Lot: inventory.LotSpec{
					Key:           inventory.ExtractionLotKey(oilType),
					Type:          inventory.LotTypeBulkOil,
					Source:        inventory.LotSourceExtraction,
					OilType:       oilType,
					TraceableCode: batch.TraceableCode,
				},
				Quantity:  batch.OilYield,
				UnitCost:  batch.InventoryUnitCost(),
				Date:      batch.ProductionDate,
				Reference: ref,
				CreatedBy: req.CreatedBy,
			})
			if err != nil {
				return err
			}
			batch.AssignOilLot(oilEntry.Lot.ID)
			events.Collect(oilEntry.Lot)
		}

		if err := repos.Batches().Create(ctx, batch); err != nil {
			return err
		}
		if timeEntry != nil {
			timeEntry.BatchID = batch.ID
			if err := repos.TimeEntries().Create(ctx, timeEntry); err != nil {
				return err
			}
		}
		for _, o := range overrides {
			if err := repos.CostOverrides().Create(ctx, o.For(batch.ID)); err != nil {
				return err
			}
		}

		outputs := []struct {
			t    byproduct.Type
			qty  decimal.Decimal
			rate decimal.Decimal
		}{
			{byproduct.TypeOilCake, batch.CakeYield, batch.CakeEstimatedRate},
			{byproduct.TypeSludge, batch.SludgeYield, batch.SludgeEstimatedRate},
		}
		for _, out := range outputs {
			if !out.qty.IsPositive() {
				continue
			}
			lot, err := byproduct.NewLot(batch.ID, batch.BatchCode, out.t, batch.OilType, out.qty, out.rate, batch.ProductionDate)
			if err != nil {
				return err
			}
			if err := repos.ByProductLots().Create(ctx, lot); err != nil {
				return err
			}
			events.Collect(lot)
		}

		events.Collect(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher)

	resp := ToBatchResponse(batch)
	resp.SeedMaterialName = seed.Name
	if timeEntry != nil {
		resp.TimeEntries = []TimeEntryResponse{toTimeEntryResponse(timeEntry)}
	}
	return &resp, nil
}

// buildCostDetails prices the requested costs. With tracked time every
// per-hour element the request left out is added at crushingHours. Each
// override rate yields an override entry, bound to the batch once it exists.
func (s *ProductionService) buildCostDetails(
	ctx context.Context,
	repos uow.Repositories,
	req RecordBatchRequest,
	crushingHours decimal.Decimal,
	tracked bool,
) ([]costing.CostDetail, []*costing.OverrideEntry, error) {
	var ids []uuid.UUID
	requested := make(map[uuid.UUID]bool)
	for _, d := range req.CostDetails {
		if d.ElementID != nil {
			ids = append(ids, *d.ElementID)
			requested[*d.ElementID] = true
		}
	}
	elements := make(map[uuid.UUID]*costing.CostElement, len(ids))
	if len(ids) > 0 {
		found, err := repos.CostElements().FindByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for i := range found {
			elements[found[i].ID] = &found[i]
		}
	}

	details := make([]costing.CostDetail, 0, len(req.CostDetails))
	var overrides []*costing.OverrideEntry
	for _, d := range req.CostDetails {
		name, category, masterRate := d.ElementName, d.Category, d.MasterRate
		quantity := decimal.Zero
		if d.ElementID != nil {
			element, ok := elements[*d.ElementID]
			if !ok {
				return nil, nil, shared.NewNotFoundError("cost element", *d.ElementID)
			}
			name, category, masterRate = element.Name, element.Category, element.DefaultRate
			quantity = element.EstimateQuantity(req.SeedQtyBeforeDrying, crushingHours)
		}
		if d.Quantity != nil {
			quantity = *d.Quantity
		}
		detail, err := costing.NewCostDetail(d.ElementID, name, category, masterRate, d.OverrideRate, quantity)
		if err != nil {
			return nil, nil, err
		}
		details = append(details, detail)

		if detail.OverrideRate != nil {
			entry, err := costing.NewOverrideEntry(costing.ModuleBatch, detail, d.OverrideReason, req.CreatedBy)
			if err != nil {
				return nil, nil, err
			}
			overrides = append(overrides, entry)
		}
	}

	if tracked {
		all, err := repos.CostElements().List(ctx, costing.ElementFilter{Stage: costing.ApplicableBatch, ActiveOnly: true})
		if err != nil {
			return nil, nil, err
		}
		timeCosts, err := costing.TimeCosts(all, costing.ApplicableBatch, crushingHours, requested)
		if err != nil {
			return nil, nil, err
		}
		details = append(details, timeCosts...)
	}
	return details, overrides, nil
}

// resolveRates picks the estimated rates: the request, then the rate table,
// then the built-in default for the oil type, then the configured default.
func (s *ProductionService) resolveRates(ctx context.Context, repos uow.Repositories, req RecordBatchRequest) (cake, sludge decimal.Decimal, err error) {
	if req.CakeEstimatedRate != nil && req.SludgeEstimatedRate != nil {
		return *req.CakeEstimatedRate, *req.SludgeEstimatedRate, nil
	}
	current, err := s.currentRate(ctx, repos, req.OilType, req.ProductionDate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	cake, sludge = current.CakeRate, current.SludgeRate
	if req.CakeEstimatedRate != nil {
		cake = *req.CakeEstimatedRate
	}
	if req.SludgeEstimatedRate != nil {
		sludge = *req.SludgeEstimatedRate
	}
	return cake, sludge, nil
}

func (s *ProductionService) currentRate(ctx context.Context, repos uow.Repositories, oilType string, asOf valueobject.Date) (RateResponse, error) {
	if asOf.IsZero() {
		asOf = valueobject.Today()
	}
	rate, err := repos.Rates().Current(ctx, oilType, asOf)
	switch {
	case err == nil:
		return RateResponse{OilType: rate.OilType, CakeRate: rate.CakeRate, SludgeRate: rate.SludgeRate, EffectiveFrom: rate.EffectiveFrom, Source: "TABLE"}, nil
	case !shared.IsNotFound(err):
		return RateResponse{}, err
	}
	if def, ok := production.DefaultRateFor(oilType); ok {
		return RateResponse{OilType: def.OilType, CakeRate: def.CakeRate, SludgeRate: def.SludgeRate, Source: "DEFAULT"}, nil
	}
	return RateResponse{
		OilType:    strings.TrimSpace(oilType),
		CakeRate:   s.settings.DefaultCakeRate,
		SludgeRate: s.settings.DefaultSludgeRate,
		Source:     "CONFIG",
	}, nil
}

// latestPurchaseCode is the code of the seed's newest traced purchase, or
// empty when it was never bought with one.
func (s *ProductionService) latestPurchaseCode(ctx context.Context, repos uow.Repositories, seedID uuid.UUID) (string, error) {
	code, err := repos.Purchases().LatestTraceableCode(ctx, seedID)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

// traceableCode derives the batch code from the seed purchase; a seed with
// no purchase code leaves it empty.
func (s *ProductionService) traceableCode(purchaseCode, seedShortCode string) (string, error) {
	if purchaseCode == "" {
		return "", nil
	}
	return traceability.BatchCode(purchaseCode, seedShortCode, s.settings.UnitCode)
}

// GetBatch returns one batch
func (s *ProductionService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	b, err := s.repos.Batches().FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("batch", id)
		}
		return nil, err
	}
	resp := ToBatchResponse(b)
	if seed, err := s.repos.Materials().FindByID(ctx, b.SeedMaterialID); err == nil {
		resp.SeedMaterialName = seed.Name
	}
	return &resp, nil
}

// History lists batches, newest first, with period totals and a per oil
// type breakdown
func (s *ProductionService) History(ctx context.Context, filter HistoryFilter) (*HistoryResponse, error) {
	batches, err := s.repos.Batches().List(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}
	out := &HistoryResponse{Batches: make([]BatchResponse, len(batches))}
	names := make(map[uuid.UUID]string)
	for i := range batches {
		out.Batches[i] = ToBatchResponse(&batches[i])
		id := batches[i].SeedMaterialID
		name, ok := names[id]
		if !ok {
			if seed, err := s.repos.Materials().FindByID(ctx, id); err == nil {
				name = seed.Name
			}
			names[id] = name
		}
		out.Batches[i].SeedMaterialName = name
	}

	if s.reports != nil {
		if out.Summary, err = s.reports.BatchSummary(ctx, filter.toReport()); err != nil {
			return nil, err
		}
		if out.ByOilType, err = s.reports.ProductionByOilType(ctx, filter.toReport()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AvailableSeeds lists seed materials with stock on hand
func (s *ProductionService) AvailableSeeds(ctx context.Context) ([]SeedResponse, error) {
	seeds, err := s.repos.Materials().List(ctx, masterdata.MaterialFilter{Category: masterdata.CategorySeeds, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]SeedResponse, 0, len(seeds))
	for i := range seeds {
		lot, err := s.repos.Lots().FindByKey(ctx, inventory.MaterialLotKey(seeds[i].ID))
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !lot.ClosingStock.IsPositive() {
			continue
		}
		code, err := s.latestPurchaseCode(ctx, s.repos, seeds[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, SeedResponse{
			MaterialID:          seeds[i].ID,
			Name:                seeds[i].Name,
			ShortCode:           seeds[i].ShortCode,
			LotID:               lot.ID,
			AvailableQuantity:   lot.ClosingStock,
			WeightedAvgCost:     lot.WeightedAvgCost,
			LatestTraceableCode: code,
		})
	}
	return out, nil
}

// CostElementsForBatch lists the active cost elements a batch can capture
func (s *ProductionService) CostElementsForBatch(ctx context.Context) ([]costing.CostElement, error) {
	return s.repos.CostElements().List(ctx, costing.ElementFilter{Stage: costing.ApplicableBatch, ActiveOnly: true})
}

// EstimateCosts previews extraction costs from the cost element master
func (s *ProductionService) EstimateCosts(ctx context.Context, req EstimateRequest) (*EstimateResponse, error) {
	if req.SeedQuantity.IsNegative() || req.CrushingHours.IsNegative() {
		return nil, shared.NewValidationError("seed quantity and crushing hours cannot be negative")
	}
	elements, err := s.CostElementsForBatch(ctx)
	if err != nil {
		return nil, err
	}
	out := &EstimateResponse{Elements: make([]CostDetailResponse, 0, len(elements)), TotalCost: decimal.Zero}
	for i := range elements {
		e := &elements[i]
		id := e.ID
		detail, err := costing.NewCostDetail(&id, e.Name, e.Category, e.DefaultRate, nil, e.EstimateQuantity(req.SeedQuantity, req.CrushingHours))
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, toDetailResponse(detail))
		out.TotalCost = out.TotalCost.Add(detail.TotalCost)
	}
	return out, nil
}

// EstimateTimeCosts measures a process run and prices the per-hour cost
// elements for it. Nothing is stored.
func (s *ProductionService) EstimateTimeCosts(ctx context.Context, req TimeTrackingRequest) (*TimeCostResponse, error) {
	entry, err := req.toDomain()
	if err != nil {
		return nil, err
	}
	elements, err := s.CostElementsForBatch(ctx)
	if err != nil {
		return nil, err
	}
	details, err := costing.TimeCosts(elements, costing.ApplicableBatch, entry.BilledHours, nil)
	if err != nil {
		return nil, err
	}
	out := &TimeCostResponse{
		TimeEntry:     toTimeEntryResponse(entry),
		TimeCosts:     make([]CostDetailResponse, len(details)),
		TotalTimeCost: costing.SumDetails(details),
	}
	for i, d := range details {
		out.TimeCosts[i] = toDetailResponse(d)
	}
	return out, nil
}

// TimeEntries lists the process runs tracked for a batch
func (s *ProductionService) TimeEntries(ctx context.Context, batchID uuid.UUID) ([]TimeEntryResponse, error) {
	if err := s.ensureBatch(ctx, batchID); err != nil {
		return nil, err
	}
	entries, err := s.repos.TimeEntries().ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]TimeEntryResponse, len(entries))
	for i := range entries {
		out[i] = toTimeEntryResponse(&entries[i])
	}
	return out, nil
}

// CostOverrides lists the rate overrides applied when a batch was recorded
func (s *ProductionService) CostOverrides(ctx context.Context, batchID uuid.UUID) ([]OverrideResponse, error) {
	if err := s.ensureBatch(ctx, batchID); err != nil {
		return nil, err
	}
	entries, err := s.repos.CostOverrides().ListByRecord(ctx, costing.ModuleBatch, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]OverrideResponse, len(entries))
	for i := range entries {
		out[i] = toOverrideResponse(&entries[i])
	}
	return out, nil
}

func (s *ProductionService) ensureBatch(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repos.Batches().FindByID(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return shared.NewNotFoundError("batch", id)
		}
		return err
	}
	return nil
}

// CurrentRate returns the estimated by-product rates for an oil type
func (s *ProductionService) CurrentRate(ctx context.Context, oilType string) (*RateResponse, error) {
	if strings.TrimSpace(oilType) == "" {
		return nil, shared.NewValidationError("oil type is required")
	}
	rate, err := s.currentRate(ctx, s.repos, oilType, valueobject.Today())
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// ListRates lists the rates in effect today
func (s *ProductionService) ListRates(ctx context.Context) ([]RateResponse, error) {
	rates, err := s.repos.Rates().ListCurrent(ctx, valueobject.Today())
	if err != nil {
		return nil, err
	}
	out := make([]RateResponse, len(rates))
	for i, r := range rates {
		out[i] = RateResponse{OilType: r.OilType, CakeRate: r.CakeRate, SludgeRate: r.SludgeRate, EffectiveFrom: r.EffectiveFrom, Source: "TABLE"}
	}
	return out, nil
}

// SetRate publishes a rate effective from the given date (today if empty)
func (s *ProductionService) SetRate(ctx context.Context, req SetRateRequest) (*RateResponse, error) {
	oilType := strings.TrimSpace(req.OilType)
	if oilType == "" {
		return nil, shared.NewValidationError("oil type is required")
	}
	if req.CakeRate.IsNegative() || req.SludgeRate.IsNegative() {
		return nil, shared.NewValidationError("rates cannot be negative")
	}
	effective := req.EffectiveFrom
	if effective.IsZero() {
		effective = valueobject.Today()
	}
	rate := &production.ByProductRate{
		OilType:       oilType,
		CakeRate:      req.CakeRate,
		SludgeRate:    req.SludgeRate,
		EffectiveFrom: effective,
	}
	if err := s.repos.Rates().Create(ctx, rate); err != nil {
		return nil, err
	}
	return &RateResponse{OilType: rate.OilType, CakeRate: rate.CakeRate, SludgeRate: rate.SludgeRate, EffectiveFrom: rate.EffectiveFrom, Source: "TABLE"}, nil
}
