// Package report assembles the management reports that span several ledgers.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared"
)

// Exporter renders report rows into a downloadable document
type Exporter interface {
	Batches(w io.Writer, batches []production.Batch) error
	Reconciliation(w io.Writer, recs []report.CostReconciliation) error
}

// ReportService provides application-level report operations
type ReportService struct {
	repos    uow.Repositories
	reports  report.Repository
	exporter Exporter
}

// NewReportService creates a new ReportService
func NewReportService(repos uow.Repositories, reports report.Repository, exporter Exporter) *ReportService {
	return &ReportService{
		repos:    repos,
		reports:  reports,
		exporter: exporter,
	}
}

// Dashboard returns the period totals of production, purchases, blending,
// by-product sales and writeoffs plus current stock values
func (s *ReportService) Dashboard(ctx context.Context, filter PeriodFilter) (*DashboardResponse, error) {
	f := filter.ToReport()
	var (
		out DashboardResponse
		err error
	)
	if out.Production, err = s.reports.BatchSummary(ctx, f); err != nil {
		return nil, err
	}
	if out.ByOilType, err = s.reports.ProductionByOilType(ctx, f); err != nil {
		return nil, err
	}
	if out.Purchases, err = s.reports.PurchaseSummary(ctx, f, nil); err != nil {
		return nil, err
	}
	if out.Blends, err = s.reports.BlendSummary(ctx, f); err != nil {
		return nil, err
	}
	if out.ByProductSales, err = s.reports.ByProductSalesSummary(ctx, f); err != nil {
		return nil, err
	}
	if out.ByProductStock, err = s.reports.ByProductStock(ctx); err != nil {
		return nil, err
	}
	if out.Writeoffs, err = s.reports.WriteoffSummary(ctx, f); err != nil {
		return nil, err
	}
	if out.Inventory, err = s.reports.InventoryValue(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

// CostValidation checks the batches produced in the days up to the latest
// production date against the active mandatory batch cost elements
func (s *ReportService) CostValidation(ctx context.Context, days int) (*CostValidationResponse, error) {
	if days < 0 {
		return nil, shared.NewValidationError("days must not be negative")
	}
	if days == 0 {
		days = DefaultValidationDays
	}

	latest, err := s.reports.LatestProductionDate(ctx)
	if err != nil {
		return nil, err
	}
	out := &CostValidationResponse{LatestDate: latest, Batches: []BatchCostValidation{}}
	if latest.IsZero() {
		return out, nil
	}
	out.From = latest.AddDays(-days)

	captures, err := s.reports.CostCaptures(ctx, out.From)
	if err != nil {
		return nil, err
	}
	elements, err := s.repos.CostElements().List(ctx, costing.ElementFilter{Stage: costing.ApplicableBatch, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	expected := len(costing.MissingMandatory(elements, costing.ApplicableBatch, nil))

	var order []uuid.UUID
	rows := make(map[uuid.UUID]*BatchCostValidation)
	captured := make(map[uuid.UUID]map[uuid.UUID]bool)
	for _, c := range captures {
		if _, ok := rows[c.BatchID]; !ok {
			order = append(order, c.BatchID)
			rows[c.BatchID] = &BatchCostValidation{
				BatchID:        c.BatchID,
				BatchCode:      c.BatchCode,
				OilType:        c.OilType,
				ProductionDate: c.ProductionDate,
				CostsExpected:  expected,
			}
			captured[c.BatchID] = make(map[uuid.UUID]bool)
		}
		if c.ElementID != nil {
			captured[c.BatchID][*c.ElementID] = true
		}
	}

	for _, id := range order {
		row := rows[id]
		row.CostsCaptured = len(captured[id])
		missing := costing.MissingMandatory(elements, costing.ApplicableBatch, captured[id])
		row.MissingElements = make([]string, len(missing))
		for i, e := range missing {
			row.MissingElements[i] = e.Name
		}
		row.MissingCount = len(missing)
		row.Complete = row.MissingCount == 0
		if !row.Complete {
			out.BatchesWithGaps++
		}
		out.Batches = append(out.Batches, *row)
	}
	out.TotalBatches = len(out.Batches)
	return out, nil
}

// ExportBatches writes every batch matching the filter through the exporter
func (s *ReportService) ExportBatches(ctx context.Context, w io.Writer, filter PeriodFilter) error {
	var all []production.Batch
	for offset := 0; ; offset += shared.MaxListLimit {
		page, err := s.repos.Batches().List(ctx, filter.batches(shared.MaxListLimit, offset))
		if err != nil {
			return err
		}
		all = append(all, page...)
		if len(page) < shared.MaxListLimit {
			break
		}
	}
	if err := s.exporter.Batches(w, all); err != nil {
		return fmt.Errorf("export batches: %w", err)
	}
	return nil
}

// ExportReconciliation writes the cost reconciliation report through the exporter
func (s *ReportService) ExportReconciliation(ctx context.Context, w io.Writer, filter PeriodFilter) error {
	recs, err := s.reports.CostReconciliation(ctx, filter.ToReport())
	if err != nil {
		return err
	}
	if err := s.exporter.Reconciliation(w, recs); err != nil {
		return fmt.Errorf("export reconciliation: %w", err)
	}
	return nil
}
