// Package export renders report rows as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the workbooks written here
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	batchSheet          = "Batches"
	reconciliationSheet = "Reconciliation"
)

// XLSXExporter writes batch history and cost reconciliation workbooks
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

var batchHeadings = []any{
	"Batch Code", "Traceable Code", "Oil Type", "Production Date",
	"Seed Before Drying (kg)", "Seed After Drying (kg)", "Oil Yield (kg)", "Oil Yield %",
	"Cake Yield (kg)", "Sludge Yield (kg)", "Seed Cost", "Extraction Cost",
	"Total Production Cost", "Cake Rate", "Sludge Rate", "Net Oil Cost", "Oil Cost / kg",
	"Cake Sold (kg)", "Sludge Sold (kg)",
}

// Batches writes one row per batch
func (e *XLSXExporter) Batches(w io.Writer, batches []production.Batch) error {
	rows := make([][]any, len(batches))
	for i := range batches {
		b := &batches[i]
		rows[i] = []any{
			b.BatchCode, b.TraceableCode, b.OilType, b.ProductionDate.String(),
			num(b.SeedQtyBeforeDrying), num(b.SeedQtyAfterDrying), num(b.OilYield), num(b.OilYieldPercent),
			num(b.CakeYield), num(b.SludgeYield), num(b.SeedCostTotal), num(b.ExtractionCost()),
			num(b.TotalProductionCost), num(b.CakeEstimatedRate), num(b.SludgeEstimatedRate),
			num(b.NetOilCost), num(b.OilCostPerKg),
			num(b.CakeSoldQty), num(b.SludgeSoldQty),
		}
	}
	return write(w, batchSheet, batchHeadings, rows)
}

var reconciliationHeadings = []any{
	"Batch Code", "Oil Type", "Production Date", "Oil Yield (kg)", "Total Production Cost",
	"Cake Yield (kg)", "Cake Sold (kg)", "Cake Estimated Rate", "Cake Actual Rate",
	"Sludge Yield (kg)", "Sludge Sold (kg)", "Sludge Estimated Rate", "Sludge Actual Rate",
	"Estimated Net Oil Cost", "Net Oil Cost", "Adjustment", "Oil Cost / kg",
}

// Reconciliation writes one row per batch of the cost reconciliation report
func (e *XLSXExporter) Reconciliation(w io.Writer, recs []report.CostReconciliation) error {
	rows := make([][]any, len(recs))
	for i := range recs {
		r := &recs[i]
		rows[i] = []any{
			r.BatchCode, r.OilType, r.ProductionDate.String(), num(r.OilYield), num(r.TotalProductionCost),
			num(r.CakeYield), num(r.CakeSoldQty), num(r.CakeEstimatedRate), nullNum(r.CakeActualRate),
			num(r.SludgeYield), num(r.SludgeSoldQty), num(r.SludgeEstimatedRate), nullNum(r.SludgeActualRate),
			num(r.EstimatedNetOilCost), num(r.NetOilCost), num(r.TotalAdjustment), num(r.OilCostPerKg),
		}
	}
	return write(w, reconciliationSheet, reconciliationHeadings, rows)
}

func write(w io.Writer, sheet string, headings []any, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &headings); err != nil {
		return fmt.Errorf("write headings: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create heading style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style headings: %w", err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(headings))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze headings: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func num(d decimal.Decimal) float64 {
	return d.Round(4).InexactFloat64()
}

func nullNum(d decimal.NullDecimal) any {
	if !d.Valid {
		return ""
	}
	return num(d.Decimal)
}
