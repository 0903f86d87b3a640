package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/oilmill/backend/internal/domain/report"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// SqlxReportRepository implements report.Repository with hand-written SQL
// over sqlx. It shares the connection pool of the gorm database.
type SqlxReportRepository struct {
	db *sqlx.DB
}

// NewSqlxReportRepository wraps an sqlx handle
func NewSqlxReportRepository(db *sqlx.DB) *SqlxReportRepository {
	return &SqlxReportRepository{db: db}
}

// NewSqlxReportRepositoryFromGorm reuses the pool behind a gorm database
func NewSqlxReportRepositoryFromGorm(gdb *gorm.DB) (*SqlxReportRepository, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	driver := gdb.Dialector.Name()
	switch driver {
	case "postgres":
		driver = "pgx"
	case "sqlite":
		driver = "sqlite3"
	}
	return NewSqlxReportRepository(sqlx.NewDb(sqlDB, driver)), nil
}

// conditions collects WHERE clauses with '?' placeholders
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, args ...any) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) period(column string, filter report.Filter) {
	if filter.From != nil {
		c.add(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		c.add(column+" <= ?", *filter.To)
	}
}

func (c *conditions) oilType(column, oilType string) {
	if oilType = strings.TrimSpace(oilType); oilType != "" {
		c.add("UPPER("+column+") = ?", strings.ToUpper(oilType))
	}
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func (r *SqlxReportRepository) get(ctx context.Context, dest any, query string, args ...any) error {
	return r.db.GetContext(ctx, dest, r.db.Rebind(query), args...)
}

func (r *SqlxReportRepository) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...)
}

// BatchSummary totals production over the period
func (r *SqlxReportRepository) BatchSummary(ctx context.Context, filter report.Filter) (*report.BatchSummary, error) {
	var c conditions
	c.period("production_date", filter)
	c.oilType("oil_type", filter.OilType)

	var summary report.BatchSummary
	query := `SELECT
		COUNT(*) AS total_batches,
		COALESCE(SUM(seed_qty_before_drying), 0) AS total_seed_consumed,
		COALESCE(SUM(oil_yield), 0) AS total_oil_produced,
		COALESCE(SUM(cake_yield), 0) AS total_cake_produced,
		COALESCE(SUM(sludge_yield), 0) AS total_sludge_produced,
		COALESCE(SUM(total_production_cost), 0) AS total_production_cost,
		COALESCE(SUM(net_oil_cost), 0) AS total_net_oil_cost
		FROM batches` + c.where()
	if err := r.get(ctx, &summary, query, c.args...); err != nil {
		return nil, fmt.Errorf("batch summary: %w", err)
	}
	summary.AvgCostPerKg = report.CostPerKg(summary.TotalNetOilCost, summary.TotalOilProduced)
	return &summary, nil
}

// ProductionByOilType groups production by oil type
func (r *SqlxReportRepository) ProductionByOilType(ctx context.Context, filter report.Filter) ([]report.OilTypeProduction, error) {
	var c conditions
	c.period("production_date", filter)
	c.oilType("oil_type", filter.OilType)

	var rows []report.OilTypeProduction
	query := `SELECT
		oil_type,
		COUNT(*) AS batch_count,
		COALESCE(SUM(oil_yield), 0) AS total_oil_produced,
		COALESCE(SUM(net_oil_cost), 0) AS total_net_oil_cost
		FROM batches` + c.where() + `
		GROUP BY oil_type
		ORDER BY oil_type`
	if err := r.selectAll(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("production by oil type: %w", err)
	}
	for i := range rows {
		rows[i].AvgCostPerKg = report.CostPerKg(rows[i].TotalNetOilCost, rows[i].TotalOilProduced)
	}
	return rows, nil
}

// CostReconciliation lists estimated against realized by-product credit per batch
func (r *SqlxReportRepository) CostReconciliation(ctx context.Context, filter report.Filter) ([]report.CostReconciliation, error) {
	var c conditions
	c.period("production_date", filter)
	c.oilType("oil_type", filter.OilType)

	var rows []report.CostReconciliation
	query := `SELECT
		id AS batch_id, batch_code, oil_type, production_date, oil_yield,
		total_production_cost,
		cake_yield, cake_sold_qty, cake_estimated_rate, cake_actual_rate,
		sludge_yield, sludge_sold_qty, sludge_estimated_rate, sludge_actual_rate,
		net_oil_cost, oil_cost_per_kg
		FROM batches` + c.where() + `
		ORDER BY production_date DESC, batch_code`
	if err := r.selectAll(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("cost reconciliation: %w", err)
	}
	for i := range rows {
		rows[i].Derive()
	}
	return rows, nil
}

// LatestProductionDate returns the newest batch date
func (r *SqlxReportRepository) LatestProductionDate(ctx context.Context) (valueobject.Date, error) {
	var latest valueobject.Date
	if err := r.get(ctx, &latest, `SELECT MAX(production_date) FROM batches`); err != nil {
		return valueobject.Date{}, fmt.Errorf("latest production date: %w", err)
	}
	return latest, nil
}

// CostCaptures lists the cost elements captured per batch since from
func (r *SqlxReportRepository) CostCaptures(ctx context.Context, from valueobject.Date) ([]report.CostCapture, error) {
	var rows []report.CostCapture
	query := `SELECT DISTINCT
		b.id AS batch_id, b.batch_code, b.oil_type, b.production_date,
		d.element_id
		FROM batches b
		LEFT JOIN batch_cost_details d ON d.batch_id = b.id AND d.element_id IS NOT NULL
		WHERE b.production_date >= ?
		ORDER BY b.production_date DESC, b.batch_code`
	if err := r.selectAll(ctx, &rows, query, from); err != nil {
		return nil, fmt.Errorf("cost captures: %w", err)
	}
	return rows, nil
}

// PurchaseSummary totals purchases over the period, optionally for one material
func (r *SqlxReportRepository) PurchaseSummary(ctx context.Context, filter report.Filter, materialID *uuid.UUID) (*report.PurchaseSummary, error) {
	var c conditions
	c.period("p.purchase_date", filter)
	if materialID != nil {
		c.add("pi.material_id = ?", *materialID)
	}

	var summary report.PurchaseSummary
	query := `SELECT
		COUNT(DISTINCT p.id) AS total_purchases,
		COALESCE(SUM(pi.total_cost), 0) AS total_amount,
		COUNT(DISTINCT pi.material_id) AS distinct_materials,
		COUNT(DISTINCT p.supplier_id) AS distinct_suppliers
		FROM purchases p
		JOIN purchase_items pi ON pi.purchase_id = p.id` + c.where()
	if err := r.get(ctx, &summary, query, c.args...); err != nil {
		return nil, fmt.Errorf("purchase summary: %w", err)
	}
	return &summary, nil
}

// BlendSummary totals blends over the period
func (r *SqlxReportRepository) BlendSummary(ctx context.Context, filter report.Filter) (*report.BlendSummary, error) {
	var c conditions
	c.period("blend_date", filter)
	c.oilType("oil_type", filter.OilType)

	var summary report.BlendSummary
	query := `SELECT
		COUNT(*) AS total_blends,
		COALESCE(SUM(total_quantity), 0) AS total_quantity,
		COALESCE(SUM(total_quantity * weighted_avg_cost), 0) AS total_value
		FROM blends` + c.where()
	if err := r.get(ctx, &summary, query, c.args...); err != nil {
		return nil, fmt.Errorf("blend summary: %w", err)
	}
	return &summary, nil
}

// ByProductSalesSummary totals sales and cost adjustments per by-product type
func (r *SqlxReportRepository) ByProductSalesSummary(ctx context.Context, filter report.Filter) ([]report.ByProductSalesSummary, error) {
	var c conditions
	c.period("s.sale_date", filter)
	c.oilType("s.oil_type", filter.OilType)

	var rows []report.ByProductSalesSummary
	query := `SELECT
		s.byproduct_type,
		COUNT(*) AS total_sales,
		COALESCE(SUM(s.quantity), 0) AS total_quantity,
		COALESCE(SUM(s.total_amount), 0) AS total_amount,
		COALESCE(SUM(adj.adjustment), 0) AS total_adjustment
		FROM byproduct_sales s
		LEFT JOIN (
			SELECT sale_id, SUM(cost_adjustment) AS adjustment
			FROM byproduct_sale_allocations
			GROUP BY sale_id
		) adj ON adj.sale_id = s.id` + c.where() + `
		GROUP BY s.byproduct_type
		ORDER BY s.byproduct_type`
	if err := r.selectAll(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("by-product sales summary: %w", err)
	}
	return rows, nil
}

// ByProductStock groups unsold by-product stock by type and oil type
func (r *SqlxReportRepository) ByProductStock(ctx context.Context) ([]report.ByProductStock, error) {
	var rows []report.ByProductStock
	query := `SELECT
		byproduct_type, oil_type,
		COUNT(*) AS lot_count,
		COALESCE(SUM(quantity_remaining), 0) AS quantity_remaining,
		COALESCE(SUM(quantity_remaining * estimated_rate), 0) AS estimated_value
		FROM byproduct_lots
		WHERE quantity_remaining > 0
		GROUP BY byproduct_type, oil_type
		ORDER BY byproduct_type, oil_type`
	if err := r.selectAll(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("by-product stock: %w", err)
	}
	return rows, nil
}

// WriteoffSummary totals writeoffs over the period
func (r *SqlxReportRepository) WriteoffSummary(ctx context.Context, filter report.Filter) (*report.WriteoffSummary, error) {
	var c conditions
	c.period("writeoff_date", filter)

	var summary report.WriteoffSummary
	query := `SELECT
		COUNT(*) AS total_writeoffs,
		COALESCE(SUM(quantity), 0) AS total_quantity,
		COALESCE(SUM(total_cost), 0) AS total_cost,
		COALESCE(SUM(scrap_value), 0) AS total_scrap_value,
		COALESCE(SUM(net_loss), 0) AS total_net_loss
		FROM writeoffs` + c.where()
	if err := r.get(ctx, &summary, query, c.args...); err != nil {
		return nil, fmt.Errorf("writeoff summary: %w", err)
	}
	return &summary, nil
}

// WriteoffsByReason totals writeoffs per reason code
func (r *SqlxReportRepository) WriteoffsByReason(ctx context.Context, filter report.Filter) ([]report.WriteoffByReason, error) {
	var c conditions
	c.period("writeoff_date", filter)

	var rows []report.WriteoffByReason
	query := `SELECT
		reason_code,
		MAX(reason_description) AS reason_description,
		COUNT(*) AS writeoff_count,
		COALESCE(SUM(net_loss), 0) AS total_net_loss
		FROM writeoffs` + c.where() + `
		GROUP BY reason_code
		ORDER BY total_net_loss DESC`
	if err := r.selectAll(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("writeoffs by reason: %w", err)
	}
	return rows, nil
}

// InventoryValue groups stock on hand by lot type
func (r *SqlxReportRepository) InventoryValue(ctx context.Context) ([]report.InventoryValue, error) {
	var rows []report.InventoryValue
	query := `SELECT
		lot_type,
		COUNT(*) AS lot_count,
		COALESCE(SUM(closing_stock), 0) AS total_stock,
		COALESCE(SUM(closing_stock * weighted_avg_cost), 0) AS total_value
		FROM inventory_lots
		WHERE closing_stock > 0
		GROUP BY lot_type
		ORDER BY lot_type`
	if err := r.selectAll(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("inventory value: %w", err)
	}
	return rows, nil
}

var _ report.Repository = (*SqlxReportRepository)(nil)
