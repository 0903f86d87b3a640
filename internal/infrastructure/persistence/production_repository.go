package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBatchRepository implements production.Repository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Create inserts a batch with its cost details
func (r *GormBatchRepository) Create(ctx context.Context, batch *production.Batch) error {
	err := r.db.WithContext(ctx).Create(models.BatchModelFromDomain(batch)).Error
	return translateCreate(err, "batch", batch.BatchCode)
}

// FindByID loads a batch with its cost details
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Batch, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads a batch and locks its row
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*production.Batch, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormBatchRepository) first(query *gorm.DB, id uuid.UUID) (*production.Batch, error) {
	var model models.BatchModel
	if err := query.Preload("CostDetails").First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks whether a batch code is taken
func (r *GormBatchRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BatchModel{}).Where("batch_code = ?", code).Count(&count).Error
	return count > 0, err
}

// List lists batches, newest production date first
func (r *GormBatchRepository) List(ctx context.Context, filter production.Filter) ([]production.Batch, error) {
	query := r.db.WithContext(ctx).Model(&models.BatchModel{}).Preload("CostDetails")
	query = whereOilType(query, "oil_type", filter.OilType)
	query = applyFilter(query, filter.Filter, "production_date")

	var rows []models.BatchModel
	if err := query.Order("production_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	batches := make([]production.Batch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

// SaveWithLock persists the recomputed cost figures and sale tallies of a batch.
// Measurements and cost details are immutable once the batch is recorded.
func (r *GormBatchRepository) SaveWithLock(ctx context.Context, batch *production.Batch) error {
	model := models.BatchModelFromDomain(batch)
	result := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("id = ? AND version = ?", batch.ID, batch.Version-1).
		Updates(map[string]any{
			"traceable_code":          model.TraceableCode,
			"cake_sold_qty":           model.CakeSoldQty,
			"cake_realized_revenue":   model.CakeRealizedRevenue,
			"cake_actual_rate":        model.CakeActualRate,
			"sludge_sold_qty":         model.SludgeSoldQty,
			"sludge_realized_revenue": model.SludgeRealized,
			"sludge_actual_rate":      model.SludgeActualRate,
			"net_oil_cost":            model.NetOilCost,
			"oil_cost_per_kg":         model.OilCostPerKg,
			"oil_lot_id":              model.OilLotID,
			"version":                 model.Version,
			"updated_at":              model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflict("batch", batch.BatchCode)
	}
	return nil
}

var _ production.Repository = (*GormBatchRepository)(nil)
