package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormByProductLotRepository implements byproduct.LotRepository using GORM
type GormByProductLotRepository struct {
	db *gorm.DB
}

// NewGormByProductLotRepository creates a new GormByProductLotRepository
func NewGormByProductLotRepository(db *gorm.DB) *GormByProductLotRepository {
	return &GormByProductLotRepository{db: db}
}

// Create inserts a by-product lot
func (r *GormByProductLotRepository) Create(ctx context.Context, lot *byproduct.Lot) error {
	return r.db.WithContext(ctx).Create(models.ByProductLotModelFromDomain(lot)).Error
}

// FindAvailableForUpdate returns lots with stock left in FIFO order and locks them
func (r *GormByProductLotRepository) FindAvailableForUpdate(ctx context.Context, t byproduct.Type, oilType string) ([]*byproduct.Lot, error) {
	query := forUpdate(r.db.WithContext(ctx)).
		Model(&models.ByProductLotModel{}).
		Where("byproduct_type = ? AND status <> ? AND quantity_remaining > 0", string(t), string(byproduct.StatusFullySold))
	query = whereOilType(query, "oil_type", oilType)

	var rows []models.ByProductLotModel
	if err := query.Order("production_date ASC, created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lots := make([]*byproduct.Lot, len(rows))
	for i := range rows {
		lots[i] = rows[i].ToDomain()
	}
	return lots, nil
}

// List lists by-product lots, oldest production date first
func (r *GormByProductLotRepository) List(ctx context.Context, filter byproduct.LotFilter) ([]byproduct.Lot, error) {
	query := r.db.WithContext(ctx).Model(&models.ByProductLotModel{})
	if filter.Type != "" {
		query = query.Where("byproduct_type = ?", string(filter.Type))
	}
	if filter.AvailableOnly {
		query = query.Where("status <> ? AND quantity_remaining > 0", string(byproduct.StatusFullySold))
	}
	query = whereOilType(query, "oil_type", filter.OilType)
	query = applyFilter(query, filter.Filter, "production_date")
	return r.find(query.Order("production_date ASC, created_at ASC"))
}

// ListByBatch lists the lots produced by one batch
func (r *GormByProductLotRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]byproduct.Lot, error) {
	return r.find(r.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("byproduct_type ASC"))
}

func (r *GormByProductLotRepository) find(query *gorm.DB) ([]byproduct.Lot, error) {
	var rows []models.ByProductLotModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	lots := make([]byproduct.Lot, len(rows))
	for i := range rows {
		lots[i] = *rows[i].ToDomain()
	}
	return lots, nil
}

// SaveWithLock saves the remaining quantity and status with a version check
func (r *GormByProductLotRepository) SaveWithLock(ctx context.Context, lot *byproduct.Lot) error {
	result := r.db.WithContext(ctx).
		Model(&models.ByProductLotModel{}).
		Where("id = ? AND version = ?", lot.ID, lot.Version-1).
		Updates(map[string]any{
			"quantity_remaining": lot.QuantityRemaining,
			"status":             string(lot.Status),
			"version":            lot.Version,
			"updated_at":         lot.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflict("by-product lot", lot.ID)
	}
	return nil
}

// GormByProductSaleRepository implements byproduct.SaleRepository using GORM
type GormByProductSaleRepository struct {
	db *gorm.DB
}

// NewGormByProductSaleRepository creates a new GormByProductSaleRepository
func NewGormByProductSaleRepository(db *gorm.DB) *GormByProductSaleRepository {
	return &GormByProductSaleRepository{db: db}
}

// Create inserts a sale with its allocations
func (r *GormByProductSaleRepository) Create(ctx context.Context, sale *byproduct.Sale) error {
	return r.db.WithContext(ctx).Create(models.ByProductSaleModelFromDomain(sale)).Error
}

// FindByID loads a sale with its allocations
func (r *GormByProductSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*byproduct.Sale, error) {
	var model models.ByProductSaleModel
	if err := r.db.WithContext(ctx).Preload("Allocations").First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// List lists sales, newest first
func (r *GormByProductSaleRepository) List(ctx context.Context, filter byproduct.SaleFilter) ([]byproduct.Sale, error) {
	query := r.db.WithContext(ctx).Model(&models.ByProductSaleModel{}).Preload("Allocations")
	if filter.Type != "" {
		query = query.Where("byproduct_type = ?", string(filter.Type))
	}
	if filter.BatchID != nil {
		query = query.Where("id IN (?)",
			r.db.Model(&models.SaleAllocationModel{}).Select("sale_id").Where("batch_id = ?", *filter.BatchID))
	}
	query = applyFilter(query, filter.Filter, "sale_date")

	var rows []models.ByProductSaleModel
	if err := query.Order("sale_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	sales := make([]byproduct.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, nil
}

// AllocationsByBatch lists every allocation that drew on a batch's lots
func (r *GormByProductSaleRepository) AllocationsByBatch(ctx context.Context, batchID uuid.UUID) ([]byproduct.Allocation, error) {
	var rows []models.SaleAllocationModel
	err := r.db.WithContext(ctx).
		Table("byproduct_sale_allocations AS a").
		Select("a.*").
		Joins("JOIN byproduct_sales s ON s.id = a.sale_id").
		Where("a.batch_id = ?", batchID).
		Order("s.sale_date ASC, s.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	allocations := make([]byproduct.Allocation, len(rows))
	for i := range rows {
		allocations[i] = rows[i].ToDomain()
	}
	return allocations, nil
}

var (
	_ byproduct.LotRepository  = (*GormByProductLotRepository)(nil)
	_ byproduct.SaleRepository = (*GormByProductSaleRepository)(nil)
)
