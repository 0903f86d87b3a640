package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryLotRepository implements inventory.LotRepository using GORM
type GormInventoryLotRepository struct {
	db *gorm.DB
}

// NewGormInventoryLotRepository creates a new GormInventoryLotRepository
func NewGormInventoryLotRepository(db *gorm.DB) *GormInventoryLotRepository {
	return &GormInventoryLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormInventoryLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryLot, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByKey finds a lot by its lot key
func (r *GormInventoryLotRepository) FindByKey(ctx context.Context, key string) (*inventory.InventoryLot, error) {
	return r.first(r.db.WithContext(ctx), "lot_key = ?", key)
}

// FindByIDForUpdate finds a lot and locks its row
func (r *GormInventoryLotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryLot, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

// FindByKeyForUpdate finds a lot by key and locks its row
func (r *GormInventoryLotRepository) FindByKeyForUpdate(ctx context.Context, key string) (*inventory.InventoryLot, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), "lot_key = ?", key)
}

func (r *GormInventoryLotRepository) first(query *gorm.DB, cond string, arg any) (*inventory.InventoryLot, error) {
	var model models.InventoryLotModel
	if err := query.Where(cond, arg).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// List lists lots matching the filter, most recently updated first
func (r *GormInventoryLotRepository) List(ctx context.Context, filter inventory.LotFilter) ([]inventory.InventoryLot, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryLotModel{})
	if filter.LotType != "" {
		query = query.Where("lot_type = ?", string(filter.LotType))
	}
	if filter.Source != "" {
		query = query.Where("source_type = ?", string(filter.Source))
	}
	if filter.OilType != "" {
		query = query.Where("oil_type = ?", inventory.NormalizeOilType(filter.OilType))
	}
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.InStock {
		query = query.Where("closing_stock > 0")
	}
	query = applyFilter(query, filter.Filter, "last_updated")

	var rows []models.InventoryLotModel
	if err := query.Order("last_updated DESC, lot_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lots := make([]inventory.InventoryLot, len(rows))
	for i := range rows {
		lots[i] = *rows[i].ToDomain()
	}
	return lots, nil
}

// Create inserts a new lot
func (r *GormInventoryLotRepository) Create(ctx context.Context, lot *inventory.InventoryLot) error {
	err := r.db.WithContext(ctx).Create(models.InventoryLotModelFromDomain(lot)).Error
	return translateCreate(err, "inventory lot", lot.LotKey)
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryLotRepository) SaveWithLock(ctx context.Context, lot *inventory.InventoryLot) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryLotModel{}).
		Where("id = ? AND version = ?", lot.ID, lot.Version-1).
		Updates(map[string]any{
			"purchases":         lot.Purchases,
			"consumption":       lot.Consumption,
			"closing_stock":     lot.ClosingStock,
			"weighted_avg_cost": lot.WeightedAvgCost,
			"last_updated":      lot.LastUpdated,
			"traceable_code":    lot.TraceableCode,
			"version":           lot.Version,
			"updated_at":        lot.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflict("inventory lot", lot.LotKey)
	}
	return nil
}

// GormStockMovementRepository implements inventory.MovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(movement)).Error
}

// ListByLot lists movements of a lot, newest first
func (r *GormStockMovementRepository) ListByLot(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.StockMovementModel{}).Where("lot_id = ?", lotID),
		filter,
		"movement_date",
	)

	var rows []models.StockMovementModel
	if err := query.Order("movement_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}

var (
	_ inventory.LotRepository      = (*GormInventoryLotRepository)(nil)
	_ inventory.MovementRepository = (*GormStockMovementRepository)(nil)
)
