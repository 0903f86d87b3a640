package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/purchase"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements purchase.Repository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Create inserts a purchase with its items
func (r *GormPurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	return r.db.WithContext(ctx).Create(models.PurchaseModelFromDomain(p)).Error
}

// FindByID loads a purchase with its items
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// List lists purchases with their items, newest first
func (r *GormPurchaseRepository) List(ctx context.Context, filter purchase.Filter) ([]purchase.Purchase, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).Preload("Items")
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.MaterialID != nil {
		query = query.Where("id IN (?)",
			r.db.Model(&models.PurchaseItemModel{}).Select("purchase_id").Where("material_id = ?", *filter.MaterialID))
	}
	query = applyFilter(query, filter.Filter, "purchase_date")

	var rows []models.PurchaseModel
	if err := query.Order("purchase_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	purchases := make([]purchase.Purchase, len(rows))
	for i := range rows {
		purchases[i] = *rows[i].ToDomain()
	}
	return purchases, nil
}

// LatestTraceableCode returns the traceable code of the newest purchase line of a material
func (r *GormPurchaseRepository) LatestTraceableCode(ctx context.Context, materialID uuid.UUID) (string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Table("purchase_items AS pi").
		Joins("JOIN purchases p ON p.id = pi.purchase_id").
		Where("pi.material_id = ? AND pi.traceable_code <> ''", materialID).
		Order("p.purchase_date DESC, p.created_at DESC").
		Limit(1).
		Pluck("pi.traceable_code", &codes).Error
	if err != nil {
		return "", err
	}
	if len(codes) == 0 {
		return "", translateNotFound(gorm.ErrRecordNotFound)
	}
	return codes[0], nil
}

var _ purchase.Repository = (*GormPurchaseRepository)(nil)
