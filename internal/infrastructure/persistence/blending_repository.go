package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/blending"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBlendRepository implements blending.Repository using GORM
type GormBlendRepository struct {
	db *gorm.DB
}

// NewGormBlendRepository creates a new GormBlendRepository
func NewGormBlendRepository(db *gorm.DB) *GormBlendRepository {
	return &GormBlendRepository{db: db}
}

// Create inserts a blend with its components
func (r *GormBlendRepository) Create(ctx context.Context, blend *blending.Blend) error {
	err := r.db.WithContext(ctx).Create(models.BlendModelFromDomain(blend)).Error
	return translateCreate(err, "blend", blend.BlendCode)
}

// FindByID loads a blend with its components
func (r *GormBlendRepository) FindByID(ctx context.Context, id uuid.UUID) (*blending.Blend, error) {
	var model models.BlendModel
	if err := r.db.WithContext(ctx).Preload("Components").First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// List lists blends, newest first
func (r *GormBlendRepository) List(ctx context.Context, filter blending.Filter) ([]blending.Blend, error) {
	query := r.db.WithContext(ctx).Model(&models.BlendModel{}).Preload("Components")
	query = whereOilType(query, "oil_type", filter.OilType)
	query = applyFilter(query, filter.Filter, "blend_date")

	var rows []models.BlendModel
	if err := query.Order("blend_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	blends := make([]blending.Blend, len(rows))
	for i := range rows {
		blends[i] = *rows[i].ToDomain()
	}
	return blends, nil
}

// SetLot records the output lot of a blend
func (r *GormBlendRepository) SetLot(ctx context.Context, blendID, lotID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.BlendModel{}).
		Where("id = ?", blendID).
		Updates(map[string]any{"lot_id": lotID, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateNotFound(gorm.ErrRecordNotFound)
	}
	return nil
}

var _ blending.Repository = (*GormBlendRepository)(nil)
