package persistence

import (
	"context"
	"strings"

	"github.com/oilmill/backend/internal/domain/writeoff"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormWriteoffReasonRepository implements writeoff.ReasonRepository using GORM
type GormWriteoffReasonRepository struct {
	db *gorm.DB
}

// NewGormWriteoffReasonRepository creates a new GormWriteoffReasonRepository
func NewGormWriteoffReasonRepository(db *gorm.DB) *GormWriteoffReasonRepository {
	return &GormWriteoffReasonRepository{db: db}
}

// FindByCode finds a reason by its code
func (r *GormWriteoffReasonRepository) FindByCode(ctx context.Context, code string) (*writeoff.Reason, error) {
	var model models.WriteoffReasonModel
	err := r.db.WithContext(ctx).First(&model, "reason_code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	reason := model.ToDomain()
	return &reason, nil
}

// List lists active reasons by category
func (r *GormWriteoffReasonRepository) List(ctx context.Context) ([]writeoff.Reason, error) {
	var rows []models.WriteoffReasonModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("category ASC, reason_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	reasons := make([]writeoff.Reason, len(rows))
	for i := range rows {
		reasons[i] = rows[i].ToDomain()
	}
	return reasons, nil
}

// GormWriteoffRepository implements writeoff.Repository using GORM
type GormWriteoffRepository struct {
	db *gorm.DB
}

// NewGormWriteoffRepository creates a new GormWriteoffRepository
func NewGormWriteoffRepository(db *gorm.DB) *GormWriteoffRepository {
	return &GormWriteoffRepository{db: db}
}

// Create inserts a writeoff
func (r *GormWriteoffRepository) Create(ctx context.Context, w *writeoff.Writeoff) error {
	return r.db.WithContext(ctx).Create(models.WriteoffModelFromDomain(w)).Error
}

// List lists writeoffs, newest first
func (r *GormWriteoffRepository) List(ctx context.Context, filter writeoff.Filter) ([]writeoff.Writeoff, error) {
	query := r.db.WithContext(ctx).Model(&models.WriteoffModel{})
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.ReasonCode != "" {
		query = query.Where("reason_code = ?", strings.ToUpper(filter.ReasonCode))
	}
	query = applyFilter(query, filter.Filter, "writeoff_date")

	var rows []models.WriteoffModel
	if err := query.Order("writeoff_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	writeoffs := make([]writeoff.Writeoff, len(rows))
	for i := range rows {
		writeoffs[i] = *rows[i].ToDomain()
	}
	return writeoffs, nil
}

var (
	_ writeoff.ReasonRepository = (*GormWriteoffReasonRepository)(nil)
	_ writeoff.Repository       = (*GormWriteoffRepository)(nil)
)
