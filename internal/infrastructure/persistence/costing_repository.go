package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCostElementRepository implements costing.CostElementRepository using GORM
type GormCostElementRepository struct {
	db *gorm.DB
}

// NewGormCostElementRepository creates a new GormCostElementRepository
func NewGormCostElementRepository(db *gorm.DB) *GormCostElementRepository {
	return &GormCostElementRepository{db: db}
}

// FindByID finds a cost element by its ID
func (r *GormCostElementRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostElement, error) {
	var model models.CostElementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the cost elements with the given IDs; unknown IDs are skipped
func (r *GormCostElementRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]costing.CostElement, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.CostElementModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCostElements(rows), nil
}

// List lists cost elements in display order
func (r *GormCostElementRepository) List(ctx context.Context, filter costing.ElementFilter) ([]costing.CostElement, error) {
	query := r.db.WithContext(ctx).Model(&models.CostElementModel{})
	if filter.Stage != "" && filter.Stage != costing.ApplicableAll {
		query = query.Where("applicable_to IN ?", []string{string(filter.Stage), string(costing.ApplicableAll)})
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var rows []models.CostElementModel
	if err := query.Order("display_order ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCostElements(rows), nil
}

func toCostElements(rows []models.CostElementModel) []costing.CostElement {
	elements := make([]costing.CostElement, len(rows))
	for i := range rows {
		elements[i] = *rows[i].ToDomain()
	}
	return elements
}

// Create inserts a cost element
func (r *GormCostElementRepository) Create(ctx context.Context, element *costing.CostElement) error {
	err := r.db.WithContext(ctx).Create(models.CostElementModelFromDomain(element)).Error
	return translateDuplicate(err, "cost element", element.Name)
}

// Update saves the mutable fields of a cost element with a version check
func (r *GormCostElementRepository) Update(ctx context.Context, element *costing.CostElement) error {
	result := r.db.WithContext(ctx).
		Model(&models.CostElementModel{}).
		Where("id = ? AND version = ?", element.ID, element.Version-1).
		Updates(map[string]any{
			"category":           element.Category,
			"unit_type":          element.UnitType,
			"calculation_method": string(element.Method),
			"default_rate":       element.DefaultRate,
			"applicable_to":      string(element.ApplicableTo),
			"is_optional":        element.IsOptional,
			"active":             element.Active,
			"display_order":      element.DisplayOrder,
			"version":            element.Version,
			"updated_at":         element.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflict("cost element", element.Name)
	}
	return nil
}

// GormByProductRateRepository implements production.RateRepository using GORM
type GormByProductRateRepository struct {
	db *gorm.DB
}

// NewGormByProductRateRepository creates a new GormByProductRateRepository
func NewGormByProductRateRepository(db *gorm.DB) *GormByProductRateRepository {
	return &GormByProductRateRepository{db: db}
}

// Current returns the rate row in force for oilType on asOf
func (r *GormByProductRateRepository) Current(ctx context.Context, oilType string, asOf valueobject.Date) (*production.ByProductRate, error) {
	var model models.ByProductRateModel
	err := r.db.WithContext(ctx).
		Where("oil_type = ? AND effective_from <= ?", inventory.NormalizeOilType(oilType), asOf).
		Order("effective_from DESC").
		First(&model).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	rate := model.ToDomain()
	return &rate, nil
}

// ListCurrent returns the rate in force on asOf for every oil type
func (r *GormByProductRateRepository) ListCurrent(ctx context.Context, asOf valueobject.Date) ([]production.ByProductRate, error) {
	latest := r.db.Model(&models.ByProductRateModel{}).
		Select("oil_type, MAX(effective_from) AS effective_from").
		Where("effective_from <= ?", asOf).
		Group("oil_type")

	var rows []models.ByProductRateModel
	err := r.db.WithContext(ctx).
		Table("byproduct_rates AS r").
		Select("r.*").
		Joins("JOIN (?) AS latest ON latest.oil_type = r.oil_type AND latest.effective_from = r.effective_from", latest).
		Order("r.oil_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	rates := make([]production.ByProductRate, len(rows))
	for i := range rows {
		rates[i] = rows[i].ToDomain()
	}
	return rates, nil
}

// Create inserts a rate row; a row for the same oil type and date replaces it
func (r *GormByProductRateRepository) Create(ctx context.Context, rate *production.ByProductRate) error {
	model := &models.ByProductRateModel{
		ID:            uuid.New(),
		OilType:       inventory.NormalizeOilType(rate.OilType),
		CakeRate:      rate.CakeRate,
		SludgeRate:    rate.SludgeRate,
		EffectiveFrom: rate.EffectiveFrom,
	}
	existing := r.db.WithContext(ctx).
		Where("oil_type = ? AND effective_from = ?", model.OilType, model.EffectiveFrom).
		Delete(&models.ByProductRateModel{})
	if existing.Error != nil {
		return existing.Error
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// GormTimeEntryRepository implements costing.TimeEntryRepository using GORM
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewGormTimeEntryRepository creates a new GormTimeEntryRepository
func NewGormTimeEntryRepository(db *gorm.DB) *GormTimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// Create inserts a time entry
func (r *GormTimeEntryRepository) Create(ctx context.Context, entry *costing.TimeEntry) error {
	return r.db.WithContext(ctx).Create(models.BatchTimeEntryModelFromDomain(entry)).Error
}

// ListByBatch lists the time entries of a batch in start order
func (r *GormTimeEntryRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]costing.TimeEntry, error) {
	var rows []models.BatchTimeEntryModel
	if err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]costing.TimeEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// GormOverrideLogRepository implements costing.OverrideLogRepository using GORM
type GormOverrideLogRepository struct {
	db *gorm.DB
}

// NewGormOverrideLogRepository creates a new GormOverrideLogRepository
func NewGormOverrideLogRepository(db *gorm.DB) *GormOverrideLogRepository {
	return &GormOverrideLogRepository{db: db}
}

// Create appends an override entry
func (r *GormOverrideLogRepository) Create(ctx context.Context, entry *costing.OverrideEntry) error {
	return r.db.WithContext(ctx).Create(models.CostOverrideLogModelFromDomain(entry)).Error
}

// ListByRecord lists the overrides applied on one record, oldest first
func (r *GormOverrideLogRepository) ListByRecord(ctx context.Context, module string, recordID uuid.UUID) ([]costing.OverrideEntry, error) {
	var rows []models.CostOverrideLogModel
	err := r.db.WithContext(ctx).
		Where("module_name = ? AND record_id = ?", module, recordID).
		Order("created_at ASC, element_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]costing.OverrideEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

var (
	_ costing.CostElementRepository = (*GormCostElementRepository)(nil)
	_ costing.TimeEntryRepository   = (*GormTimeEntryRepository)(nil)
	_ costing.OverrideLogRepository = (*GormOverrideLogRepository)(nil)
	_ production.RateRepository     = (*GormByProductRateRepository)(nil)
)
