package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/traceability"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMaterialRepository implements masterdata.MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// List lists materials ordered by name
func (r *GormMaterialRepository) List(ctx context.Context, filter masterdata.MaterialFilter) ([]masterdata.Material, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialModel{})
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var rows []models.MaterialModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	materials := make([]masterdata.Material, len(rows))
	for i := range rows {
		materials[i] = *rows[i].ToDomain()
	}
	return materials, nil
}

// Create inserts a material
func (r *GormMaterialRepository) Create(ctx context.Context, material *masterdata.Material) error {
	err := r.db.WithContext(ctx).Create(models.MaterialModelFromDomain(material)).Error
	return translateDuplicate(err, "material", material.Name)
}

// UpdateCurrentCost refreshes the cached weighted-average cost
func (r *GormMaterialRepository) UpdateCurrentCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_cost": cost,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateNotFound(gorm.ErrRecordNotFound)
	}
	return nil
}

// GormSupplierRepository implements masterdata.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// List lists suppliers ordered by name
func (r *GormSupplierRepository) List(ctx context.Context, activeOnly bool) ([]masterdata.Supplier, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var rows []models.SupplierModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	suppliers := make([]masterdata.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = *rows[i].ToDomain()
	}
	return suppliers, nil
}

// Create inserts a supplier
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *masterdata.Supplier) error {
	err := r.db.WithContext(ctx).Create(models.SupplierModelFromDomain(supplier)).Error
	return translateDuplicate(err, "supplier", supplier.Name)
}

// GormSerialRepository implements traceability.SerialRepository with an
// upsert that increments and returns the serial in one statement.
type GormSerialRepository struct {
	db *gorm.DB
}

// NewGormSerialRepository creates a new GormSerialRepository
func NewGormSerialRepository(db *gorm.DB) *GormSerialRepository {
	return &GormSerialRepository{db: db}
}

const nextSerialSQL = `INSERT INTO purchase_serials (material_id, supplier_id, financial_year, current_serial)
VALUES (?, ?, ?, 1)
ON CONFLICT (material_id, supplier_id, financial_year)
DO UPDATE SET current_serial = purchase_serials.current_serial + 1
RETURNING current_serial`

// Next returns the next serial for the material, supplier and financial year
func (r *GormSerialRepository) Next(ctx context.Context, materialID, supplierID uuid.UUID, financialYear string) (int, error) {
	var serial int
	if err := r.db.WithContext(ctx).
		Raw(nextSerialSQL, materialID, supplierID, financialYear).
		Scan(&serial).Error; err != nil {
		return 0, err
	}
	return serial, nil
}

var (
	_ masterdata.MaterialRepository = (*GormMaterialRepository)(nil)
	_ masterdata.SupplierRepository = (*GormSupplierRepository)(nil)
	_ traceability.SerialRepository = (*GormSerialRepository)(nil)
)
