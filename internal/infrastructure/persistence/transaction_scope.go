package persistence

import (
	"context"

	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/blending"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/purchase"
	"github.com/oilmill/backend/internal/domain/traceability"
	"github.com/oilmill/backend/internal/domain/writeoff"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories hands out repositories bound to one *gorm.DB, which is a
// transaction inside Execute and the pool elsewhere.
type GormRepositories struct {
	tx *gorm.DB
}

// NewGormRepositories binds the repositories to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{tx: db}
}

func (r *GormRepositories) Lots() inventory.LotRepository {
	return NewGormInventoryLotRepository(r.tx)
}

func (r *GormRepositories) Movements() inventory.MovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *GormRepositories) Materials() masterdata.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

func (r *GormRepositories) Suppliers() masterdata.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

func (r *GormRepositories) Serials() traceability.SerialRepository {
	return NewGormSerialRepository(r.tx)
}

func (r *GormRepositories) Purchases() purchase.Repository {
	return NewGormPurchaseRepository(r.tx)
}

func (r *GormRepositories) CostElements() costing.CostElementRepository {
	return NewGormCostElementRepository(r.tx)
}

func (r *GormRepositories) TimeEntries() costing.TimeEntryRepository {
	return NewGormTimeEntryRepository(r.tx)
}

func (r *GormRepositories) CostOverrides() costing.OverrideLogRepository {
	return NewGormOverrideLogRepository(r.tx)
}

func (r *GormRepositories) Rates() production.RateRepository {
	return NewGormByProductRateRepository(r.tx)
}

func (r *GormRepositories) Batches() production.Repository {
	return NewGormBatchRepository(r.tx)
}

func (r *GormRepositories) ByProductLots() byproduct.LotRepository {
	return NewGormByProductLotRepository(r.tx)
}

func (r *GormRepositories) ByProductSales() byproduct.SaleRepository {
	return NewGormByProductSaleRepository(r.tx)
}

func (r *GormRepositories) Blends() blending.Repository {
	return NewGormBlendRepository(r.tx)
}

func (r *GormRepositories) WriteoffReasons() writeoff.ReasonRepository {
	return NewGormWriteoffReasonRepository(r.tx)
}

func (r *GormRepositories) Writeoffs() writeoff.Repository {
	return NewGormWriteoffRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ uow.Repositories = (*GormRepositories)(nil)
