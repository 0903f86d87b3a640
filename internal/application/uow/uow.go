// Package uow defines the unit of work the application services post through.
package uow

import (
	"context"

	"github.com/oilmill/backend/internal/domain/blending"
	"github.com/oilmill/backend/internal/domain/byproduct"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/inventory"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/production"
	"github.com/oilmill/backend/internal/domain/purchase"
	"github.com/oilmill/backend/internal/domain/traceability"
	"github.com/oilmill/backend/internal/domain/writeoff"
)

// TransactionScope runs a function inside one database transaction.
// If fn returns an error every write made through repos is rolled back;
// otherwise the transaction is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories exposes every repository bound to the current transaction.
// Inside TransactionScope.Execute they all share the same transaction; outside
// of it they run on the plain connection pool.
type Repositories interface {
	Lots() inventory.LotRepository
	Movements() inventory.MovementRepository
	Materials() masterdata.MaterialRepository
	Suppliers() masterdata.SupplierRepository
	Serials() traceability.SerialRepository
	Purchases() purchase.Repository
	CostElements() costing.CostElementRepository
	TimeEntries() costing.TimeEntryRepository
	CostOverrides() costing.OverrideLogRepository
	Rates() production.RateRepository
	Batches() production.Repository
	ByProductLots() byproduct.LotRepository
	ByProductSales() byproduct.SaleRepository
	Blends() blending.Repository
	WriteoffReasons() writeoff.ReasonRepository
	Writeoffs() writeoff.Repository
}
