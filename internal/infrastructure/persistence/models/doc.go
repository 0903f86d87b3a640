// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain all GORM annotations and table mappings
// 3. ToDomain/FromDomain mappers convert between the two
// 4. Repositories use persistence models for database operations
//
// Quantities, rates and amounts are stored as unbounded NUMERIC; dates are
// stored as integer day numbers (see valueobject.Date).
//
// Structure:
// - base.go: BaseModel, AggregateModel
// - masterdata.go: materials, suppliers, purchase serials, cost elements, by-product rates
// - inventory.go: inventory lots, stock movements
// - purchase.go: purchases and purchase items
// - production.go: batches and batch cost details
// - costing.go: batch time entries, cost override log
// - byproduct.go: by-product lots, sales, sale allocations
// - blending.go: blends and blend components
// - writeoff.go: writeoff reasons and writeoffs
package models
