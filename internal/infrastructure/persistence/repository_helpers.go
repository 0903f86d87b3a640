package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oilmill/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateNotFound maps gorm's record-not-found to shared.ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// conflict is returned when a versioned update matched no row
func conflict(what string, id any) error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict,
		fmt.Sprintf("%s %v was modified by another transaction", what, id))
}

// translateCreate maps a unique-key violation on insert to a concurrency
// conflict: another transaction created the same row first and the caller
// may resubmit.
func translateCreate(err error, what string, key any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("%s %v was created by another transaction", what, key))
	}
	return err
}

// translateDuplicate maps a unique-key violation on master data to a
// validation error naming the taken value.
func translateDuplicate(err error, what string, key any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewValidationError("%s %v already exists", what, key)
	}
	return err
}

// forUpdate adds a row lock; sqlite has none and serializes writers instead
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// applyFilter adds the date window and paging of a history filter
func applyFilter(query *gorm.DB, filter shared.Filter, dateColumn string) *gorm.DB {
	filter = filter.Normalize(shared.DefaultListLimit)
	if filter.From != nil {
		query = query.Where(dateColumn+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(dateColumn+" <= ?", *filter.To)
	}
	return query.Limit(filter.Limit).Offset(filter.Offset)
}

// whereOilType matches an oil type column case-insensitively
func whereOilType(query *gorm.DB, column, oilType string) *gorm.DB {
	oilType = strings.TrimSpace(oilType)
	if oilType == "" {
		return query
	}
	return query.Where("UPPER("+column+") = ?", strings.ToUpper(oilType))
}
