package shared

import "github.com/oilmill/backend/internal/domain/shared/valueobject"

// Default and maximum row counts for history queries
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Filter represents common query options for history listings
type Filter struct {
	Limit  int
	Offset int
	From   *valueobject.Date
	To     *valueobject.Date
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{Limit: DefaultListLimit}
}

// Normalize clamps the limit into [1, MaxListLimit], falling back to def
// when no limit was given.
func (f Filter) Normalize(def int) Filter {
	if f.Limit <= 0 {
		f.Limit = def
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
