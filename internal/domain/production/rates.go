package production

import (
	"context"
	"strings"

	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ByProductRate is the estimated cake and sludge rate for an oil type,
// effective from a date until superseded.
type ByProductRate struct {
	OilType       string
	CakeRate      decimal.Decimal
	SludgeRate    decimal.Decimal
	EffectiveFrom valueobject.Date
}

// DefaultByProductRates are used when no rate row exists for an oil type
var DefaultByProductRates = map[string]ByProductRate{
	"GROUNDNUT": {OilType: "Groundnut", CakeRate: decimal.NewFromInt(30), SludgeRate: decimal.NewFromInt(10)},
	"SESAME":    {OilType: "Sesame", CakeRate: decimal.NewFromInt(35), SludgeRate: decimal.NewFromInt(12)},
	"COCONUT":   {OilType: "Coconut", CakeRate: decimal.NewFromInt(25), SludgeRate: decimal.NewFromInt(8)},
	"MUSTARD":   {OilType: "Mustard", CakeRate: decimal.NewFromInt(28), SludgeRate: decimal.NewFromInt(9)},
}

// DefaultRateFor looks up the built-in rate for an oil type
func DefaultRateFor(oilType string) (ByProductRate, bool) {
	r, ok := DefaultByProductRates[strings.ToUpper(strings.TrimSpace(oilType))]
	return r, ok
}

// RateRepository stores by-product rates. Current returns shared.ErrNotFound
// when nothing is effective for the oil type on asOf.
type RateRepository interface {
	Current(ctx context.Context, oilType string, asOf valueobject.Date) (*ByProductRate, error)
	ListCurrent(ctx context.Context, asOf valueobject.Date) ([]ByProductRate, error)
	Create(ctx context.Context, rate *ByProductRate) error
}
