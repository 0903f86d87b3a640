// Package traceability builds the human-readable codes that let a bottle of
// oil be traced back to its seed purchase.
//
//	purchase: GNS-K-1-05082025-SKM  material, serial, purchase date, supplier
//	batch:    GNO-K-05082025-PUV    oil code, seed purchase date, production unit
//	blend:    GNOKU-07082025-PUV    oil code + source letters, blend date, unit
package traceability

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SerialRepository hands out purchase serial numbers per material, supplier
// and financial year. Next must be atomic within the caller's transaction.
type SerialRepository interface {
	Next(ctx context.Context, materialID, supplierID uuid.UUID, financialYear string) (int, error)
}

// PurchaseCode formats a purchase line code
func PurchaseCode(materialShortCode string, serial int, purchaseDate valueobject.Date, supplierShortCode string) (string, error) {
	if materialShortCode == "" || supplierShortCode == "" {
		return "", shared.NewValidationError("material and supplier short codes are required for traceable codes")
	}
	if serial < 1 {
		return "", shared.NewValidationError("serial must be positive, got %d", serial)
	}
	return fmt.Sprintf("%s-%d-%s-%s", materialShortCode, serial, purchaseDate.DDMMYYYY(), supplierShortCode), nil
}

// OilCode turns a seed short code into the matching oil code (GNS-K to GNO-K).
// Codes without the seed marker are returned unchanged.
func OilCode(seedShortCode string) string {
	if strings.Contains(seedShortCode, "S-") {
		return strings.Replace(seedShortCode, "S-", "O-", 1)
	}
	return seedShortCode
}

// BatchCode derives a batch code from the seed purchase code it consumed
func BatchCode(seedPurchaseCode, seedShortCode, unitCode string) (string, error) {
	parts := strings.Split(seedPurchaseCode, "-")
	if len(parts) < 5 {
		return "", shared.NewValidationError("invalid seed purchase code format: %s", seedPurchaseCode)
	}
	if seedShortCode == "" {
		return "", shared.NewValidationError("seed material has no short code")
	}
	if unitCode == "" {
		return "", shared.NewValidationError("production unit code is not configured")
	}
	purchaseDate := parts[len(parts)-2]
	return fmt.Sprintf("%s-%s-%s", OilCode(seedShortCode), purchaseDate, unitCode), nil
}

// BlendSource is one component's contribution to a blend code
type BlendSource struct {
	TraceableCode string
	Percentage    decimal.Decimal
}

// BlendCode combines component codes ordered by percentage, largest first.
// Extraction codes (four parts) contribute their supplier letter; blend codes
// (three parts) contribute every letter after the oil code. ok is false when
// a component has no usable code.
func BlendCode(sources []BlendSource, blendDate valueobject.Date, unitCode string) (code string, ok bool) {
	if len(sources) == 0 || unitCode == "" {
		return "", false
	}
	sorted := make([]BlendSource, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentage.GreaterThan(sorted[j].Percentage)
	})

	var (
		oilType   string
		suppliers []string
		seen      = make(map[string]bool)
	)
	add := func(letter string) {
		if letter != "" && !seen[letter] {
			seen[letter] = true
			suppliers = append(suppliers, letter)
		}
	}

	for _, src := range sorted {
		parts := strings.Split(src.TraceableCode, "-")
		switch len(parts) {
		case 4:
			if oilType == "" {
				oilType = parts[0]
			}
			add(parts[1])
		case 3:
			if len(parts[0]) < 3 {
				return "", false
			}
			if oilType == "" {
				oilType = parts[0][:3]
			}
			for _, r := range parts[0][3:] {
				add(string(r))
			}
		default:
			return "", false
		}
	}

	return fmt.Sprintf("%s%s-%s-%s", oilType, strings.Join(suppliers, ""), blendDate.DDMMYYYY(), unitCode), true
}

// FallbackBlendCode is used when a component cannot be traced
func FallbackBlendCode(oilNames string, blendDate valueobject.Date) string {
	return fmt.Sprintf("BLEND-%s-%s", oilNames, blendDate.DDMMYYYY())
}
