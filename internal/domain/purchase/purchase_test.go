package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var purchaseDate = valueobject.NewDate(2025, time.August, 5)

func TestLandedCostPerUnit(t *testing.T) {
	tests := []struct {
		name                                     string
		qty, rate, transport, handling, tax, out string
	}{
		{"no charges no tax", "1000", "50", "0", "0", "0", "50"},
		{"charges and tax", "100", "80", "500", "300", "5", "92.4"},
		{"tax only", "10", "100", "0", "0", "18", "118"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LandedCostPerUnit(d(tt.qty), d(tt.rate), d(tt.transport), d(tt.handling), d(tt.tax))
			assert.True(t, d(tt.out).Equal(got), "got %s", got)
		})
	}
}

func TestNewPurchase(t *testing.T) {
	supplierID := uuid.New()

	t.Run("single line matches landed cost formula", func(t *testing.T) {
		p, err := NewPurchase(supplierID, "INV-1", purchaseDate, d("500"), d("300"), []LineInput{
			{MaterialID: uuid.New(), Quantity: d("100"), Rate: d("80"), TaxRate: d("5")},
		})

		require.NoError(t, err)
		require.Len(t, p.Items, 1)
		assert.True(t, d("92.4").Equal(p.Items[0].LandedCostPerUnit))
		assert.True(t, d("9240").Equal(p.TotalCost))
		assert.Equal(t, p.ID, p.Items[0].PurchaseID)
	})

	t.Run("header charges split by value with remainder on last line", func(t *testing.T) {
		p, err := NewPurchase(supplierID, "INV-2", purchaseDate, d("100"), d("0"), []LineInput{
			{MaterialID: uuid.New(), Quantity: d("1"), Rate: d("1")},
			{MaterialID: uuid.New(), Quantity: d("1"), Rate: d("1")},
			{MaterialID: uuid.New(), Quantity: d("1"), Rate: d("1")},
		})

		require.NoError(t, err)
		assert.True(t, d("33.33").Equal(p.Items[0].AllocatedTransport))
		assert.True(t, d("33.33").Equal(p.Items[1].AllocatedTransport))
		assert.True(t, d("33.34").Equal(p.Items[2].AllocatedTransport))

		sum := decimal.Zero
		for _, item := range p.Items {
			sum = sum.Add(item.AllocatedTransport)
		}
		assert.True(t, d("100").Equal(sum))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		line := LineInput{MaterialID: uuid.New(), Quantity: d("1"), Rate: d("1")}
		cases := map[string]func() error{
			"no supplier": func() error {
				_, err := NewPurchase(uuid.Nil, "INV", purchaseDate, d("0"), d("0"), []LineInput{line})
				return err
			},
			"no items": func() error {
				_, err := NewPurchase(supplierID, "INV", purchaseDate, d("0"), d("0"), nil)
				return err
			},
			"zero quantity": func() error {
				bad := line
				bad.Quantity = decimal.Zero
				_, err := NewPurchase(supplierID, "INV", purchaseDate, d("0"), d("0"), []LineInput{bad})
				return err
			},
			"negative rate": func() error {
				bad := line
				bad.Rate = d("-1")
				_, err := NewPurchase(supplierID, "INV", purchaseDate, d("0"), d("0"), []LineInput{bad})
				return err
			},
			"negative freight": func() error {
				_, err := NewPurchase(supplierID, "INV", purchaseDate, d("-1"), d("0"), []LineInput{line})
				return err
			},
		}
		for name, fn := range cases {
			assert.ErrorIs(t, fn(), shared.ErrValidation, name)
		}
	})
}
