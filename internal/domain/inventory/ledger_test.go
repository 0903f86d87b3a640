package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/infrastructure/strategy/cost"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLots is an in-memory LotRepository enforcing the version check
type memoryLots struct {
	byKey map[string]InventoryLot
}

func newMemoryLots() *memoryLots {
	return &memoryLots{byKey: make(map[string]InventoryLot)}
}

func (m *memoryLots) get(key string) (*InventoryLot, error) {
	lot, ok := m.byKey[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &lot, nil
}

func (m *memoryLots) FindByID(_ context.Context, id uuid.UUID) (*InventoryLot, error) {
	for _, lot := range m.byKey {
		if lot.ID == id {
			l := lot
			return &l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryLots) FindByKey(_ context.Context, key string) (*InventoryLot, error) {
	return m.get(key)
}

func (m *memoryLots) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryLot, error) {
	return m.FindByID(ctx, id)
}

func (m *memoryLots) FindByKeyForUpdate(_ context.Context, key string) (*InventoryLot, error) {
	return m.get(key)
}

func (m *memoryLots) List(context.Context, LotFilter) ([]InventoryLot, error) {
	lots := make([]InventoryLot, 0, len(m.byKey))
	for _, lot := range m.byKey {
		lots = append(lots, lot)
	}
	return lots, nil
}

func (m *memoryLots) Create(_ context.Context, lot *InventoryLot) error {
	if _, exists := m.byKey[lot.LotKey]; exists {
		return shared.ErrConcurrencyConflict
	}
	m.byKey[lot.LotKey] = *lot
	return nil
}

func (m *memoryLots) SaveWithLock(_ context.Context, lot *InventoryLot) error {
	stored, ok := m.byKey[lot.LotKey]
	if !ok || stored.Version != lot.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	m.byKey[lot.LotKey] = *lot
	return nil
}

type memoryMovements struct {
	items []StockMovement
}

func (m *memoryMovements) Create(_ context.Context, mv *StockMovement) error {
	m.items = append(m.items, *mv)
	return nil
}

func (m *memoryMovements) ListByLot(_ context.Context, lotID uuid.UUID, _ shared.Filter) ([]StockMovement, error) {
	var out []StockMovement
	for _, mv := range m.items {
		if mv.LotID == lotID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func newTestLedger() (*Ledger, *memoryLots, *memoryMovements) {
	lots := newMemoryLots()
	movements := &memoryMovements{}
	return NewLedger(lots, movements, cost.NewWeightedAverageCostStrategy()), lots, movements
}

func seedSpec() LotSpec {
	materialID := uuid.New()
	return LotSpec{Key: MaterialLotKey(materialID), Type: LotTypeMaterial, Source: LotSourcePurchase, MaterialID: &materialID}
}

func receive(t *testing.T, l *Ledger, spec LotSpec, qty, cost string) *Entry {
	t.Helper()
	entry, err := l.Receive(context.Background(), ReceiveCommand{
		Lot:       spec,
		Quantity:  decimal.RequireFromString(qty),
		UnitCost:  decimal.RequireFromString(cost),
		Date:      testDate,
		Reference: Reference{Type: ReferenceManual},
	})
	require.NoError(t, err)
	return entry
}

func TestLedger_Receive(t *testing.T) {
	t.Run("creates lot on first receipt", func(t *testing.T) {
		ledger, lots, movements := newTestLedger()
		spec := seedSpec()

		entry := receive(t, ledger, spec, "1000", "50")

		assert.True(t, entry.Created)
		stored, err := lots.FindByKey(context.Background(), spec.Key)
		require.NoError(t, err)
		assert.True(t, stored.OpeningStock.IsZero())
		assert.True(t, stored.Purchases.Equal(decimal.NewFromInt(1000)))
		assert.True(t, stored.ClosingStock.Equal(decimal.NewFromInt(1000)))
		assert.True(t, stored.WeightedAvgCost.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, stored.Version)
		require.Len(t, movements.items, 1)
		assert.Equal(t, MovementReceipt, movements.items[0].MovementType)
		assert.True(t, movements.items[0].BalanceBefore.IsZero())
	})

	t.Run("blends average on later receipts", func(t *testing.T) {
		ledger, lots, _ := newTestLedger()
		spec := seedSpec()

		receive(t, ledger, spec, "100", "10")
		entry := receive(t, ledger, spec, "100", "20")

		assert.False(t, entry.Created)
		stored, _ := lots.FindByKey(context.Background(), spec.Key)
		assert.True(t, stored.WeightedAvgCost.Equal(decimal.NewFromInt(15)), "avg %s", stored.WeightedAvgCost)
		assert.True(t, stored.ClosingStock.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, 2, stored.Version)
	})

	t.Run("receipt into emptied lot takes the new cost", func(t *testing.T) {
		ledger, lots, _ := newTestLedger()
		spec := seedSpec()
		receive(t, ledger, spec, "10", "10")
		_, err := ledger.Consume(context.Background(), ConsumeCommand{LotKey: spec.Key, Quantity: decimal.NewFromInt(10), Date: testDate})
		require.NoError(t, err)

		receive(t, ledger, spec, "5", "30")

		stored, _ := lots.FindByKey(context.Background(), spec.Key)
		assert.True(t, stored.WeightedAvgCost.Equal(decimal.NewFromInt(30)))
	})

	t.Run("validates input", func(t *testing.T) {
		ledger, _, _ := newTestLedger()
		spec := seedSpec()

		_, err := ledger.Receive(context.Background(), ReceiveCommand{Lot: spec, Quantity: decimal.Zero, UnitCost: decimal.NewFromInt(1), Date: testDate})
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = ledger.Receive(context.Background(), ReceiveCommand{Lot: spec, Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(-1), Date: testDate})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestLedger_ReceiveOrderIndependent(t *testing.T) {
	receipts := [][2]string{{"120.5", "48.25"}, {"300", "51"}, {"75.25", "49.9"}}

	finalAvg := func(order []int) decimal.Decimal {
		ledger, lots, _ := newTestLedger()
		spec := seedSpec()
		for _, i := range order {
			receive(t, ledger, spec, receipts[i][0], receipts[i][1])
		}
		stored, _ := lots.FindByKey(context.Background(), spec.Key)
		return stored.WeightedAvgCost
	}

	a := finalAvg([]int{0, 1, 2})
	b := finalAvg([]int{2, 0, 1})
	assert.True(t, a.Sub(b).Abs().LessThan(decimal.RequireFromString("0.000000001")), "%s vs %s", a, b)
}

func TestLedger_Consume(t *testing.T) {
	t.Run("consumes by key", func(t *testing.T) {
		ledger, lots, movements := newTestLedger()
		spec := seedSpec()
		receive(t, ledger, spec, "1000", "50")

		entry, err := ledger.Consume(context.Background(), ConsumeCommand{LotKey: spec.Key, Quantity: decimal.NewFromInt(400), Date: testDate})

		require.NoError(t, err)
		assert.True(t, entry.Lot.ClosingStock.Equal(decimal.NewFromInt(600)))
		stored, _ := lots.FindByKey(context.Background(), spec.Key)
		assert.True(t, stored.Consumption.Equal(decimal.NewFromInt(400)))
		assert.True(t, stored.WeightedAvgCost.Equal(decimal.NewFromInt(50)))
		last := movements.items[len(movements.items)-1]
		assert.Equal(t, MovementConsumption, last.MovementType)
		assert.True(t, last.TotalCost.Equal(decimal.NewFromInt(20000)))
	})

	t.Run("consumes by id", func(t *testing.T) {
		ledger, _, _ := newTestLedger()
		spec := seedSpec()
		created := receive(t, ledger, spec, "10", "5")

		entry, err := ledger.Consume(context.Background(), ConsumeCommand{LotID: created.Lot.ID, Quantity: decimal.NewFromInt(3), Date: testDate})

		require.NoError(t, err)
		assert.True(t, entry.Lot.ClosingStock.Equal(decimal.NewFromInt(7)))
	})

	t.Run("insufficient stock changes nothing", func(t *testing.T) {
		ledger, lots, movements := newTestLedger()
		spec := seedSpec()
		receive(t, ledger, spec, "10", "5")

		_, err := ledger.Consume(context.Background(), ConsumeCommand{LotKey: spec.Key, Quantity: decimal.NewFromInt(11), Date: testDate})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		stored, _ := lots.FindByKey(context.Background(), spec.Key)
		assert.True(t, stored.ClosingStock.Equal(decimal.NewFromInt(10)))
		assert.Len(t, movements.items, 1)
	})

	t.Run("unknown lot", func(t *testing.T) {
		ledger, _, _ := newTestLedger()

		_, err := ledger.Consume(context.Background(), ConsumeCommand{LotKey: "MATERIAL:missing", Quantity: decimal.NewFromInt(1), Date: testDate})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedger_StockConservation(t *testing.T) {
	ledger, lots, _ := newTestLedger()
	spec := seedSpec()
	ctx := context.Background()

	received := decimal.Zero
	consumed := decimal.Zero
	for i, qty := range []string{"10.125", "3.5", "7", "0.375", "12"} {
		receive(t, ledger, spec, qty, "20")
		received = received.Add(decimal.RequireFromString(qty))
		if i%2 == 1 {
			out := decimal.RequireFromString("2.25")
			_, err := ledger.Consume(ctx, ConsumeCommand{LotKey: spec.Key, Quantity: out, Date: testDate})
			require.NoError(t, err)
			consumed = consumed.Add(out)
		}
	}

	stored, err := lots.FindByKey(ctx, spec.Key)
	require.NoError(t, err)
	assert.True(t, stored.IsBalanced())
	assert.True(t, stored.ClosingStock.Equal(received.Sub(consumed)), "closing %s", stored.ClosingStock)
}
