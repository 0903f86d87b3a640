package strategy

import (
	"github.com/oilmill/backend/internal/domain/shared/strategy"
	"github.com/oilmill/backend/internal/infrastructure/strategy/allocation"
	"github.com/oilmill/backend/internal/infrastructure/strategy/cost"
)

// NewRegistryWithDefaults registers weighted-average costing and FIFO lot
// allocation and makes them the defaults.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	weighted := cost.NewWeightedAverageCostStrategy()
	fifo := allocation.NewFIFOLotAllocationStrategy()

	for _, step := range []func() error{
		func() error { return r.RegisterCostStrategy(weighted) },
		func() error { return r.RegisterAllocationStrategy(fifo) },
		func() error { return r.SetDefault(strategy.KindCost, weighted.Name()) },
		func() error { return r.SetDefault(strategy.KindAllocation, fifo.Name()) },
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return r, nil
}
