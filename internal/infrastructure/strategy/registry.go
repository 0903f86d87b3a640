package strategy

import (
	"fmt"
	"slices"
	"sync"

	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/domain/shared/strategy"
)

// namedSet holds the strategies of one kind and the name of its default
type namedSet[T strategy.Strategy] struct {
	kind     strategy.Kind
	byName   map[string]T
	fallback string
}

func newNamedSet[T strategy.Strategy](kind strategy.Kind) *namedSet[T] {
	return &namedSet[T]{kind: kind, byName: make(map[string]T)}
}

func (s *namedSet[T]) add(item T) error {
	name := item.Name()
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("%w: %s strategy %q already registered", shared.ErrValidation, s.kind, name)
	}
	s.byName[name] = item
	return nil
}

// get resolves name, or the default when name is empty
func (s *namedSet[T]) get(name string) (T, error) {
	var zero T
	if name == "" {
		name = s.fallback
	}
	if name == "" {
		return zero, fmt.Errorf("%w: no default %s strategy set", shared.ErrNotFound, s.kind)
	}
	item, ok := s.byName[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s strategy %q not found", shared.ErrNotFound, s.kind, name)
	}
	return item, nil
}

func (s *namedSet[T]) names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// StrategyRegistry resolves costing and allocation strategies by name
type StrategyRegistry struct {
	mu         sync.RWMutex
	cost       *namedSet[strategy.CostCalculationStrategy]
	allocation *namedSet[strategy.LotAllocationStrategy]
}

// NewStrategyRegistry creates an empty registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		cost:       newNamedSet[strategy.CostCalculationStrategy](strategy.KindCost),
		allocation: newNamedSet[strategy.LotAllocationStrategy](strategy.KindAllocation),
	}
}

// RegisterCostStrategy adds a cost strategy
func (r *StrategyRegistry) RegisterCostStrategy(s strategy.CostCalculationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cost.add(s)
}

// RegisterAllocationStrategy adds an allocation strategy
func (r *StrategyRegistry) RegisterAllocationStrategy(s strategy.LotAllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocation.add(s)
}

// CostStrategy returns the named cost strategy, or the default for ""
func (r *StrategyRegistry) CostStrategy(name string) (strategy.CostCalculationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cost.get(name)
}

// AllocationStrategy returns the named allocation strategy, or the default for ""
func (r *StrategyRegistry) AllocationStrategy(name string) (strategy.LotAllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allocation.get(name)
}

// SetDefault makes a registered strategy the default of its kind
func (r *StrategyRegistry) SetDefault(kind strategy.Kind, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var registered bool
	switch kind {
	case strategy.KindCost:
		_, registered = r.cost.byName[name]
		if registered {
			r.cost.fallback = name
		}
	case strategy.KindAllocation:
		_, registered = r.allocation.byName[name]
		if registered {
			r.allocation.fallback = name
		}
	}
	if !registered {
		return fmt.Errorf("%w: %s strategy %q not found", shared.ErrNotFound, kind, name)
	}
	return nil
}

// Names lists the registered strategies of a kind, sorted
func (r *StrategyRegistry) Names(kind strategy.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch kind {
	case strategy.KindCost:
		return r.cost.names()
	case strategy.KindAllocation:
		return r.allocation.names()
	}
	return nil
}
