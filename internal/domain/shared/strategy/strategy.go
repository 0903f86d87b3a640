// Package strategy defines the pluggable costing and lot-allocation policies
// used by the ledger and the by-product sale allocator.
package strategy

// Kind groups strategies that are interchangeable
type Kind string

const (
	KindCost       Kind = "cost"
	KindAllocation Kind = "allocation"
)

// Strategy is implemented by every costing or allocation policy
type Strategy interface {
	Name() string
	Kind() Kind
	Description() string
}

// Descriptor carries the identifying fields of a strategy. Implementations
// embed it to satisfy Strategy.
type Descriptor struct {
	name        string
	kind        Kind
	description string
}

// Describe builds a Descriptor
func Describe(name string, kind Kind, description string) Descriptor {
	return Descriptor{name: name, kind: kind, description: description}
}

func (d Descriptor) Name() string        { return d.name }
func (d Descriptor) Kind() Kind          { return d.kind }
func (d Descriptor) Description() string { return d.description }
