package thicket

import (
	"fmt"
	"sort"
)

// Factory constructs a native object for a node kind.
type Factory func(args ...any) (any, error)

type catalogueEntry struct {
	factory Factory
	attach  *Attach
}

// Catalogue maps node kind names to factories. Targets register their
// kinds once at start-up; the renderer consults it in CreateNode.
type Catalogue struct {
	entries map[string]catalogueEntry
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{entries: make(map[string]catalogueEntry)}
}

// Extend registers (or replaces) the factory for kind.
func (c *Catalogue) Extend(kind string, f Factory) {
	c.ExtendAttach(kind, f, nil)
}

// ExtendAttach registers kind with a default attach descriptor, used for
// value kinds such as materials that are assigned rather than added.
func (c *Catalogue) ExtendAttach(kind string, f Factory, attach *Attach) {
	if f == nil {
		panic(fmt.Sprintf("thicket: nil factory for kind %q", kind))
	}
	c.entries[kind] = catalogueEntry{factory: f, attach: attach}
}

// Lookup returns the factory and default attach descriptor for kind.
func (c *Catalogue) Lookup(kind string) (Factory, *Attach, bool) {
	e, ok := c.entries[kind]
	return e.factory, e.attach, ok
}

// Kinds returns the registered kind names in sorted order.
func (c *Catalogue) Kinds() []string {
	kinds := make([]string, 0, len(c.entries))
	for k := range c.entries {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
