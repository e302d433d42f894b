package inventory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"fastrecycle-hq/salvage/pkg/amount"
	"fastrecycle-hq/salvage/pkg/rules"
)

// Weighted is implemented by handles that know the weight of one unit.
// Containers use it to give produced items their weight.
type Weighted interface {
	UnitWeight() amount.Amount
}

// Material is a catalog entity together with the weight of one unit.
type Material struct {
	rules.Entity `yaml:",inline"`
	Weight       amount.Amount `yaml:"weight,omitempty"`
}

// UnitWeight implements Weighted.
func (m Material) UnitWeight() amount.Amount { return m.Weight }

// Catalog is the set of entities present in the environment. It resolves
// identifiers for the rule loader and names keywords for item files.
type Catalog struct {
	entities map[string]Material
}

type catalogFile struct {
	Entities []Material `yaml:"entities"`
}

// NewCatalog builds a catalog from weightless entities. Identifiers are
// canonicalized; a later entity replaces an earlier one with the same identifier.
func NewCatalog(entities ...rules.Entity) *Catalog {
	c := &Catalog{entities: make(map[string]Material, len(entities))}
	for _, e := range entities {
		c.Put(e)
	}
	return c
}

// LoadCatalog reads a YAML or JSON catalog file of the form
// {entities: [{id, name, weight}]}. weight is optional.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for i, e := range f.Entities {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog %s: entity %d has no id", path, i)
		}
	}
	c := &Catalog{entities: make(map[string]Material, len(f.Entities))}
	for _, m := range f.Entities {
		c.PutMaterial(m)
	}
	return c, nil
}

// Put adds or replaces an entity without a weight.
func (c *Catalog) Put(e rules.Entity) {
	c.PutMaterial(Material{Entity: e})
}

// PutMaterial adds or replaces an entity with its unit weight.
func (c *Catalog) PutMaterial(m Material) {
	m.ID = rules.CanonicalID(m.ID)
	c.entities[m.ID] = m
}

// Resolve implements rules.Resolver. The returned handle carries the
// canonical identifier and implements Weighted.
func (c *Catalog) Resolve(id string) (rules.Handle, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entities[rules.CanonicalID(id)]
	if !ok {
		return nil, false
	}
	return e, true
}

// Len returns the number of entities.
func (c *Catalog) Len() int {
	return len(c.entities)
}

// IDs returns every canonical identifier in sorted order.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.entities))
	for id := range c.entities {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
