package skill

import (
	"fmt"
	"sort"
)

// Catalog indexes abilities by name.
type Catalog struct {
	abilities map[string]*Ability
}

// NewCatalog builds a catalog. Duplicate or empty names are rejected.
func NewCatalog(abilities ...*Ability) (*Catalog, error) {
	c := &Catalog{abilities: make(map[string]*Ability, len(abilities))}
	for _, a := range abilities {
		if a == nil || a.Name == "" {
			return nil, fmt.Errorf("ability without a name")
		}
		if _, dup := c.abilities[a.Name]; dup {
			return nil, fmt.Errorf("duplicate ability: %s", a.Name)
		}
		c.abilities[a.Name] = a
	}
	return c, nil
}

// Get returns the ability or nil.
func (c *Catalog) Get(name string) *Ability {
	if c == nil {
		return nil
	}
	return c.abilities[name]
}

// Resolve returns the abilities for the given names, failing on unknown ones.
func (c *Catalog) Resolve(names []string) ([]*Ability, error) {
	result := make([]*Ability, 0, len(names))
	for _, name := range names {
		a := c.Get(name)
		if a == nil {
			return nil, fmt.Errorf("unknown ability: %s", name)
		}
		result = append(result, a)
	}
	return result, nil
}

// Names returns ability names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.abilities))
	for name := range c.abilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns number of abilities.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.abilities)
}
