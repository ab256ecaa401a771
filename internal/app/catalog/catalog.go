// Package catalog owns the in-memory mirror of the property store and the
// operations that keep it synchronized: single-property writes, bulk
// workbook import and filtered export.
package catalog

import (
	"sync"

	"github.com/dalemusser/vitrine/internal/domain/models"
)

// Catalog is the local collection of properties, in store order. Readers
// always receive copies.
type Catalog struct {
	mu    sync.RWMutex
	items []models.Property
	index map[string]int
}

// New returns a catalog holding items.
func New(items ...models.Property) *Catalog {
	c := &Catalog{}
	c.Replace(items)
	return c
}

// Replace swaps the whole collection.
func (c *Catalog) Replace(items []models.Property) {
	next := make([]models.Property, 0, len(items))
	index := make(map[string]int, len(items))
	for _, p := range items {
		if i, dup := index[p.ID]; dup {
			next[i] = p.Clone()
			continue
		}
		index[p.ID] = len(next)
		next = append(next, p.Clone())
	}
	c.mu.Lock()
	c.items = next
	c.index = index
	c.mu.Unlock()
}

// All returns a copy of every property.
func (c *Catalog) All() []models.Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Property, len(c.items))
	for i, p := range c.items {
		out[i] = p.Clone()
	}
	return out
}

// Get returns the property with id.
func (c *Catalog) Get(id string) (models.Property, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return models.Property{}, false
	}
	return c.items[i].Clone(), true
}

// Len returns the number of properties.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// put replaces the property with p.ID, or appends p.
func (c *Catalog) put(p models.Property) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(p)
}

func (c *Catalog) putLocked(p models.Property) {
	if c.index == nil {
		c.index = map[string]int{}
	}
	if i, ok := c.index[p.ID]; ok {
		c.items[i] = p.Clone()
		return
	}
	c.index[p.ID] = len(c.items)
	c.items = append(c.items, p.Clone())
}

// swap replaces the property with p.ID by p only while the current copy
// still carries version want. It reports whether the swap happened.
func (c *Catalog) swap(want int64, p models.Property) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[p.ID]
	if !ok || c.items[i].Version != want {
		return false
	}
	c.items[i] = p.Clone()
	return true
}

// remove deletes the property with id, keeping the order of the rest.
func (c *Catalog) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
	return true
}
