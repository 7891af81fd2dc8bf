// SPDX-License-Identifier: MPL-2.0

package model

import "sort"

// Collection maps exercises by their ID. The zero value is not usable;
// construct with NewCollection.
type Collection struct {
	lookup map[string]*Exercise
}

// NewCollection creates an empty Collection.
func NewCollection() *Collection {
	return &Collection{lookup: make(map[string]*Exercise)}
}

// Add inserts or replaces an exercise under its current ID.
func (c *Collection) Add(ex *Exercise) {
	c.lookup[ex.ID] = ex
}

// Remove deletes the exercise stored under ex.ID, if any.
func (c *Collection) Remove(ex *Exercise) {
	delete(c.lookup, ex.ID)
}

// Get returns the exercise with the given id.
func (c *Collection) Get(id string) (*Exercise, bool) {
	ex, ok := c.lookup[id]
	return ex, ok
}

// Len returns the number of exercises.
func (c *Collection) Len() int {
	return len(c.lookup)
}

// IDs returns all ids in ascending order.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.lookup))
	for id := range c.lookup {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns exercises ordered by id.
func (c *Collection) All() []*Exercise {
	ids := c.IDs()
	exes := make([]*Exercise, len(ids))
	for i, id := range ids {
		exes[i] = c.lookup[id]
	}
	return exes
}
