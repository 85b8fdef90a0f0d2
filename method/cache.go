/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package method

import (
	"sync"

	"github.com/suparena/repoquery/registry"
)

// Cache derives each method's Descriptor once and shares it afterwards.
// Failed derivations are not cached.
type Cache struct {
	mu          sync.Mutex
	descriptors map[Key]*Descriptor
}

// NewCache creates an empty descriptor cache.
func NewCache() *Cache {
	return &Cache{descriptors: make(map[Key]*Descriptor)}
}

// Derive returns the cached descriptor for sig, deriving it on first use.
func (c *Cache) Derive(sig Signature, entity registry.EntityInfo, overrides OverrideLookup) (*Descriptor, error) {
	key := sig.Key()

	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.descriptors[key]; ok {
		return d, nil
	}
	d, err := Derive(sig, entity, overrides)
	if err != nil {
		return nil, err
	}
	c.descriptors[key] = d
	return d, nil
}

// Lookup returns a previously derived descriptor.
func (c *Cache) Lookup(key Key) (*Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.descriptors[key]
	return d, ok
}

// Len is the number of cached descriptors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.descriptors)
}
