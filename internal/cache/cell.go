// Package cache holds small shared values that are refreshed out of band and
// read on the request path. Readers tolerate stale values.
package cache

import (
	"sync"
	"time"
)

// Cell holds one value plus the time it was last written.
// The zero value is an empty cell ready for use.
type Cell[T any] struct {
	mu      sync.RWMutex
	val     T
	ok      bool
	updated time.Time
}

// Set stores v and stamps it with now.
func (c *Cell[T]) Set(v T, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val, c.ok, c.updated = v, true, now
}

// Clear empties the cell. The timestamp records when it was cleared.
func (c *Cell[T]) Clear(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.val, c.ok, c.updated = zero, false, now
}

// Get returns the value, when it was last written, and whether a value is present.
func (c *Cell[T]) Get() (T, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val, c.updated, c.ok
}
