package adapter

import (
	"errors"
	"sync"
	"time"
)

// ErrEmptyProperties is returned when the device answers a property fetch
// with no usable values. An empty set is never cached: the raw property set
// is replaced wholesale, so caching it would wipe known-good state.
var ErrEmptyProperties = errors.New("adapter: device returned no properties")

// StateCache holds the last-known raw property set and the timestamp of the
// last successful poll. It is the single source of truth for current device
// state.
type StateCache struct {
	mu       sync.RWMutex
	props    map[string]string
	lastPoll time.Time
}

// NewStateCache creates an empty state cache
func NewStateCache() *StateCache {
	return &StateCache{
		props: make(map[string]string),
	}
}

// Replace swaps in a new raw property set wholesale. Empty sets are rejected
// so that stale-but-valid state survives a bad fetch.
func (c *StateCache) Replace(props map[string]string) error {
	if len(props) == 0 {
		return ErrEmptyProperties
	}

	next := make(map[string]string, len(props))
	for k, v := range props {
		next[k] = v
	}

	c.mu.Lock()
	c.props = next
	c.mu.Unlock()
	return nil
}

// Update overwrites a single raw key. Used by the write path to reflect a
// just-sent value without re-reading the device.
func (c *StateCache) Update(key, value string) {
	c.mu.Lock()
	c.props[key] = value
	c.mu.Unlock()
}

// Get returns one raw value
func (c *StateCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.props[key]
	return v, ok
}

// Snapshot returns a copy of the raw property set
func (c *StateCache) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.props))
	for k, v := range c.props {
		out[k] = v
	}
	return out
}

// Len returns the number of cached raw keys
func (c *StateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.props)
}

// MarkPolled records the time of the last successful poll
func (c *StateCache) MarkPolled(t time.Time) {
	c.mu.Lock()
	c.lastPoll = t
	c.mu.Unlock()
}

// LastPoll returns the time of the last successful poll, zero if none
func (c *StateCache) LastPoll() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPoll
}
