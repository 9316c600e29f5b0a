package indra

import (
	"sync"
	"time"

	"github.com/michalkurzeja/go-clock"
)

// Cache holds optimistic command state of a single charger.
//
// A value recorded after a successful command is reported only until a
// snapshot taken later than the command arrives, at which point the real
// device state takes over.
type Cache interface {
	SetBoost(active bool)
	SetLocked(locked bool)
	SetSolar(enabled bool)

	// Boost returns the optimistic boost state if it was set after the provided snapshot time.
	Boost(since time.Time) (bool, bool)
	// Locked returns the optimistic lock state if it was set after the provided snapshot time.
	Locked(since time.Time) (bool, bool)
	// Solar returns the optimistic solar state if it was set after the provided snapshot time.
	Solar(since time.Time) (bool, bool)
}

type overlayEntry struct {
	value bool
	setAt time.Time
}

func (e *overlayEntry) get(since time.Time) (bool, bool) {
	if e == nil || !e.setAt.After(since) {
		return false, false
	}

	return e.value, true
}

type overlayCache struct {
	mu sync.RWMutex

	boost  *overlayEntry
	locked *overlayEntry
	solar  *overlayEntry
}

// NewCache returns a new optimistic command state cache.
func NewCache() Cache {
	return &overlayCache{}
}

func (c *overlayCache) SetBoost(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.boost = &overlayEntry{value: active, setAt: clock.Now().UTC()}
}

func (c *overlayCache) SetLocked(locked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.locked = &overlayEntry{value: locked, setAt: clock.Now().UTC()}
}

func (c *overlayCache) SetSolar(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.solar = &overlayEntry{value: enabled, setAt: clock.Now().UTC()}
}

func (c *overlayCache) Boost(since time.Time) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.boost.get(since)
}

func (c *overlayCache) Locked(since time.Time) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.locked.get(since)
}

func (c *overlayCache) Solar(since time.Time) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.solar.get(since)
}
