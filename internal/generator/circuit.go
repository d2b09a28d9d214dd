package generator

import (
	"context"
	"sync"
	"time"
)

// CircuitStore keeps rate-limit backoff per provider name.
type CircuitStore interface {
	// OpenUntil returns the reset time and whether the circuit is currently open.
	OpenUntil(ctx context.Context, name string) (time.Time, bool)
	Open(ctx context.Context, name string, resetAt time.Time)
	Close(ctx context.Context, name string)
}

// circuitState tracks rate-limit backoff for a single generator.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) set(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// MemoryCircuits is an in-process CircuitStore.
type MemoryCircuits struct {
	mu     sync.Mutex
	states map[string]*circuitState
	now    func() time.Time
}

// NewMemoryCircuits creates an empty in-process store.
func NewMemoryCircuits() *MemoryCircuits {
	return &MemoryCircuits{states: make(map[string]*circuitState), now: time.Now}
}

func (m *MemoryCircuits) state(name string) *circuitState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[name]
	if !ok {
		s = &circuitState{}
		m.states[name] = s
	}
	return s
}

func (m *MemoryCircuits) OpenUntil(_ context.Context, name string) (time.Time, bool) {
	return m.state(name).isOpenWithReset(m.now())
}

func (m *MemoryCircuits) Open(_ context.Context, name string, resetAt time.Time) {
	m.state(name).set(resetAt)
}

func (m *MemoryCircuits) Close(_ context.Context, name string) {
	m.state(name).set(time.Time{})
}
