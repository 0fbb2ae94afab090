// Package connectivity tracks the environment's online/offline signal and
// raises edge-triggered transition events.
package connectivity

import (
	"context"
	"sync"
	"time"
)

// Transition is one edge of the connectivity signal.
type Transition struct {
	Online bool
	At     time.Time
}

// Monitor holds the current connectivity boolean and notifies subscribers
// exactly once per edge. It does not verify reachability beyond what the
// environment reports: the reconciler's own call failures are the real
// source of truth for whether the server can be reached, and a failed
// reconciliation never flips this signal back to offline.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]chan Transition
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online: online,
		subs:   make(map[int]chan Transition),
	}
}

// Online returns the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline updates the state. Subscribers are notified only when the
// value actually changes.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online

	t := Transition{Online: online, At: time.Now()}
	for _, ch := range m.subs {
		// Non-blocking: a slow subscriber drops edges rather than
		// stalling the signal source.
		select {
		case ch <- t:
		default:
		}
	}
}

// Subscribe registers for transition events. Cancel by calling the
// returned unsubscribe function; the channel is closed on unsubscribe.
func (m *Monitor) Subscribe() (<-chan Transition, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	ch := make(chan Transition, 4)
	m.subs[id] = ch

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

// Poll drives the monitor from a probe function until the context ends.
// The probe answers "does the environment report connectivity right now";
// edge detection happens in SetOnline.
func (m *Monitor) Poll(ctx context.Context, interval time.Duration, probe func(context.Context) bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetOnline(probe(ctx))
		}
	}
}
