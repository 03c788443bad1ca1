// Package location provides implementations of the ports.Location
// interface. Memory simulates a browser address bar: replace-style writes
// stay silent while navigations notify watchers, the way hash changes do.
package location

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// watchBuffer bounds how many unconsumed navigations a watcher may lag
// behind before further ones are dropped.
const watchBuffer = 16

// Memory is an in-memory Location for tests and the TUI's simulated
// address line.
type Memory struct {
	mu       sync.Mutex
	fragment string
	writes   int
	watchers map[uint64]chan string
	nextID   uint64
}

// NewMemory creates a location with an empty fragment.
func NewMemory() *Memory {
	return &Memory{
		watchers: make(map[uint64]chan string),
	}
}

// NewMemoryWithFragment creates a location preloaded with a fragment,
// simulating a page load on a step URL.
func NewMemoryWithFragment(fragment string) *Memory {
	m := NewMemory()
	m.fragment = normalize(fragment)
	return m
}

// Fragment returns the current fragment without a leading '#'.
func (m *Memory) Fragment() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fragment
}

// ReplaceFragment rewrites the fragment without notifying watchers.
func (m *Memory) ReplaceFragment(fragment string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fragment = normalize(fragment)
	m.writes++
}

// Navigate sets the fragment and notifies watchers. Navigating to the
// fragment that is already current does not notify, matching how browsers
// suppress the hash-change event for identical hashes. Sends and watcher
// teardown share the location's lock, so a send never hits a closed channel.
func (m *Memory) Navigate(fragment string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := normalize(fragment)
	if next == m.fragment {
		return
	}
	m.fragment = next

	for _, ch := range m.watchers {
		select {
		case ch <- next:
		default:
		}
	}
}

// Watch returns a channel receiving the new fragment after every Navigate.
// The channel is closed when ctx is cancelled.
func (m *Memory) Watch(ctx context.Context) <-chan string {
	ch := make(chan string, watchBuffer)

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.watchers[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
		close(ch)
	}()

	return ch
}

// Writes returns how many replace-style writes occurred (for testing).
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// normalize strips a leading '#' so fragments are stored bare.
func normalize(fragment string) string {
	return strings.TrimPrefix(strings.TrimSpace(fragment), "#")
}

// Ensure Memory implements Location.
var _ ports.Location = (*Memory)(nil)
