package errlog

import (
	"sync"
	"time"
)

// Entry is one recorded failure.
type Entry struct {
	Message string
	At      time.Time
}

// Memory keeps entries in memory. Used by tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory returns an empty in-memory log.
func NewMemory() *Memory { return &Memory{} }

// Append records the entry.
func (m *Memory) Append(message string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Message: message, At: at})
	return nil
}

// Entries returns a snapshot of the recorded entries.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Messages returns the recorded messages in append order.
func (m *Memory) Messages() []string {
	entries := m.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
