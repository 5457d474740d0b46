package store

import (
	"context"
	"sync"

	"tableflip.dev/focussync/pkg/session"
)

// Memory is a Persistence that keeps sessions in process memory. It backs
// tests and --ephemeral runs.
type Memory struct {
	mu       sync.Mutex
	sessions []session.Record
	watchers []chan Event
}

// NewMemory returns an empty in-memory store seeded with history.
func NewMemory(history ...session.Record) *Memory {
	m := &Memory{}
	for _, rec := range history {
		m.sessions = Append(m.sessions, rec)
	}
	return m
}

func (m *Memory) Record(_ context.Context, rec session.Record) ([]session.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = Append(m.sessions, rec)
	m.notifyLocked()
	return append([]session.Record{}, m.sessions...), nil
}

// notifyLocked sends a change event to every watcher without blocking.
func (m *Memory) notifyLocked() {
	for _, w := range m.watchers {
		select {
		case w <- Event{Type: EventSessionsChanged}:
		default:
		}
	}
}

func (m *Memory) LoadAll(_ context.Context) []session.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]session.Record{}, m.sessions...)
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	m.notifyLocked()
	return nil
}

// Watch delivers an event after every Record or Clear until ctx is done.
func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 8)
	m.mu.Lock()
	m.watchers = append(m.watchers, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, w := range m.watchers {
			if w == ch {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
