// Package mockboard provides an in-memory clipboard for testing.
package mockboard

import (
	"context"
	"sync"

	"github.com/yiblet/clippocket/internal/pasteboard"
)

// MockBoard implements pasteboard.Board in memory. Writes are recorded and,
// like a real clipboard, reported to watchers as changes.
type MockBoard struct {
	mu       sync.Mutex
	current  pasteboard.Clip
	written  []pasteboard.Clip
	changes  chan pasteboard.Clip
	writeErr error
}

// New creates a new MockBoard instance
func New() *MockBoard {
	return &MockBoard{
		changes: make(chan pasteboard.Clip, 64),
	}
}

// Watch implements pasteboard.Board.
func (m *MockBoard) Watch(ctx context.Context) <-chan pasteboard.Clip {
	out := make(chan pasteboard.Clip)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case clip := <-m.changes:
				select {
				case out <- clip:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Write implements pasteboard.Board.
func (m *MockBoard) Write(clip pasteboard.Clip) error {
	m.mu.Lock()
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return err
	}
	m.current = clip
	m.written = append(m.written, clip)
	m.mu.Unlock()

	m.changes <- clip
	return nil
}

// Copy simulates another application copying clip.
func (m *MockBoard) Copy(clip pasteboard.Clip) {
	m.mu.Lock()
	m.current = clip
	m.mu.Unlock()

	m.changes <- clip
}

// Current returns the clip on the board (for testing)
func (m *MockBoard) Current() pasteboard.Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Written returns every clip passed to Write (for testing)
func (m *MockBoard) Written() []pasteboard.Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pasteboard.Clip(nil), m.written...)
}

// FailWrites makes subsequent writes return err; nil restores success.
func (m *MockBoard) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}
