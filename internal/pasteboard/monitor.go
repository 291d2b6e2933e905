package pasteboard

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/item"
)

// Handler receives new clipboard content. capture.Capturer implements it.
type Handler interface {
	OnNewContent(raw []byte, kind classify.Kind, sourceAppID string) (*item.Item, bool)
}

// History is the part of the history store the monitor needs to copy an item
// back. history.Store implements it.
type History interface {
	Find(id string) (*item.Item, error)
	Promote(id string) error
}

// Monitor pumps clipboard changes into a Handler and writes stored items back
// to the clipboard. A change that merely echoes the monitor's own write is
// ignored.
type Monitor struct {
	board   Board
	handler Handler
	history History
	logger  *slog.Logger

	mu   sync.Mutex
	echo []byte
}

// NewMonitor creates a Monitor.
func NewMonitor(board Board, handler Handler, history History) *Monitor {
	return &Monitor{
		board:   board,
		handler: handler,
		history: history,
		logger:  slog.Default(),
	}
}

// Run watches the board until ctx is done or the board stops.
func (m *Monitor) Run(ctx context.Context) error {
	clips := m.board.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case clip, ok := <-clips:
			if !ok {
				return nil
			}
			m.handle(clip)
		}
	}
}

func (m *Monitor) handle(clip Clip) {
	if m.consumeEcho(clip.Data) {
		m.logger.Debug("ignoring echo of our own clipboard write")
		return
	}
	if it, ok := m.handler.OnNewContent(clip.Data, clip.Kind, clip.SourceAppID); ok {
		m.logger.Info("captured", "type", it.Type, "preview", it.Preview(40))
	}
}

// Copy puts the history item with id back on the clipboard and moves it to
// the front of the history.
func (m *Monitor) Copy(id string) (*item.Item, error) {
	it, err := m.history.Find(id)
	if err != nil {
		return nil, err
	}
	if err := m.history.Promote(id); err != nil {
		return nil, err
	}
	if err := m.Write(it); err != nil {
		return nil, err
	}
	return it, nil
}

// Write puts it on the clipboard without capturing it again.
func (m *Monitor) Write(it *item.Item) error {
	clip, err := ClipFor(it)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.echo = clip.Data
	m.mu.Unlock()

	if err := m.board.Write(clip); err != nil {
		m.mu.Lock()
		m.echo = nil
		m.mu.Unlock()
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// consumeEcho reports whether data is the pending echo, clearing it.
func (m *Monitor) consumeEcho(data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.echo == nil || !bytes.Equal(m.echo, data) {
		return false
	}
	m.echo = nil
	return true
}
