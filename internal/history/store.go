// Package history keeps the bounded, most-recent-first clipboard history.
package history

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yiblet/clippocket/internal/config"
	"github.com/yiblet/clippocket/internal/debounce"
	"github.com/yiblet/clippocket/internal/item"
)

const (
	// DefaultSaveDelay is the quiet period after the last insert before the
	// history is written.
	DefaultSaveDelay = 500 * time.Millisecond

	// ForcedSaveInterval forces a save every n novel inserts, so a steady
	// stream of copies never starves the debounced save.
	ForcedSaveInterval = 30
)

// ErrNotFound is returned when no item has the requested ID or index.
var ErrNotFound = errors.New("history item not found")

// Persister writes the history. persist.Gateway implements it.
type Persister interface {
	SaveHistory(items []*item.Item) error
	RemoveHistory() error
}

// Store is the in-memory history. Mutations are guarded by a mutex so that
// background saves can take a consistent snapshot; saves never hold the
// store lock while writing.
type Store struct {
	settings  config.Settings
	persister Persister
	logger    *slog.Logger

	mu      sync.RWMutex
	items   []*item.Item
	inserts int
	dirty   bool

	saveDelay time.Duration
	debouncer *debounce.Debouncer
	saveMu    sync.Mutex
	saves     sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithSaveDelay overrides the debounce quiet period.
func WithSaveDelay(d time.Duration) Option {
	return func(s *Store) { s.saveDelay = d }
}

// WithLogger sets the logger for save failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates an empty store. Settings are read at call time.
func New(settings config.Settings, persister Persister, opts ...Option) *Store {
	s := &Store{
		settings:  settings,
		persister: persister,
		logger:    slog.Default(),
		saveDelay: DefaultSaveDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debouncer = debounce.New(s.saveDelay, s.save)
	return s
}

// Restore seeds the store with previously persisted items without saving.
func (s *Store) Restore(items []*item.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = item.Limit(item.Clone(items), config.HistoryCap(s.settings))
	s.dirty = false
}

// Insert prepends it unless an equal item is already stored, in which case
// nothing changes. It reports whether the item was stored.
func (s *Store) Insert(it *item.Item) bool {
	if it == nil {
		return false
	}

	s.mu.Lock()
	for _, existing := range s.items {
		if item.Equal(existing, it) {
			s.mu.Unlock()
			return false
		}
	}

	s.items = append([]*item.Item{it}, s.items...)
	s.items = item.Limit(s.items, config.HistoryCap(s.settings))
	s.dirty = true
	s.inserts++
	forced := s.inserts%ForcedSaveInterval == 0
	s.mu.Unlock()

	if forced {
		s.saveAsync()
	}
	s.scheduleSave()
	return true
}

// Promote moves the item with id to the front. Its timestamp is unchanged.
func (s *Store) Promote(id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if idx > 0 {
		moved := s.items[idx]
		copy(s.items[1:idx+1], s.items[:idx])
		s.items[0] = moved
		s.dirty = true
	}
	s.mu.Unlock()

	s.scheduleSave()
	return nil
}

// Delete removes the item with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	s.dirty = true
	s.mu.Unlock()

	s.scheduleSave()
	return nil
}

// ReplaceAll swaps in items, applying the same filtering as a load: empty and
// oversized entries are dropped and the cap is applied. It returns the number
// of items kept and saves immediately.
func (s *Store) ReplaceAll(items []*item.Item) int {
	kept := make([]*item.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			kept = append(kept, it)
		}
	}
	kept, _ = item.WithoutOversizedImages(kept, item.DefaultMaxImageBytes)
	kept, _ = item.WithoutEmpty(kept)

	s.mu.Lock()
	s.items = item.Limit(kept, config.HistoryCap(s.settings))
	s.dirty = true
	n := len(s.items)
	s.mu.Unlock()

	s.debouncer.Cancel()
	s.save()
	return n
}

// Clear empties the store and removes the backing file. Nothing is written
// afterwards until the history changes again.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.items = nil
	s.dirty = false
	s.mu.Unlock()

	s.debouncer.Cancel()
	s.saves.Wait()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.persister.RemoveHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Items returns a snapshot of the history, newest first.
func (s *Store) Items() []*item.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return item.Clone(s.items)
}

// Count returns the number of stored items.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns an item by index (0 = newest).
func (s *Store) Get(index int) (*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("%w: index %d out of range (0-%d)", ErrNotFound, index, len(s.items)-1)
	}
	return s.items[index], nil
}

// Find returns the item with id.
func (s *Store) Find(id string) (*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[idx], nil
}

// Search returns the items whose display string contains query, ignoring
// case. An empty query returns everything.
func (s *Store) Search(query string) []*item.Item {
	items := s.Items()
	if query == "" {
		return items
	}

	query = strings.ToLower(query)
	var matches []*item.Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.DisplayString()), query) {
			matches = append(matches, it)
		}
	}
	return matches
}

// Flush waits for in-flight saves and then runs the pending debounced save
// synchronously. It writes only when the history changed since the last
// successful save. It is the shutdown path.
func (s *Store) Flush() {
	s.saves.Wait()
	if !s.debouncer.Flush() {
		s.save()
	}
}

// Close flushes and stops scheduling further saves.
func (s *Store) Close() {
	s.Flush()
	s.debouncer.Stop()
}

func (s *Store) indexOf(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) scheduleSave() {
	if !s.settings.RememberHistory() {
		return
	}
	s.debouncer.Trigger()
}

func (s *Store) saveAsync() {
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		s.save()
	}()
}

// save writes a snapshot taken under saveMu so that concurrent saves land in
// the order their snapshots were taken. An unchanged history is not written.
func (s *Store) save() {
	if !s.settings.RememberHistory() {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	snapshot := item.Clone(s.items)
	s.dirty = false
	s.mu.Unlock()

	if err := s.persister.SaveHistory(snapshot); err != nil {
		s.logger.Error("failed to save history", "count", len(snapshot), "err", err)
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
}
