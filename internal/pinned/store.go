// Package pinned keeps the user's pinned items, in user-controlled order.
package pinned

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yiblet/clippocket/internal/config"
	"github.com/yiblet/clippocket/internal/item"
)

var (
	// ErrNotFound is returned when no pinned entry matches.
	ErrNotFound = errors.New("pinned item not found")

	// ErrIndexOutOfRange is returned by Reorder for an invalid position.
	ErrIndexOutOfRange = errors.New("pinned index out of range")
)

// Persister writes the pinned list. persist.Gateway implements it.
type Persister interface {
	SavePinned(pinned []*item.Pinned) error
}

// Store holds the pinned list. Every mutation writes the whole list through
// the persister before returning; a failed write leaves the in-memory change
// in place and is reported to the caller.
type Store struct {
	settings  config.Settings
	persister Persister

	mu    sync.RWMutex
	items []*item.Pinned
}

// New creates an empty pinned store.
func New(settings config.Settings, persister Persister) *Store {
	return &Store{
		settings:  settings,
		persister: persister,
	}
}

// Restore seeds the store with previously persisted entries without saving.
func (s *Store) Restore(items []*item.Pinned) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = item.Limit(item.Clone(items), config.PinnedCap(s.settings))
}

// Pin adds it to the front of the list unless equal content is already
// pinned. It reports whether an entry was added.
func (s *Store) Pin(it *item.Item, customTitle *string) (bool, error) {
	if it == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pinnedForLocked(it) != nil {
		return false, nil
	}

	s.items = append([]*item.Pinned{item.NewPinned(it, customTitle)}, s.items...)
	s.items = item.Limit(s.items, config.PinnedCap(s.settings))
	return true, s.saveLocked()
}

// Unpin removes the entry with the given pinned ID.
func (s *Store) Unpin(id string) error {
	return s.removeWhere(func(p *item.Pinned) bool { return p.ID == id }, id)
}

// UnpinByOriginalID removes the entry wrapping the history item originalID.
func (s *Store) UnpinByOriginalID(originalID string) error {
	return s.removeWhere(func(p *item.Pinned) bool { return p.Original.ID == originalID }, originalID)
}

func (s *Store) removeWhere(match func(*item.Pinned) bool, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.items {
		if match(p) {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return s.saveLocked()
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

// SetTitle replaces the custom title of the entry. A nil or empty title
// clears it.
func (s *Store) SetTitle(id string, title *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	items := item.Clone(s.items)
	items[idx] = items[idx].WithTitle(title)
	s.items = items
	return s.saveLocked()
}

// Reorder moves the entry at from so that it ends up at index to.
func (s *Store) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(from, to)
}

// MoveToTop moves the entry with id to the front.
func (s *Store) MoveToTop(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.moveLocked(idx, 0)
}

func (s *Store) moveLocked(from, to int) error {
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d with %d items", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	items := item.Clone(s.items)
	moved := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]*item.Pinned{moved}, items[to:]...)...)
	s.items = items
	return s.saveLocked()
}

// ReplaceAll swaps in items, capped at the pinned limit. Entries without a
// wrapped item are dropped. It returns the number kept.
func (s *Store) ReplaceAll(items []*item.Pinned) (int, error) {
	kept := make([]*item.Pinned, 0, len(items))
	for _, p := range items {
		if p != nil && p.Original != nil {
			kept = append(kept, p)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = item.Limit(kept, config.PinnedCap(s.settings))
	return len(s.items), s.saveLocked()
}

// Clear removes every pinned entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.saveLocked()
}

// ValidateIntegrity reports whether the list is free of duplicate content
// and empty entries. It never modifies the list.
func (s *Store) ValidateIntegrity() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, p := range s.items {
		if p.Original == nil || p.Original.DisplayString() == "" {
			return false
		}
		for _, other := range s.items[:i] {
			if item.Equal(p.Original, other.Original) {
				return false
			}
		}
	}
	return true
}

// IsPinned reports whether content equal to it is pinned.
func (s *Store) IsPinned(it *item.Item) bool {
	return s.PinnedFor(it) != nil
}

// PinnedFor returns the entry wrapping content equal to it, or nil.
func (s *Store) PinnedFor(it *item.Item) *item.Pinned {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pinnedForLocked(it)
}

func (s *Store) pinnedForLocked(it *item.Item) *item.Pinned {
	for _, p := range s.items {
		if item.Equal(p.Original, it) {
			return p
		}
	}
	return nil
}

// Items returns a snapshot of the pinned list in order.
func (s *Store) Items() []*item.Pinned {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return item.Clone(s.items)
}

// Count returns the number of pinned entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the entry at index.
func (s *Store) Get(index int) (*item.Pinned, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return s.items[index], nil
}

// Find returns the entry with the given pinned ID.
func (s *Store) Find(id string) (*item.Pinned, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[idx], nil
}

// Search matches query against both the title and the content, ignoring
// case. An empty query returns everything.
func (s *Store) Search(query string) []*item.Pinned {
	items := s.Items()
	if query == "" {
		return items
	}

	query = strings.ToLower(query)
	var matches []*item.Pinned
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.DisplayString()), query) ||
			strings.Contains(strings.ToLower(p.DisplayTitle()), query) {
			matches = append(matches, p)
		}
	}
	return matches
}

// ByType returns the entries whose wrapped item has type t.
func (s *Store) ByType(t item.Type) []*item.Pinned {
	var matches []*item.Pinned
	for _, p := range s.Items() {
		if p.Original.Type == t {
			matches = append(matches, p)
		}
	}
	return matches
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) saveLocked() error {
	if err := s.persister.SavePinned(item.Clone(s.items)); err != nil {
		return fmt.Errorf("failed to save pinned items: %w", err)
	}
	return nil
}
