// Package persist loads and saves the history file and the pinned list.
//
// Every failure on the load path degrades to empty or partial data: a corrupt
// payload is logged and removed so it is not retried, and an oversized file is
// skipped. Save errors are returned so callers can log them and retry on the
// next cycle.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/yiblet/clippocket/internal/appdir"
	"github.com/yiblet/clippocket/internal/config"
	"github.com/yiblet/clippocket/internal/item"
	"github.com/yiblet/clippocket/internal/store"
)

// Gateway reads and writes clipboard state. History lives in a JSON file in
// the data directory; pinned items live in the defaults store.
type Gateway struct {
	dir      *appdir.Dir
	defaults store.DefaultsStore
	settings config.Settings

	maxFileBytes  int64
	maxImageBytes int
	logger        *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithMaxFileBytes overrides the largest history file that will be read.
func WithMaxFileBytes(n int64) Option {
	return func(g *Gateway) { g.maxFileBytes = n }
}

// WithMaxImageBytes overrides the largest image payload that is kept.
func WithMaxImageBytes(n int) Option {
	return func(g *Gateway) { g.maxImageBytes = n }
}

// New creates a Gateway over dir and defaults. Settings are read at call time.
func New(dir *appdir.Dir, defaults store.DefaultsStore, settings config.Settings, opts ...Option) *Gateway {
	g := &Gateway{
		dir:           dir,
		defaults:      defaults,
		settings:      settings,
		maxFileBytes:  config.MaxHistoryFileBytes,
		maxImageBytes: item.DefaultMaxImageBytes,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load returns the persisted history and pinned items.
func (g *Gateway) Load() ([]*item.Item, []*item.Pinned) {
	return g.LoadHistory(), g.LoadPinned()
}

// Save writes both history and pinned items. Both writes are attempted even
// if the first fails.
func (g *Gateway) Save(history []*item.Item, pinned []*item.Pinned) error {
	return errors.Join(g.SaveHistory(history), g.SavePinned(pinned))
}

// LoadHistory reads the history file, migrating older layouts as it goes.
func (g *Gateway) LoadHistory() []*item.Item {
	if !g.settings.RememberHistory() {
		g.logger.Debug("remember history is disabled, skipping load")
		return nil
	}

	if moved, err := g.dir.MigrateLegacyName(appdir.LegacyHistoryFile, appdir.HistoryFile); err != nil {
		g.logger.Warn("failed to migrate legacy history filename", "err", err)
	} else if moved {
		g.logger.Info("migrated legacy history filename", "path", g.dir.Path(appdir.HistoryFile))
	}

	info, err := g.dir.Stat(appdir.HistoryFile)
	if errors.Is(err, fs.ErrNotExist) {
		if items, ok := g.migrateLegacyDefaults(); ok {
			return items
		}
		g.logger.Debug("no history file found")
		return nil
	}
	if err != nil {
		g.logger.Warn("failed to stat history file", "err", err)
		return nil
	}

	if info.Size() > g.maxFileBytes {
		g.logger.Warn("history file exceeds size ceiling, skipping load",
			"bytes", info.Size(), "limit", g.maxFileBytes)
		return nil
	}

	data, err := g.dir.ReadFile(appdir.HistoryFile)
	if err != nil {
		g.logger.Warn("failed to read history file", "err", err)
		return nil
	}

	var decoded []*item.Item
	if err := json.Unmarshal(data, &decoded); err != nil {
		g.logger.Error("history file is corrupt, removing it", "err", err)
		if err := g.dir.Remove(appdir.HistoryFile); err != nil {
			g.logger.Warn("failed to remove corrupt history file", "err", err)
		}
		return nil
	}

	items, removed := g.sanitize(decoded)
	items, truncated := g.capHistory(items)

	rewrite := removed > 0 || truncated > 0
	if item.ContainsLegacyIcons(data) {
		g.logger.Info("rewriting history without embedded icons")
		rewrite = true
	}

	if rewrite {
		g.logger.Info("persisting cleaned history", "count", len(items), "removed", removed, "truncated", truncated)
		if err := g.SaveHistory(items); err != nil {
			g.logger.Warn("failed to persist cleaned history", "err", err)
		}
	}

	g.logger.Debug("loaded history", "count", len(items))
	return items
}

// migrateLegacyDefaults moves a history array kept in the defaults store into
// the history file. It reports whether a legacy array was found and decoded.
func (g *Gateway) migrateLegacyDefaults() ([]*item.Item, bool) {
	data, err := g.defaults.Get(store.KeyLegacyHistory)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			g.logger.Warn("failed to read legacy history", "err", err)
		}
		return nil, false
	}

	var decoded []*item.Item
	if err := json.Unmarshal(data, &decoded); err != nil {
		g.logger.Error("failed to migrate legacy history", "err", err)
		return nil, false
	}

	items, _ := g.sanitize(decoded)
	items, _ = g.capHistory(items)

	if err := g.SaveHistory(items); err != nil {
		g.logger.Warn("failed to persist migrated history", "err", err)
	}
	g.logger.Info("migrated legacy history", "count", len(items))
	return items, true
}

// SaveHistory writes items as a pretty-printed JSON array, replacing the
// previous file atomically. Oversized images are never written.
func (g *Gateway) SaveHistory(items []*item.Item) error {
	kept, skipped := item.WithoutOversizedImages(compact(items), g.maxImageBytes)
	if skipped > 0 {
		g.logger.Warn("skipping large images from history save", "count", skipped)
	}
	kept = item.Limit(kept, config.HardMaxHistoryItems)

	data, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := g.dir.WriteFile(appdir.HistoryFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	g.logger.Debug("saved history", "count", len(kept), "bytes", len(data))
	return nil
}

// RemoveHistory deletes the history file and any legacy history left in the
// defaults store.
func (g *Gateway) RemoveHistory() error {
	var errs []error
	if err := g.dir.Remove(appdir.HistoryFile); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove history file: %w", err))
	}
	if err := g.defaults.Delete(store.KeyLegacyHistory); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove legacy history: %w", err))
	}
	return errors.Join(errs...)
}

// LoadPinned reads the pinned list from the defaults store.
func (g *Gateway) LoadPinned() []*item.Pinned {
	data, err := g.defaults.Get(store.KeyPinnedItems)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			g.logger.Warn("failed to read pinned items", "err", err)
		}
		return nil
	}

	var decoded []*item.Pinned
	if err := json.Unmarshal(data, &decoded); err != nil {
		g.logger.Error("pinned items are corrupt, removing them", "err", err)
		if err := g.defaults.Delete(store.KeyPinnedItems); err != nil {
			g.logger.Warn("failed to remove corrupt pinned items", "err", err)
		}
		return nil
	}

	pinned := make([]*item.Pinned, 0, len(decoded))
	for _, p := range decoded {
		if p == nil || p.Original == nil || p.Original.DisplayString() == "" {
			continue
		}
		pinned = append(pinned, p)
	}
	removed := len(decoded) - len(pinned)
	pinned = item.Limit(pinned, config.PinnedCap(g.settings))

	if removed > 0 || item.ContainsLegacyIcons(data) {
		g.logger.Info("persisting cleaned pinned items", "count", len(pinned), "removed", removed)
		if err := g.SavePinned(pinned); err != nil {
			g.logger.Warn("failed to persist cleaned pinned items", "err", err)
		}
	}

	g.logger.Debug("loaded pinned items", "count", len(pinned))
	return pinned
}

// SavePinned writes the full pinned list to the defaults store.
func (g *Gateway) SavePinned(pinned []*item.Pinned) error {
	if pinned == nil {
		pinned = []*item.Pinned{}
	}

	data, err := json.Marshal(pinned)
	if err != nil {
		return fmt.Errorf("failed to encode pinned items: %w", err)
	}

	if err := g.defaults.Set(store.KeyPinnedItems, data); err != nil {
		return fmt.Errorf("failed to store pinned items: %w", err)
	}

	g.logger.Debug("saved pinned items", "count", len(pinned))
	return nil
}

// sanitize drops null entries, oversized images and items with nothing to
// display. It returns the kept items and how many were removed.
func (g *Gateway) sanitize(decoded []*item.Item) ([]*item.Item, int) {
	items := compact(decoded)
	nulls := len(decoded) - len(items)

	items, oversized := item.WithoutOversizedImages(items, g.maxImageBytes)
	if oversized > 0 {
		g.logger.Warn("dropped oversized images from history", "count", oversized)
	}

	items, empty := item.WithoutEmpty(items)
	if empty > 0 {
		g.logger.Warn("dropped history items with empty content", "count", empty)
	}

	return items, nulls + oversized + empty
}

func (g *Gateway) capHistory(items []*item.Item) ([]*item.Item, int) {
	limited := item.Limit(items, config.HistoryCap(g.settings))
	return limited, len(items) - len(limited)
}

func compact(items []*item.Item) []*item.Item {
	out := make([]*item.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}
