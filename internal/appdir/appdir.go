// Package appdir is the application-private directory holding the history
// file and the defaults database.
package appdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
)

const (
	ConfigDir         = ".config/clippocket"
	HistoryFile       = "clipboardHistory.json"
	LegacyHistoryFile = "ClipboardHistory.json" // Written by older versions
	DefaultsFile      = "defaults.db"
)

// Dir is a filesystem rooted at the clippocket data directory
type Dir struct {
	root string
}

// New creates a Dir rooted at ~/.config/clippocket/
func New() (*Dir, error) {
	return NewWithLocation("")
}

// NewWithLocation creates a Dir with a custom location.
// If location is empty, uses the default ~/.config/clippocket/
// If location is absolute, uses it directly
// If location is relative, treats it as a subdirectory of ~/.config/clippocket/
func NewWithLocation(location string) (*Dir, error) {
	var root string
	if filepath.IsAbs(location) {
		root = location
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(homeDir, ConfigDir, location)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Dir{root: root}, nil
}

// NewWithRoot creates a Dir with a custom root (for testing)
func NewWithRoot(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the root directory path
func (d *Dir) Root() string {
	return d.root
}

// Path returns the absolute path of name inside the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// ReadFile reads a file relative to the data directory
func (d *Dir) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	return os.ReadFile(d.Path(name))
}

// Stat returns file info for a file relative to the data directory
func (d *Dir) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	return os.Stat(d.Path(name))
}

// Exists reports whether name is present with exactly that spelling. The
// comparison is case-sensitive even on case-insensitive filesystems.
func (d *Dir) Exists(name string) bool {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Name() == name {
			return true
		}
	}
	return false
}

// WriteFile atomically replaces a file relative to the data directory. The
// data lands in a temporary file first and is renamed over the target, so a
// crash mid-write leaves the previous contents intact.
func (d *Dir) WriteFile(name string, data []byte, perm os.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}

	fullPath := d.Path(name)

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return atomicwriter.WriteFile(fullPath, data, perm)
}

// Remove removes a file relative to the data directory. Removing a missing
// file is not an error.
func (d *Dir) Remove(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
	}

	if err := os.Remove(d.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MigrateLegacyName renames legacy to current when legacy exists and current
// does not. It reports whether a rename happened. The rename goes through an
// intermediate name so that names differing only in case are handled on
// case-insensitive filesystems.
func (d *Dir) MigrateLegacyName(legacy, current string) (bool, error) {
	if !fs.ValidPath(legacy) || !fs.ValidPath(current) {
		return false, &fs.PathError{Op: "migrate", Path: legacy, Err: fs.ErrInvalid}
	}

	if !d.Exists(legacy) || d.Exists(current) {
		return false, nil
	}

	intermediate := d.Path(current + ".migrating")
	if err := os.Rename(d.Path(legacy), intermediate); err != nil {
		return false, fmt.Errorf("failed to move legacy file %s: %w", legacy, err)
	}
	if err := os.Rename(intermediate, d.Path(current)); err != nil {
		return false, fmt.Errorf("failed to rename legacy file %s to %s: %w", legacy, current, err)
	}

	return true, nil
}
