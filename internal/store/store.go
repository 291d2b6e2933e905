// Package store defines the key-value "defaults" store: a small flat store
// of named blobs, used for the pinned list and for the legacy history blob
// that predates the history file.
package store

import (
	"errors"
)

// ErrKeyNotFound is returned when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Well-known keys.
const (
	// KeyPinnedItems holds the JSON array of pinned items.
	KeyPinnedItems = "PinnedClipboardItems"

	// KeyLegacyHistory holds the history array written by versions that
	// kept history in the defaults store instead of a file.
	KeyLegacyHistory = "ClipboardHistory"
)

// DefaultsStore manages key-value persistence.
type DefaultsStore interface {
	// Get retrieves a value by key.
	// Returns an error wrapping ErrKeyNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Set stores a value.
	// If the key already exists, its value is replaced.
	Set(key string, value []byte) error

	// Keys returns all stored keys.
	Keys() ([]string, error)

	// Delete removes a key.
	// Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources (DB connections, file handles, etc.).
	Close() error
}
