// Package backup exports and imports history and pinned items as a single
// versioned JSON document.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yiblet/clippocket/internal/item"
)

// Version is the envelope version written by Export.
const Version = 1

// Bundle is the backup envelope. Fields are declared in alphabetical order
// so the encoded keys are sorted.
type Bundle struct {
	History []*item.Item   `json:"history"`
	Pinned  []*item.Pinned `json:"pinned"`
	Version int            `json:"version"`
}

// Export encodes history and pinned items, capped at maxHistory and
// maxPinned. Oversized images are left out.
func Export(history []*item.Item, pinned []*item.Pinned, maxHistory, maxPinned int) ([]byte, error) {
	bundle := Bundle{
		History: filterHistory(history, maxHistory),
		Pinned:  filterPinned(pinned, maxPinned),
		Version: Version,
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// Import decodes a backup. Both the versioned envelope and a bare array of
// history items (written before versioning) are accepted; the latter yields
// no pinned items. Limits are applied whatever the document contains.
func Import(data []byte, maxHistory, maxPinned int) ([]*item.Item, []*item.Pinned, error) {
	var bundle struct {
		History []*item.Item   `json:"history"`
		Pinned  []*item.Pinned `json:"pinned"`
		Version *int           `json:"version"`
	}
	envelopeErr := json.Unmarshal(data, &bundle)
	if envelopeErr == nil && bundle.Version != nil && bundle.History != nil {
		return filterHistory(bundle.History, maxHistory), filterPinned(bundle.Pinned, maxPinned), nil
	}

	var history []*item.Item
	if err := json.Unmarshal(data, &history); err != nil {
		if envelopeErr == nil {
			envelopeErr = errors.New("missing version or history")
		}
		return nil, nil, fmt.Errorf("failed to decode backup: %w", errors.Join(envelopeErr, err))
	}
	return filterHistory(history, maxHistory), []*item.Pinned{}, nil
}

// filterHistory caps the list first and then drops oversized images, so an
// export never holds more than max items.
func filterHistory(items []*item.Item, max int) []*item.Item {
	limited := item.Limit(compact(items), max)
	kept, _ := item.WithoutOversizedImages(limited, item.DefaultMaxImageBytes)
	return kept
}

func filterPinned(items []*item.Pinned, max int) []*item.Pinned {
	kept := make([]*item.Pinned, 0, len(items))
	for _, p := range items {
		if p != nil && p.Original != nil {
			kept = append(kept, p)
		}
	}
	return item.Limit(kept, max)
}

func compact(items []*item.Item) []*item.Item {
	kept := make([]*item.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			kept = append(kept, it)
		}
	}
	return kept
}
