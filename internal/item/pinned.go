package item

import (
	"time"

	"github.com/google/uuid"
)

// Pinned wraps a copy of a clipboard item that the user pinned. It has its
// own identity; pinning never removes the item from history and deleting the
// history entry never unpins it.
type Pinned struct {
	ID          string
	Original    *Item
	PinnedDate  time.Time
	CustomTitle *string
}

// NewPinned wraps it with a fresh ID. An empty custom title is treated as none.
func NewPinned(it *Item, customTitle *string) *Pinned {
	return &Pinned{
		ID:          uuid.NewString(),
		Original:    it,
		PinnedDate:  time.Now(),
		CustomTitle: normalizeTitle(customTitle),
	}
}

// DisplayTitle returns the custom title if set, otherwise the wrapped item's
// display string.
func (p *Pinned) DisplayTitle() string {
	if p.CustomTitle != nil {
		return *p.CustomTitle
	}
	return p.Original.DisplayString()
}

// DisplayString returns the wrapped item's display string.
func (p *Pinned) DisplayString() string {
	return p.Original.DisplayString()
}

// WithTitle returns a copy of p carrying the given custom title.
func (p *Pinned) WithTitle(title *string) *Pinned {
	cp := *p
	cp.CustomTitle = normalizeTitle(title)
	return &cp
}

func normalizeTitle(title *string) *string {
	if title == nil || *title == "" {
		return nil
	}
	t := *title
	return &t
}
