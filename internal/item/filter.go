package item

// DefaultMaxImageBytes is the largest image payload kept in history or
// written to disk.
const DefaultMaxImageBytes = 1 << 20

// Oversized reports whether it is an image whose payload exceeds limit bytes.
func (it *Item) Oversized(limit int) bool {
	data, ok := it.ImageData()
	return ok && len(data) > limit
}

// WithoutOversizedImages drops image items larger than limit bytes and
// returns the kept items along with the number dropped.
func WithoutOversizedImages(items []*Item, limit int) ([]*Item, int) {
	kept := make([]*Item, 0, len(items))
	for _, it := range items {
		if it.Oversized(limit) {
			continue
		}
		kept = append(kept, it)
	}
	return kept, len(items) - len(kept)
}

// WithoutEmpty drops items whose display string is empty.
func WithoutEmpty(items []*Item) ([]*Item, int) {
	kept := make([]*Item, 0, len(items))
	for _, it := range items {
		if it.DisplayString() == "" {
			continue
		}
		kept = append(kept, it)
	}
	return kept, len(items) - len(kept)
}

// Limit returns at most the first n items. A non-positive n keeps nothing.
func Limit[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Clone returns a shallow copy of the slice so callers can work on a
// point-in-time snapshot.
func Clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
