package item

import (
	"path/filepath"
	"strings"
	"unicode"
)

// displayLimit is the number of runes of text content shown for an item.
const displayLimit = 100

// DisplayString returns the short string used to show the item. An empty
// display string marks a corrupt item.
func (it *Item) DisplayString() string {
	switch c := it.Content.(type) {
	case Text:
		if it.Type == TypeColor {
			return string(c)
		}
		return prefixRunes(string(c), displayLimit)
	case Image:
		return "Image"
	case FilePath:
		if c == "" {
			return ""
		}
		return filepath.Base(string(c))
	default:
		return ""
	}
}

// Preview returns a single-line rendition of the display string, at most
// maxLen runes, suitable for listings.
func (it *Item) Preview(maxLen int) string {
	return TruncateTitle(SanitizeTitle(it.DisplayString()), maxLen)
}

// TruncateTitle ensures title is at most maxLen runes.
// If truncation is needed, appends "..." to indicate truncation.
func TruncateTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	return string(runes[:maxLen-3]) + "..."
}

// SanitizeTitle removes control characters and collapses whitespace.
func SanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)

	return strings.Join(strings.Fields(title), " ")
}

func prefixRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
