// Package classify decides the semantic type of raw clipboard content.
//
// Classification is ordered: the first matching rule wins, because the
// patterns overlap (a URL can contain code keywords, a phone number is also
// "text").
package classify

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"

	"github.com/yiblet/clippocket/internal/item"
)

// Kind is the pasteboard representation the caller read the payload from.
type Kind int

const (
	// KindText is a plain string representation.
	KindText Kind = iota
	// KindImage is image binary data.
	KindImage
	// KindFile is a filesystem URL.
	KindFile
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// codeThreshold is the number of code indicators required to classify as code.
const codeThreshold = 2

var (
	emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	hexColor     = regexp.MustCompile(`^#([0-9a-fA-F]{3}){1,2}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()./-]+$`)
	notPhone     = regexp.MustCompile(`^(\d{4}[-/.]\d{1,2}[-/.]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d+\.\d+)$`)
	leadingLoop  = regexp.MustCompile(`^\s*(if|for|while)\s*\(`)
	linkPattern  = xurls.Relaxed()

	colorPrefixes = []string{"rgb(", "rgba(", "hsl(", "hsla("}
)

// Classify returns the type of a string payload. It returns false when the
// trimmed payload is empty, in which case no item should be built.
func Classify(raw string) (item.Type, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	if emailPattern.MatchString(trimmed) {
		return item.TypeEmail, true
	}

	if link, ok := wholeLink(trimmed); ok {
		if isMailto(link) {
			return item.TypeEmail, true
		}
		return item.TypeURL, true
	}

	switch {
	case IsPhone(trimmed):
		return item.TypePhone, true
	case IsJSON(trimmed):
		return item.TypeJSON, true
	case IsColor(trimmed):
		return item.TypeColor, true
	case CodeScore(trimmed) >= codeThreshold:
		return item.TypeCode, true
	}

	return item.TypeText, true
}

// Binary returns the type for a non-text pasteboard representation.
func Binary(kind Kind) (item.Type, bool) {
	switch kind {
	case KindFile:
		return item.TypeFile, true
	case KindImage:
		return item.TypeImage, true
	default:
		return "", false
	}
}

// wholeLink returns the link when the detector's first match spans the
// entire string.
func wholeLink(s string) (string, bool) {
	loc := linkPattern.FindStringIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return "", false
	}
	return s, true
}

// isMailto reports whether a detected link addresses a mailbox rather than
// a resource: a mailto: URL or a bare address picked up by the detector.
func isMailto(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(link), "mailto:")
	}
	if u.Scheme == "" {
		return strings.Contains(link, "@") && !strings.Contains(link, "/")
	}
	return strings.EqualFold(u.Scheme, "mailto")
}

// IsPhone reports whether the whole string looks like a phone number:
// digits with common separators, between 7 and 15 digits. Dates and
// decimal numbers are excluded.
func IsPhone(s string) bool {
	if !phonePattern.MatchString(s) || notPhone.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// IsJSON reports whether s is an object or array literal that parses as JSON.
func IsJSON(s string) bool {
	object := strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
	array := strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
	if !object && !array {
		return false
	}
	return json.Valid([]byte(s))
}

// IsColor reports whether s is a hex color or a CSS rgb/hsl function.
func IsColor(s string) bool {
	if hexColor.MatchString(s) {
		return true
	}
	for _, prefix := range colorPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// CodeScore counts how many code indicators hold for s.
func CodeScore(s string) int {
	lines := len(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' }))

	indicators := []bool{
		strings.Contains(s, "func ") || strings.Contains(s, "function "),
		strings.Contains(s, "class ") || strings.Contains(s, "struct "),
		strings.Contains(s, "import ") || strings.Contains(s, "package "),
		strings.Contains(s, "const ") || strings.Contains(s, "let ") || strings.Contains(s, "var "),
		strings.Contains(s, "def ") || strings.Contains(s, "=>"),
		// Three non-empty lines already count, so a one-statement
		// function body with its braces qualifies.
		lines >= 3 && (strings.Contains(s, "{") || strings.Contains(s, ":")),
		strings.Contains(s, "public ") || strings.Contains(s, "private "),
		leadingLoop.MatchString(s),
	}

	score := 0
	for _, hit := range indicators {
		if hit {
			score++
		}
	}
	return score
}
