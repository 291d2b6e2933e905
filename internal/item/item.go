// Package item defines the clipboard history data model: the classified
// item, its tagged-union content, the content-equality relation used for
// deduplication, and the pinned wrapper.
package item

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Type is the semantic classification of a clipboard item.
type Type string

const (
	TypeText  Type = "text"
	TypeCode  Type = "code"
	TypeColor Type = "color"
	TypeURL   Type = "url"
	TypeEmail Type = "email"
	TypePhone Type = "phone"
	TypeJSON  Type = "json"
	TypeImage Type = "image"
	TypeFile  Type = "file"
)

// Types lists every item type in display order.
var Types = []Type{TypeText, TypeCode, TypeColor, TypeURL, TypeEmail, TypePhone, TypeJSON, TypeImage, TypeFile}

// legacyTypeNames maps the symbol names older history files used as raw
// type values.
var legacyTypeNames = map[string]Type{
	"doc.text":     TypeText,
	"photo":        TypeImage,
	"paintpalette": TypeColor,
	"chevron.left.forwardslash.chevron.right": TypeCode,
	"link":        TypeURL,
	"envelope":    TypeEmail,
	"phone":       TypePhone,
	"curlybraces": TypeJSON,
	"doc":         TypeFile,
}

// ParseType converts a stored type name to a Type. Both current names and
// the legacy symbol names are accepted.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if t.Valid() {
		return t, nil
	}
	if legacy, ok := legacyTypeNames[s]; ok {
		return legacy, nil
	}
	return "", fmt.Errorf("unknown item type: %q", s)
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeCode, TypeColor, TypeURL, TypeEmail, TypePhone, TypeJSON, TypeImage, TypeFile:
		return true
	}
	return false
}

// IsTextual reports whether items of this type carry Text content.
func (t Type) IsTextual() bool {
	return t.Valid() && t != TypeImage && t != TypeFile
}

// DisplayName returns the human readable label for the type.
func (t Type) DisplayName() string {
	switch t {
	case TypeText:
		return "Text"
	case TypeCode:
		return "Code"
	case TypeColor:
		return "Color"
	case TypeURL:
		return "URL"
	case TypeEmail:
		return "Email"
	case TypePhone:
		return "Phone"
	case TypeJSON:
		return "JSON"
	case TypeImage:
		return "Image"
	case TypeFile:
		return "File"
	default:
		return string(t)
	}
}

// Content is the payload of an item. It is one of Text, Image or FilePath.
type Content interface {
	isContent()
}

// Text is string content for the textual types.
type Text string

// Image is encoded image data.
type Image []byte

// FilePath is an absolute filesystem path.
type FilePath string

func (Text) isContent()     {}
func (Image) isContent()    {}
func (FilePath) isContent() {}

// ErrContentMismatch is returned when the content shape does not match the type.
var ErrContentMismatch = errors.New("content does not match item type")

// Item is a single clipboard history entry. Items are not modified after
// creation; only their position in a store changes.
type Item struct {
	// ID is a unique identifier generated at creation.
	ID string

	// Content holds the payload; its concrete type always matches Type.
	Content Content

	// Type is the semantic classification.
	Type Type

	// Timestamp is the capture time.
	Timestamp time.Time

	// SourceAppID is the bundle identifier of the application that owned the
	// clipboard at capture time, if known.
	SourceAppID string
}

// New creates an item with a fresh ID and the current time.
func New(content Content, typ Type, sourceAppID string) (*Item, error) {
	if err := checkShape(content, typ); err != nil {
		return nil, err
	}
	return &Item{
		ID:          uuid.NewString(),
		Content:     content,
		Type:        typ,
		Timestamp:   time.Now(),
		SourceAppID: sourceAppID,
	}, nil
}

func checkShape(content Content, typ Type) error {
	if !typ.Valid() {
		return fmt.Errorf("unknown item type: %q", typ)
	}

	var ok bool
	switch content.(type) {
	case Text:
		ok = typ.IsTextual()
	case Image:
		ok = typ == TypeImage
	case FilePath:
		ok = typ == TypeFile
	}
	if !ok {
		return fmt.Errorf("%w: %T for %s", ErrContentMismatch, content, typ)
	}
	return nil
}

// Text returns the string content and true for textual items.
func (it *Item) Text() (string, bool) {
	t, ok := it.Content.(Text)
	return string(t), ok
}

// ImageData returns the image bytes and true for image items.
func (it *Item) ImageData() ([]byte, bool) {
	img, ok := it.Content.(Image)
	return []byte(img), ok
}

// Path returns the file path and true for file items.
func (it *Item) Path() (string, bool) {
	p, ok := it.Content.(FilePath)
	return string(p), ok
}

// Equal reports whether two items hold the same content. Identity (ID) and
// timestamps are ignored. This is the relation used for deduplication.
func Equal(a, b *Item) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}

	switch ac := a.Content.(type) {
	case Text:
		bc, ok := b.Content.(Text)
		return ok && ac == bc
	case Image:
		bc, ok := b.Content.(Image)
		return ok && bytes.Equal(ac, bc)
	case FilePath:
		bc, ok := b.Content.(FilePath)
		return ok && absPath(string(ac)) == absPath(string(bc))
	}
	return false
}

// Equal is the method form of Equal.
func (it *Item) Equal(other *Item) bool {
	return Equal(it, other)
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
