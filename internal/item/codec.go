package item

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// appleEpoch is the reference date older history files counted seconds from.
var appleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// LegacyIconField is the obsolete key under which old files embedded the
// source application's icon. It is accepted on decode and never written.
const LegacyIconField = "sourceIcon"

type encodedItem struct {
	ID                     string    `json:"id"`
	Content                any       `json:"content"`
	Type                   Type      `json:"type"`
	Timestamp              time.Time `json:"timestamp"`
	SourceBundleIdentifier string    `json:"sourceBundleIdentifier,omitempty"`
}

type decodedItem struct {
	ID                     *string         `json:"id"`
	Content                json.RawMessage `json:"content"`
	Type                   *string         `json:"type"`
	Timestamp              json.RawMessage `json:"timestamp"`
	SourceBundleIdentifier *string         `json:"sourceBundleIdentifier"`
	SourceApplication      *string         `json:"sourceApplication"`
}

// MarshalJSON encodes the item as {id, content, type, timestamp,
// sourceBundleIdentifier?}. Image content is base64.
func (it *Item) MarshalJSON() ([]byte, error) {
	enc := encodedItem{
		ID:                     it.ID,
		Type:                   it.Type,
		Timestamp:              it.Timestamp,
		SourceBundleIdentifier: it.SourceAppID,
	}

	switch c := it.Content.(type) {
	case Text:
		enc.Content = string(c)
	case Image:
		enc.Content = []byte(c)
	case FilePath:
		enc.Content = string(c)
	default:
		return nil, fmt.Errorf("item %s has no content", it.ID)
	}

	return json.Marshal(enc)
}

// UnmarshalJSON decodes both the current schema and the older one
// (symbol type names, reference-date timestamps, sourceApplication key,
// embedded icons).
func (it *Item) UnmarshalJSON(data []byte) error {
	var dec decodedItem
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}

	if dec.ID == nil || *dec.ID == "" {
		return errors.New("item is missing id")
	}
	if dec.Type == nil {
		return fmt.Errorf("item %s is missing type", *dec.ID)
	}
	typ, err := ParseType(*dec.Type)
	if err != nil {
		return err
	}

	ts, err := decodeTime(dec.Timestamp)
	if err != nil {
		return fmt.Errorf("item %s: %w", *dec.ID, err)
	}

	content, err := decodeContent(typ, dec.Content)
	if err != nil {
		return fmt.Errorf("item %s: %w", *dec.ID, err)
	}

	source := ""
	switch {
	case dec.SourceBundleIdentifier != nil:
		source = *dec.SourceBundleIdentifier
	case dec.SourceApplication != nil:
		source = *dec.SourceApplication
	}

	*it = Item{
		ID:          *dec.ID,
		Content:     content,
		Type:        typ,
		Timestamp:   ts,
		SourceAppID: source,
	}
	return nil
}

func decodeContent(typ Type, raw json.RawMessage) (Content, error) {
	missing := len(raw) == 0 || bytes.Equal(raw, []byte("null"))

	switch typ {
	case TypeImage:
		if missing {
			return Image{}, nil
		}
		var data []byte
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to decode image content: %w", err)
		}
		return Image(data), nil

	case TypeFile:
		if missing {
			return nil, errors.New("file item is missing content")
		}
		path, err := decodeFilePath(raw)
		if err != nil {
			return nil, err
		}
		return FilePath(path), nil

	default:
		if missing {
			return nil, fmt.Errorf("%s item is missing content", typ)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode text content: %w", err)
		}
		return Text(s), nil
	}
}

// decodeFilePath accepts a plain path, a file:// URL string, or the keyed
// {"relative": "file:///..."} form older files used for URLs.
func decodeFilePath(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var keyed struct {
			Relative string `json:"relative"`
		}
		if err := json.Unmarshal(raw, &keyed); err != nil || keyed.Relative == "" {
			return "", errors.New("failed to decode file content")
		}
		s = keyed.Relative
	}

	u, err := url.Parse(s)
	if err == nil && u.Scheme == "file" {
		return u.Path, nil
	}
	return s, nil
}

func decodeTime(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, errors.New("missing timestamp")
	}

	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err == nil {
		return appleEpoch.Add(time.Duration(seconds * float64(time.Second))), nil
	}

	var ts time.Time
	if err := json.Unmarshal(raw, &ts); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	return ts, nil
}

type encodedPinned struct {
	ID           string    `json:"id"`
	OriginalItem *Item     `json:"originalItem"`
	PinnedDate   time.Time `json:"pinnedDate"`
	CustomTitle  *string   `json:"customTitle,omitempty"`
}

type decodedPinned struct {
	ID           *string         `json:"id"`
	OriginalItem *Item           `json:"originalItem"`
	PinnedDate   json.RawMessage `json:"pinnedDate"`
	CustomTitle  *string         `json:"customTitle"`
}

// MarshalJSON encodes the pinned entry as {id, originalItem, pinnedDate, customTitle?}.
func (p *Pinned) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodedPinned{
		ID:           p.ID,
		OriginalItem: p.Original,
		PinnedDate:   p.PinnedDate,
		CustomTitle:  p.CustomTitle,
	})
}

// UnmarshalJSON decodes a pinned entry, rejecting entries without an id or
// wrapped item.
func (p *Pinned) UnmarshalJSON(data []byte) error {
	var dec decodedPinned
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if dec.ID == nil || *dec.ID == "" {
		return errors.New("pinned item is missing id")
	}
	if dec.OriginalItem == nil {
		return fmt.Errorf("pinned item %s is missing originalItem", *dec.ID)
	}
	date, err := decodeTime(dec.PinnedDate)
	if err != nil {
		return fmt.Errorf("pinned item %s: %w", *dec.ID, err)
	}

	*p = Pinned{
		ID:          *dec.ID,
		Original:    dec.OriginalItem,
		PinnedDate:  date,
		CustomTitle: dec.CustomTitle,
	}
	return nil
}

// ContainsLegacyIcons reports whether an encoded payload still carries the
// obsolete embedded-icon field.
func ContainsLegacyIcons(data []byte) bool {
	return bytes.Contains(data, []byte(`"`+LegacyIconField+`"`))
}
