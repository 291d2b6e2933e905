// Package capture turns raw pasteboard payloads into history items.
package capture

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // register decoder
	"log/slog"
	"net/url"
	"strings"

	_ "golang.org/x/image/tiff" // register decoder

	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/item"
)

// DefaultJPEGQuality is the quality used when re-encoding captured images.
const DefaultJPEGQuality = 70

// Policy decides whether capturing is allowed. config.Config implements it.
type Policy interface {
	IsIncognito() bool
	IsAppExcluded(bundleID string) bool
}

// Inserter receives accepted items. history.Store implements it.
type Inserter interface {
	Insert(it *item.Item) bool
}

// Capturer filters, normalises and classifies new pasteboard content before
// handing it to the history.
type Capturer struct {
	policy        Policy
	history       Inserter
	maxImageBytes int
	jpegQuality   int
	logger        *slog.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithMaxImageBytes overrides the largest accepted image.
func WithMaxImageBytes(n int) Option {
	return func(c *Capturer) { c.maxImageBytes = n }
}

// WithJPEGQuality overrides the re-encoding quality (1-100).
func WithJPEGQuality(q int) Option {
	return func(c *Capturer) { c.jpegQuality = q }
}

// WithLogger sets the logger for rejected content.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Capturer) { c.logger = logger }
}

// New creates a Capturer.
func New(policy Policy, history Inserter, opts ...Option) *Capturer {
	c := &Capturer{
		policy:        policy,
		history:       history,
		maxImageBytes: item.DefaultMaxImageBytes,
		jpegQuality:   DefaultJPEGQuality,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnNewContent handles one pasteboard change. It returns the item that was
// stored and true, or false when the content was dropped or was already in
// the history. It never fails; rejections are logged.
func (c *Capturer) OnNewContent(raw []byte, kind classify.Kind, sourceAppID string) (*item.Item, bool) {
	if c.policy.IsIncognito() {
		c.logger.Debug("incognito mode, ignoring clipboard change")
		return nil, false
	}
	if c.policy.IsAppExcluded(sourceAppID) {
		c.logger.Debug("ignoring clipboard change from excluded app", "app", sourceAppID)
		return nil, false
	}

	it, ok := c.build(raw, kind, sourceAppID)
	if !ok {
		return nil, false
	}

	if !c.history.Insert(it) {
		c.logger.Debug("duplicate clipboard content", "type", it.Type)
		return nil, false
	}
	c.logger.Debug("captured clipboard item", "type", it.Type, "app", sourceAppID)
	return it, true
}

func (c *Capturer) build(raw []byte, kind classify.Kind, sourceAppID string) (*item.Item, bool) {
	if kind == classify.KindText {
		typ, ok := classify.Classify(string(raw))
		if !ok {
			c.logger.Debug("ignoring empty text")
			return nil, false
		}
		return c.newItem(item.Text(raw), typ, sourceAppID)
	}

	typ, ok := classify.Binary(kind)
	if !ok {
		c.logger.Warn("unrecognized clipboard content kind", "kind", kind)
		return nil, false
	}

	switch typ {
	case item.TypeFile:
		path := filePath(string(raw))
		if path == "" {
			c.logger.Debug("ignoring empty file reference")
			return nil, false
		}
		return c.newItem(item.FilePath(path), typ, sourceAppID)

	default:
		data := c.normalizeImage(raw)
		if len(data) == 0 {
			c.logger.Debug("ignoring empty image")
			return nil, false
		}
		if len(data) > c.maxImageBytes {
			c.logger.Info("ignoring oversized image", "bytes", len(data), "limit", c.maxImageBytes)
			return nil, false
		}
		return c.newItem(item.Image(data), typ, sourceAppID)
	}
}

func (c *Capturer) newItem(content item.Content, typ item.Type, sourceAppID string) (*item.Item, bool) {
	it, err := item.New(content, typ, sourceAppID)
	if err != nil {
		c.logger.Warn("failed to build clipboard item", "type", typ, "err", err)
		return nil, false
	}
	return it, true
}

// normalizeImage re-encodes the image as JPEG when that is smaller. Data
// that cannot be decoded is kept as-is.
func (c *Capturer) normalizeImage(raw []byte) []byte {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		c.logger.Debug("keeping undecodable image data", "bytes", len(raw), "err", err)
		return raw
	}
	if format == "jpeg" {
		return raw
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.jpegQuality}); err != nil {
		c.logger.Debug("failed to re-encode image", "format", format, "err", err)
		return raw
	}
	if buf.Len() >= len(raw) {
		return raw
	}
	c.logger.Debug("compressed image", "format", format, "from", len(raw), "to", buf.Len())
	return buf.Bytes()
}

// filePath accepts a plain path or a file:// URL.
func filePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Scheme == "file" {
		return u.Path
	}
	return raw
}
