// Package pasteboard connects the system clipboard to the capture pipeline
// and writes stored items back to it.
package pasteboard

import (
	"context"
	"fmt"

	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/item"
)

// Clip is one clipboard change.
type Clip struct {
	Kind        classify.Kind
	Data        []byte
	SourceAppID string
}

// Board is a clipboard that can be watched and written.
type Board interface {
	// Watch delivers clipboard changes until ctx is done, then closes the
	// channel.
	Watch(ctx context.Context) <-chan Clip

	// Write replaces the clipboard contents.
	Write(clip Clip) error
}

// ClipFor returns the clip that puts it back on the clipboard.
func ClipFor(it *item.Item) (Clip, error) {
	switch c := it.Content.(type) {
	case item.Text:
		return Clip{Kind: classify.KindText, Data: []byte(c)}, nil
	case item.Image:
		return Clip{Kind: classify.KindImage, Data: []byte(c)}, nil
	case item.FilePath:
		return Clip{Kind: classify.KindFile, Data: []byte(c)}, nil
	default:
		return Clip{}, fmt.Errorf("item %s has no content", it.ID)
	}
}
