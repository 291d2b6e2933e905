// Package sysboard implements pasteboard.Board on the system clipboard using
// golang.design/x/clipboard. Text and PNG images are supported; a copied
// file shows up as a single file:// URL in the text slot.
package sysboard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"strings"
	"sync"

	_ "image/jpeg" // register decoder

	"golang.design/x/clipboard"

	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/pasteboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// SystemBoard implements pasteboard.Board on the OS clipboard
type SystemBoard struct{}

// New initializes the system clipboard. It fails on systems without a
// clipboard, such as a Linux host with no display.
func New() (*SystemBoard, error) {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return nil, fmt.Errorf("clipboard unavailable: %w", initErr)
	}
	return &SystemBoard{}, nil
}

// Watch implements pasteboard.Board.
func (s *SystemBoard) Watch(ctx context.Context) <-chan pasteboard.Clip {
	texts := clipboard.Watch(ctx, clipboard.FmtText)
	images := clipboard.Watch(ctx, clipboard.FmtImage)

	out := make(chan pasteboard.Clip)
	go func() {
		defer close(out)
		for texts != nil || images != nil {
			var clip pasteboard.Clip
			select {
			case <-ctx.Done():
				return
			case data, ok := <-texts:
				if !ok {
					texts = nil
					continue
				}
				clip = textClip(data)
			case data, ok := <-images:
				if !ok {
					images = nil
					continue
				}
				clip = pasteboard.Clip{Kind: classify.KindImage, Data: data}
			}

			select {
			case out <- clip:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Write implements pasteboard.Board. Images are converted to PNG, the only
// image format the clipboard library writes.
func (s *SystemBoard) Write(clip pasteboard.Clip) error {
	switch clip.Kind {
	case classify.KindText:
		clipboard.Write(clipboard.FmtText, clip.Data)
	case classify.KindFile:
		u := url.URL{Scheme: "file", Path: string(clip.Data)}
		clipboard.Write(clipboard.FmtText, []byte(u.String()))
	case classify.KindImage:
		data, err := toPNG(clip.Data)
		if err != nil {
			return err
		}
		clipboard.Write(clipboard.FmtImage, data)
	default:
		return fmt.Errorf("unsupported clip kind: %s", clip.Kind)
	}
	return nil
}

// textClip reports a lone file:// URL as a file reference.
func textClip(data []byte) pasteboard.Clip {
	s := strings.TrimSpace(string(data))
	if !strings.ContainsAny(s, "\n\r") {
		if u, err := url.Parse(s); err == nil && u.Scheme == "file" && u.Path != "" {
			return pasteboard.Clip{Kind: classify.KindFile, Data: []byte(u.Path)}
		}
	}
	return pasteboard.Clip{Kind: classify.KindText, Data: data}
}

func toPNG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if format == "png" {
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
