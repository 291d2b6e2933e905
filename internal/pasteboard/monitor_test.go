package pasteboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yiblet/clippocket/internal/capture"
	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/config"
	"github.com/yiblet/clippocket/internal/history"
	"github.com/yiblet/clippocket/internal/item"
	"github.com/yiblet/clippocket/internal/pasteboard"
	"github.com/yiblet/clippocket/internal/pasteboard/mockboard"
)

type nopPersister struct{}

func (nopPersister) SaveHistory([]*item.Item) error { return nil }
func (nopPersister) RemoveHistory() error           { return nil }

// setupMonitor wires a mock board through a real capturer into a history store
// and starts the monitor.
func setupMonitor(t *testing.T) (*pasteboard.Monitor, *mockboard.MockBoard, *history.Store) {
	t.Helper()

	cfg := config.DefaultConfig()
	hist := history.New(cfg, nopPersister{}, history.WithSaveDelay(time.Hour))
	board := mockboard.New()
	mon := pasteboard.NewMonitor(board, capture.New(cfg, hist), hist)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		mon.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	return mon, board, hist
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestMonitor_CapturesCopies(t *testing.T) {
	_, board, hist := setupMonitor(t)

	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("hello@example.com"), SourceAppID: "com.apple.Mail"})
	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("#FF00AA")})

	waitFor(t, func() bool { return hist.Count() == 2 })

	items := hist.Items()
	if items[0].Type != item.TypeColor || items[1].Type != item.TypeEmail {
		t.Errorf("types = %s, %s; want color, email", items[0].Type, items[1].Type)
	}
	if items[1].SourceAppID != "com.apple.Mail" {
		t.Errorf("SourceAppID = %q", items[1].SourceAppID)
	}
}

func TestMonitor_CopySuppressesEcho(t *testing.T) {
	mon, board, hist := setupMonitor(t)

	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("first")})
	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("second")})
	waitFor(t, func() bool { return hist.Count() == 2 })

	first, _ := hist.Get(1)
	got, err := mon.Copy(first.ID)
	if err != nil {
		t.Fatalf("Copy() error: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("Copy() returned %s, want %s", got.ID, first.ID)
	}

	written := board.Written()
	if len(written) != 1 || string(written[0].Data) != "first" {
		t.Fatalf("Written() = %v", written)
	}

	// A fresh copy after the echo must still be captured.
	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("third")})
	waitFor(t, func() bool { return hist.Count() == 3 })

	items := hist.Items()
	if string(items[0].Content.(item.Text)) != "third" || items[1].ID != first.ID {
		t.Errorf("order after copy = %v", items)
	}
}

func TestMonitor_EchoIsOneShot(t *testing.T) {
	mon, board, hist := setupMonitor(t)

	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("once")})
	waitFor(t, func() bool { return hist.Count() == 1 })

	it, _ := hist.Get(0)
	if _, err := mon.Copy(it.ID); err != nil {
		t.Fatalf("Copy() error: %v", err)
	}
	hist.Delete(it.ID)

	// The write's own change is swallowed; a later identical copy from another
	// app is captured again.
	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("once")})
	waitFor(t, func() bool { return hist.Count() == 1 })
}

func TestMonitor_CopyMissing(t *testing.T) {
	mon, _, _ := setupMonitor(t)

	if _, err := mon.Copy("missing"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("Copy(missing) error = %v, want history.ErrNotFound", err)
	}
}

func TestMonitor_WriteFailure(t *testing.T) {
	mon, board, hist := setupMonitor(t)

	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("x")})
	waitFor(t, func() bool { return hist.Count() == 1 })

	board.FailWrites(errors.New("no display"))
	it, _ := hist.Get(0)
	if _, err := mon.Copy(it.ID); err == nil {
		t.Error("Copy() error = nil with failing board")
	}
}

func TestMonitor_StopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	hist := history.New(cfg, nopPersister{}, history.WithSaveDelay(time.Hour))
	mon := pasteboard.NewMonitor(mockboard.New(), capture.New(cfg, hist), hist)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestClipFor(t *testing.T) {
	text, _ := item.New(item.Text("hi"), item.TypeText, "")
	img, _ := item.New(item.Image([]byte{1, 2}), item.TypeImage, "")
	file, _ := item.New(item.FilePath("/tmp/f"), item.TypeFile, "")

	tests := []struct {
		it   *item.Item
		kind classify.Kind
		data string
	}{
		{text, classify.KindText, "hi"},
		{img, classify.KindImage, "\x01\x02"},
		{file, classify.KindFile, "/tmp/f"},
	}
	for _, tt := range tests {
		clip, err := pasteboard.ClipFor(tt.it)
		if err != nil {
			t.Fatalf("ClipFor(%s) error: %v", tt.it.Type, err)
		}
		if clip.Kind != tt.kind || string(clip.Data) != tt.data {
			t.Errorf("ClipFor(%s) = %v", tt.it.Type, clip)
		}
	}

	if _, err := pasteboard.ClipFor(&item.Item{ID: "empty"}); err == nil {
		t.Error("ClipFor(no content) error = nil")
	}
}
