package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/yiblet/clippocket/internal/appdir"
	"github.com/yiblet/clippocket/internal/backup"
	"github.com/yiblet/clippocket/internal/capture"
	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/config"
	"github.com/yiblet/clippocket/internal/history"
	"github.com/yiblet/clippocket/internal/pasteboard"
	"github.com/yiblet/clippocket/internal/pasteboard/mockboard"
	"github.com/yiblet/clippocket/internal/persist"
	"github.com/yiblet/clippocket/internal/pinned"
	"github.com/yiblet/clippocket/internal/store/memstore"
)

func main() {
	fmt.Println("clippocket Demo")

	root, err := os.MkdirTemp("", "clippocket-demo-")
	if err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}
	defer os.RemoveAll(root)

	// In-memory defaults store and a throwaway history directory
	cfg := config.DefaultConfig()
	gateway := persist.New(appdir.NewWithRoot(root), memstore.NewMemoryStore(), cfg)
	hist := history.New(cfg, gateway, history.WithSaveDelay(50*time.Millisecond))
	defer hist.Close()
	pins := pinned.New(cfg, gateway)

	board := mockboard.New()
	monitor := pasteboard.NewMonitor(board, capture.New(cfg, hist), hist)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor.Run(ctx)
	}()

	testContent := []string{
		"Hello, World! This is the first thing we copied.",
		"package main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello, Go!\")\n}",
		"https://github.com/yiblet/clippocket",
		"someone@example.com",
		"+1 (555) 123-4567",
		`{"name": "clippocket", "pinned": true}`,
		"#1e90ff",
		"Hello, World! This is the first thing we copied.",
	}

	fmt.Println("Copying from other applications:")
	for _, content := range testContent {
		board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte(content), SourceAppID: "com.example.editor"})
	}
	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("hunter2"), SourceAppID: "com.bitwarden.desktop"})

	// Duplicates and the excluded password manager are dropped
	deadline := time.Now().Add(2 * time.Second)
	for hist.Count() < len(testContent)-1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	items := hist.Items()
	fmt.Printf("\nHistory size: %d\n\n", len(items))
	for i, it := range items {
		fmt.Printf("%d. [%-5s] %s\n", i, it.Type.DisplayName(), it.Preview(50))
	}

	// Pin the URL and copy the oldest entry back to the clipboard
	if url := hist.Search("github"); len(url) > 0 {
		title := "Project"
		if _, err := pins.Pin(url[0], &title); err != nil {
			log.Printf("Failed to pin: %v", err)
		}
	}
	if len(items) > 0 {
		oldest := items[len(items)-1]
		if _, err := monitor.Copy(oldest.ID); err != nil {
			log.Printf("Failed to copy: %v", err)
		} else {
			fmt.Printf("\nCopied back to clipboard: %s\n", oldest.Preview(50))
		}
	}

	cancel()
	<-done

	fmt.Println("\nPinned items:")
	for i, p := range pins.Items() {
		fmt.Printf("%d. %s -> %s\n", i, p.DisplayTitle(), p.Original.Preview(50))
	}

	data, err := backup.Export(hist.Items(), pins.Items(), config.HistoryCap(cfg), config.PinnedCap(cfg))
	if err != nil {
		log.Fatalf("Failed to export: %v", err)
	}
	fmt.Printf("\nBackup size: %d bytes\n", len(data))

	fmt.Printf("\nDemo complete! (Using in-memory defaults store)\n")
}
