package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yiblet/clippocket/internal/appdir"
	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/item"
	"github.com/yiblet/clippocket/internal/pasteboard"
	"github.com/yiblet/clippocket/internal/pasteboard/mockboard"
)

// newTestCLI builds a CLI over the given paths with a mock clipboard and
// captured output. The caller owns Close.
func newTestCLI(t *testing.T, configPath, historyPath string) (*CLI, *bytes.Buffer, *mockboard.MockBoard) {
	t.Helper()

	c, err := NewWithArgs(&Args{ConfigPath: &configPath, History: &historyPath})
	if err != nil {
		t.Fatalf("NewWithArgs failed: %v", err)
	}

	out := &bytes.Buffer{}
	board := mockboard.New()
	c.stdout = out
	c.stdin = strings.NewReader("")
	c.newBoard = func() (pasteboard.Board, error) { return board, nil }
	return c, out, board
}

func setupCLI(t *testing.T) (*CLI, *bytes.Buffer, *mockboard.MockBoard) {
	t.Helper()
	tempDir := t.TempDir()
	c, out, board := newTestCLI(t,
		filepath.Join(tempDir, "config.yaml"),
		filepath.Join(tempDir, "history"))
	t.Cleanup(func() { c.Close() })
	return c, out, board
}

func run(t *testing.T, c *CLI, args Args) {
	t.Helper()
	if err := c.Execute(context.Background(), &args); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func addText(t *testing.T, c *CLI, text string) {
	t.Helper()
	c.stdin = strings.NewReader(text)
	run(t, c, Args{Add: &AddCmd{}})
}

func TestNewWithArgs_CustomHistoryPath(t *testing.T) {
	tempDir := t.TempDir()
	customPath := filepath.Join(tempDir, "my-custom-history")

	c, _, _ := newTestCLI(t, filepath.Join(tempDir, "config.yaml"), customPath)
	defer c.Close()

	if c.dir.Root() != customPath {
		t.Errorf("Expected storage root %s, got %s", customPath, c.dir.Root())
	}
	if _, err := os.Stat(filepath.Join(customPath, appdir.DefaultsFile)); err != nil {
		t.Errorf("Expected defaults database in custom history directory: %v", err)
	}
}

func TestNewWithArgs_RelativeHistoryPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	c, _, _ := newTestCLI(t, filepath.Join(tempDir, "config.yaml"), "custom-rel-path")
	defer c.Close()

	expectedPath := filepath.Join(tempDir, appdir.ConfigDir, "custom-rel-path")
	if c.dir.Root() != expectedPath {
		t.Errorf("Expected storage root %s, got %s", expectedPath, c.dir.Root())
	}
}

func TestNewWithArgs_ConfigHistoryLocation(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	location := filepath.Join(tempDir, "from-config")

	if err := os.WriteFile(configPath, []byte("history_location: "+location+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	c, err := NewWithArgs(&Args{ConfigPath: &configPath})
	if err != nil {
		t.Fatalf("NewWithArgs failed: %v", err)
	}
	defer c.Close()

	if c.dir.Root() != location {
		t.Errorf("Expected storage root %s, got %s", location, c.dir.Root())
	}
}

func TestAddAndList(t *testing.T) {
	c, out, _ := setupCLI(t)

	addText(t, c, "hello world")
	addText(t, c, "https://example.com/docs")

	if c.history.Count() != 2 {
		t.Fatalf("Expected 2 history items, got %d", c.history.Count())
	}

	out.Reset()
	run(t, c, Args{List: &ListCmd{}})

	listing := out.String()
	urlAt := strings.Index(listing, "https://example.com/docs")
	textAt := strings.Index(listing, "hello world")
	if urlAt < 0 || textAt < 0 {
		t.Fatalf("Listing missing items:\n%s", listing)
	}
	if urlAt > textAt {
		t.Errorf("Expected most recent item first:\n%s", listing)
	}
	if !strings.Contains(listing, "URL") {
		t.Errorf("Expected type label in listing:\n%s", listing)
	}
}

func TestAdd_DuplicateIsSkipped(t *testing.T) {
	c, out, _ := setupCLI(t)

	addText(t, c, "same")
	addText(t, c, "same")

	if c.history.Count() != 1 {
		t.Errorf("Expected 1 history item, got %d", c.history.Count())
	}
	if !strings.Contains(out.String(), "Skipped") {
		t.Errorf("Expected skip notice, got %q", out.String())
	}
}

func TestAdd_Incognito(t *testing.T) {
	c, _, _ := setupCLI(t)
	c.config.Incognito = true

	addText(t, c, "secret")

	if c.history.Count() != 0 {
		t.Errorf("Expected nothing recorded in incognito mode, got %d", c.history.Count())
	}
}

func TestAdd_EmptyStdin(t *testing.T) {
	c, _, _ := setupCLI(t)
	c.stdin = strings.NewReader("")

	if err := c.Execute(context.Background(), &Args{Add: &AddCmd{}}); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestAdd_FilePath(t *testing.T) {
	c, _, _ := setupCLI(t)

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	run(t, c, Args{Add: &AddCmd{Files: []string{path}, Path: true}})

	it, err := c.history.Get(0)
	if err != nil {
		t.Fatalf("Get(0) failed: %v", err)
	}
	if it.Type != item.TypeFile {
		t.Errorf("Expected file item, got %s", it.Type)
	}
	if got, _ := it.Path(); got != path {
		t.Errorf("Expected path %s, got %s", path, got)
	}
}

func TestAdd_FileContents(t *testing.T) {
	c, _, _ := setupCLI(t)

	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("#ff8800"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	run(t, c, Args{Add: &AddCmd{Files: []string{path}}})

	it, err := c.history.Get(0)
	if err != nil {
		t.Fatalf("Get(0) failed: %v", err)
	}
	if it.Type != item.TypeColor {
		t.Errorf("Expected color item, got %s", it.Type)
	}
}

func TestList_FilterAndLimit(t *testing.T) {
	c, out, _ := setupCLI(t)

	addText(t, c, "first note")
	addText(t, c, "user@example.com")
	addText(t, c, "second note")
	addText(t, c, "third note")

	out.Reset()
	run(t, c, Args{List: &ListCmd{Type: "email"}})
	if !strings.Contains(out.String(), "user@example.com") || strings.Contains(out.String(), "note") {
		t.Errorf("Type filter not applied:\n%s", out.String())
	}

	out.Reset()
	run(t, c, Args{List: &ListCmd{Limit: 2}})
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("Expected 2 rows, got %d:\n%s", len(lines), out.String())
	}
}

func TestList_Empty(t *testing.T) {
	c, out, _ := setupCLI(t)

	run(t, c, Args{})

	if !strings.Contains(out.String(), "History is empty") {
		t.Errorf("Expected empty notice, got %q", out.String())
	}
}

func TestSearch(t *testing.T) {
	c, out, _ := setupCLI(t)

	addText(t, c, "Meeting notes")
	addText(t, c, "grocery list")

	out.Reset()
	run(t, c, Args{Search: &SearchCmd{Query: "MEETING"}})
	if !strings.Contains(out.String(), "Meeting notes") || strings.Contains(out.String(), "grocery") {
		t.Errorf("Unexpected search output:\n%s", out.String())
	}

	if err := c.Execute(context.Background(), &Args{Search: &SearchCmd{Query: "absent"}}); err == nil {
		t.Error("Expected error when nothing matches")
	}
}

func TestSearch_PinnedMatchesTitle(t *testing.T) {
	c, out, _ := setupCLI(t)

	addText(t, c, "ssh deploy@10.0.0.1")
	title := "prod box"
	run(t, c, Args{Pin: &PinCmd{Ref: "0", Title: &title}})

	out.Reset()
	run(t, c, Args{Search: &SearchCmd{Query: "prod", Pinned: true}})
	if !strings.Contains(out.String(), "prod box") {
		t.Errorf("Expected pinned title match:\n%s", out.String())
	}
}

func TestCopy_WritesClipboardAndPromotes(t *testing.T) {
	c, _, board := setupCLI(t)

	addText(t, c, "older")
	addText(t, c, "newer")

	run(t, c, Args{Copy: &CopyCmd{Ref: "1"}})

	written := board.Written()
	if len(written) != 1 || string(written[0].Data) != "older" {
		t.Fatalf("Expected clipboard write of %q, got %+v", "older", written)
	}
	if written[0].Kind != classify.KindText {
		t.Errorf("Expected text clip, got %s", written[0].Kind)
	}

	first, _ := c.history.Get(0)
	if text, _ := first.Text(); text != "older" {
		t.Errorf("Expected copied item promoted to front, got %q", text)
	}
}

func TestCopy_Stdout(t *testing.T) {
	c, out, board := setupCLI(t)

	addText(t, c, "line one\nline two")

	out.Reset()
	run(t, c, Args{Copy: &CopyCmd{Ref: "0", Stdout: true}})

	if out.String() != "line one\nline two" {
		t.Errorf("Expected raw content on stdout, got %q", out.String())
	}
	if len(board.Written()) != 0 {
		t.Error("Expected no clipboard write with --stdout")
	}
}

func TestCopy_PinnedMovesToTop(t *testing.T) {
	c, _, board := setupCLI(t)

	addText(t, c, "alpha")
	run(t, c, Args{Pin: &PinCmd{Ref: "0"}})
	addText(t, c, "beta")
	run(t, c, Args{Pin: &PinCmd{Ref: "0"}})

	// beta is pinned index 0, alpha index 1
	run(t, c, Args{Copy: &CopyCmd{Ref: "1", Pinned: true}})

	if written := board.Written(); len(written) != 1 || string(written[0].Data) != "alpha" {
		t.Fatalf("Expected clipboard write of alpha, got %+v", written)
	}
	top, _ := c.pinned.Get(0)
	if text, _ := top.Original.Text(); text != "alpha" {
		t.Errorf("Expected copied pinned item at top, got %q", text)
	}
}

func TestCopy_UnknownRef(t *testing.T) {
	c, _, _ := setupCLI(t)

	if err := c.Execute(context.Background(), &Args{Copy: &CopyCmd{Ref: "7"}}); err == nil {
		t.Error("Expected error for out-of-range index")
	}
	if err := c.Execute(context.Background(), &Args{Copy: &CopyCmd{Ref: "no-such-id"}}); err == nil {
		t.Error("Expected error for unknown id")
	}
}

func TestDelete(t *testing.T) {
	c, _, _ := setupCLI(t)

	addText(t, c, "keep")
	addText(t, c, "drop")

	first, _ := c.history.Get(0)
	run(t, c, Args{Delete: &DeleteCmd{Ref: first.ID}})

	if c.history.Count() != 1 {
		t.Fatalf("Expected 1 item after delete, got %d", c.history.Count())
	}
	remaining, _ := c.history.Get(0)
	if text, _ := remaining.Text(); text != "keep" {
		t.Errorf("Deleted the wrong item, remaining %q", text)
	}
}

func TestClear(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		c, out, _ := setupCLI(t)
		addText(t, c, "one")

		c.stdin = strings.NewReader("n\n")
		run(t, c, Args{Clear: &ClearCmd{}})

		if c.history.Count() != 1 {
			t.Errorf("Expected history untouched, got %d items", c.history.Count())
		}
		if !strings.Contains(out.String(), "Cancelled") {
			t.Errorf("Expected cancel notice, got %q", out.String())
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		c, _, _ := setupCLI(t)
		addText(t, c, "one")
		addText(t, c, "two")

		c.stdin = strings.NewReader("yes\n")
		run(t, c, Args{Clear: &ClearCmd{}})

		if c.history.Count() != 0 {
			t.Errorf("Expected empty history, got %d items", c.history.Count())
		}
	})

	t.Run("force with pinned", func(t *testing.T) {
		c, _, _ := setupCLI(t)
		addText(t, c, "one")
		run(t, c, Args{Pin: &PinCmd{Ref: "0"}})

		run(t, c, Args{Clear: &ClearCmd{Force: true, Pinned: true}})

		if c.history.Count() != 0 || c.pinned.Count() != 0 {
			t.Errorf("Expected everything cleared, got %d history and %d pinned",
				c.history.Count(), c.pinned.Count())
		}
	})

	t.Run("history only keeps pinned", func(t *testing.T) {
		c, _, _ := setupCLI(t)
		addText(t, c, "one")
		run(t, c, Args{Pin: &PinCmd{Ref: "0"}})

		run(t, c, Args{Clear: &ClearCmd{Force: true}})

		if c.pinned.Count() != 1 {
			t.Errorf("Expected pinned item to survive, got %d", c.pinned.Count())
		}
	})
}

func TestPinWorkflow(t *testing.T) {
	c, out, _ := setupCLI(t)

	addText(t, c, "first")
	addText(t, c, "second")

	title := "Greeting"
	run(t, c, Args{Pin: &PinCmd{Ref: "1", Title: &title}})
	run(t, c, Args{Pin: &PinCmd{Ref: "0"}})

	out.Reset()
	run(t, c, Args{Pin: &PinCmd{Ref: "0"}})
	if !strings.Contains(out.String(), "Already pinned") {
		t.Errorf("Expected duplicate pin notice, got %q", out.String())
	}

	out.Reset()
	run(t, c, Args{Pins: &PinsCmd{}})
	if !strings.Contains(out.String(), "Greeting") {
		t.Errorf("Expected custom title in pins listing:\n%s", out.String())
	}

	// second is pinned index 0, first index 1
	run(t, c, Args{Move: &MoveCmd{From: 1}})
	top, _ := c.pinned.Get(0)
	if text, _ := top.Original.Text(); text != "first" {
		t.Errorf("Expected first at top after move, got %q", text)
	}

	renamed := "Hello"
	run(t, c, Args{Title: &TitleCmd{Ref: "0", Title: &renamed}})
	top, _ = c.pinned.Get(0)
	if top.DisplayTitle() != "Hello" {
		t.Errorf("Expected title Hello, got %q", top.DisplayTitle())
	}

	run(t, c, Args{Title: &TitleCmd{Ref: "0"}})
	top, _ = c.pinned.Get(0)
	if top.CustomTitle != nil {
		t.Errorf("Expected title cleared, got %q", *top.CustomTitle)
	}

	to := 1
	run(t, c, Args{Move: &MoveCmd{From: 0, To: &to}})
	top, _ = c.pinned.Get(0)
	if text, _ := top.Original.Text(); text != "second" {
		t.Errorf("Expected second at top after reorder, got %q", text)
	}

	// Unpin by the id of the history item that was pinned
	original, _ := c.history.Find(top.Original.ID)
	run(t, c, Args{Unpin: &UnpinCmd{Ref: original.ID}})
	if c.pinned.Count() != 1 {
		t.Fatalf("Expected 1 pinned item, got %d", c.pinned.Count())
	}

	run(t, c, Args{Unpin: &UnpinCmd{Ref: "0"}})
	if c.pinned.Count() != 0 {
		t.Errorf("Expected no pinned items, got %d", c.pinned.Count())
	}
}

func TestUnpin_Unknown(t *testing.T) {
	c, _, _ := setupCLI(t)

	if err := c.Execute(context.Background(), &Args{Unpin: &UnpinCmd{Ref: "missing"}}); err == nil {
		t.Error("Expected error unpinning an unknown reference")
	}
	if err := c.Execute(context.Background(), &Args{Unpin: &UnpinCmd{Ref: "3"}}); err == nil {
		t.Error("Expected error unpinning an out-of-range index")
	}
}

func TestVerify(t *testing.T) {
	c, out, _ := setupCLI(t)

	addText(t, c, "value")
	run(t, c, Args{Pin: &PinCmd{Ref: "0"}})
	run(t, c, Args{Verify: &VerifyCmd{}})

	if !strings.Contains(out.String(), "1 pinned item(s) verified") {
		t.Errorf("Expected verification notice, got %q", out.String())
	}
}

func TestExportImport(t *testing.T) {
	c, _, _ := setupCLI(t)

	addText(t, c, "one")
	addText(t, c, "two")
	run(t, c, Args{Pin: &PinCmd{Ref: "1"}})

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	run(t, c, Args{Export: &ExportCmd{File: &backupPath}})

	run(t, c, Args{Clear: &ClearCmd{Force: true, Pinned: true}})
	if c.history.Count() != 0 {
		t.Fatal("Expected empty history before import")
	}

	run(t, c, Args{Import: &ImportCmd{File: &backupPath, Force: true}})

	if c.history.Count() != 2 || c.pinned.Count() != 1 {
		t.Fatalf("Expected 2 history and 1 pinned after import, got %d and %d",
			c.history.Count(), c.pinned.Count())
	}
	first, _ := c.history.Get(0)
	if text, _ := first.Text(); text != "two" {
		t.Errorf("Expected order preserved, first item %q", text)
	}
}

func TestImport_FromStdinLegacyArray(t *testing.T) {
	c, out, _ := setupCLI(t)

	c.stdin = strings.NewReader(`[{"id":"a1","content":"legacy","type":"text","timestamp":"2024-01-01T00:00:00Z"}]`)
	run(t, c, Args{Import: &ImportCmd{}})

	if c.history.Count() != 1 {
		t.Fatalf("Expected 1 imported item, got %d", c.history.Count())
	}
	if !strings.Contains(out.String(), "Imported 1 history and 0 pinned") {
		t.Errorf("Unexpected import output %q", out.String())
	}
}

func TestImport_Invalid(t *testing.T) {
	c, _, _ := setupCLI(t)
	addText(t, c, "survivor")

	c.stdin = strings.NewReader("not a backup")
	if err := c.Execute(context.Background(), &Args{Import: &ImportCmd{}}); err == nil {
		t.Error("Expected error importing garbage")
	}
	if c.history.Count() != 1 {
		t.Errorf("Expected history untouched after failed import, got %d", c.history.Count())
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	historyPath := filepath.Join(tempDir, "history")

	c, _, _ := newTestCLI(t, configPath, historyPath)
	addText(t, c, "persisted text")
	run(t, c, Args{Pin: &PinCmd{Ref: "0"}})
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, _, _ := newTestCLI(t, configPath, historyPath)
	defer reopened.Close()

	if reopened.history.Count() != 1 {
		t.Fatalf("Expected 1 restored history item, got %d", reopened.history.Count())
	}
	if reopened.pinned.Count() != 1 {
		t.Fatalf("Expected 1 restored pinned item, got %d", reopened.pinned.Count())
	}
	first, _ := reopened.history.Get(0)
	if !reopened.pinned.IsPinned(first) {
		t.Error("Expected restored item to match its pinned entry")
	}
}

func TestPinnedSurviveRepeatedSaves(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	historyPath := filepath.Join(tempDir, "history")

	c, _, _ := newTestCLI(t, configPath, historyPath)
	addText(t, c, "first")
	addText(t, c, "second")
	run(t, c, Args{Pin: &PinCmd{Ref: "0"}})
	run(t, c, Args{Pin: &PinCmd{Ref: "1"}})
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, _, _ := newTestCLI(t, configPath, historyPath)
	if reopened.pinned.Count() != 2 {
		t.Fatalf("Expected 2 restored pinned items, got %d", reopened.pinned.Count())
	}
	run(t, reopened, Args{Unpin: &UnpinCmd{Ref: "0"}})
	if err := reopened.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	again, _, _ := newTestCLI(t, configPath, historyPath)
	defer again.Close()
	if again.pinned.Count() != 1 {
		t.Fatalf("Expected 1 pinned item after unpin, got %d", again.pinned.Count())
	}
}

func TestClose_DoesNotRewriteClearedHistory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	historyPath := filepath.Join(tempDir, "history")

	c, _, _ := newTestCLI(t, configPath, historyPath)
	addText(t, c, "to be cleared")
	run(t, c, Args{Clear: &ClearCmd{Force: true}})
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	historyFile := c.dir.Path(appdir.HistoryFile)
	if _, err := os.Stat(historyFile); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be absent after clear, stat error: %v", historyFile, err)
	}
}

func TestClose_ReadOnlyCommandWritesNothing(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	historyPath := filepath.Join(tempDir, "history")

	c, _, _ := newTestCLI(t, configPath, historyPath)
	run(t, c, Args{List: &ListCmd{}})
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	historyFile := c.dir.Path(appdir.HistoryFile)
	if _, err := os.Stat(historyFile); !os.IsNotExist(err) {
		t.Errorf("Expected list to leave %s unwritten, stat error: %v", historyFile, err)
	}
}

func TestWatch(t *testing.T) {
	c, _, board := setupCLI(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Execute(ctx, &Args{Watch: &WatchCmd{}})
	}()

	board.Copy(pasteboard.Clip{Kind: classify.KindText, Data: []byte("copied elsewhere")})

	deadline := time.Now().Add(2 * time.Second)
	for c.history.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("watch returned error: %v", err)
	}
	if c.history.Count() != 1 {
		t.Fatalf("Expected watched copy to be recorded, got %d items", c.history.Count())
	}
	if !c.dir.Exists(appdir.HistoryFile) {
		t.Error("Expected history file written when watch stops")
	}
}

func TestArgsValidation_ValidCases(t *testing.T) {
	tests := []struct {
		name string
		args Args
	}{
		{"no subcommand", Args{}},
		{"add from stdin", Args{Add: &AddCmd{}}},
		{"add image file", Args{Add: &AddCmd{Files: []string{"shot.png"}, Image: true}}},
		{"add file reference", Args{Add: &AddCmd{Files: []string{"doc.pdf"}, Path: true}}},
		{"list with limit", Args{List: &ListCmd{Limit: 5, Type: "url"}}},
		{"list legacy type name", Args{List: &ListCmd{Type: "link"}}},
		{"pins by type", Args{Pins: &PinsCmd{Type: "code"}}},
		{"move to top", Args{Move: &MoveCmd{From: 3}}},
		{"move to index", Args{Move: &MoveCmd{From: 3, To: intPtr(0)}}},
		{"with custom history", Args{History: stringPtr("/tmp/custom-history"), List: &ListCmd{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.args.Validate(); err != nil {
				t.Errorf("Expected validation to pass for %s, got: %v", tt.name, err)
			}
		})
	}
}

func TestArgsValidation_InvalidCases(t *testing.T) {
	tests := []struct {
		name string
		args Args
	}{
		{"add image and path", Args{Add: &AddCmd{Files: []string{"a"}, Image: true, Path: true}}},
		{"add path without files", Args{Add: &AddCmd{Path: true}}},
		{"list negative limit", Args{List: &ListCmd{Limit: -1}}},
		{"list unknown type", Args{List: &ListCmd{Type: "video"}}},
		{"pins unknown type", Args{Pins: &PinsCmd{Type: "video"}}},
		{"move negative from", Args{Move: &MoveCmd{From: -1}}},
		{"move negative to", Args{Move: &MoveCmd{From: 0, To: intPtr(-2)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.args.Validate(); err == nil {
				t.Errorf("Expected validation to fail for %s", tt.name)
			}
		})
	}
}

func TestConfigCommands_ValidationCases(t *testing.T) {
	tests := []struct {
		name      string
		config    *ConfigCmd
		expectErr bool
	}{
		{"config get valid", &ConfigCmd{Get: &ConfigGetCmd{Key: "max-history-items"}}, false},
		{"config set valid", &ConfigCmd{Set: &ConfigSetCmd{Key: "max-history-items", Value: "100"}}, false},
		{"config list valid", &ConfigCmd{List: &ConfigListCmd{}}, false},
		{"config set log-level", &ConfigCmd{Set: &ConfigSetCmd{Key: "log-level", Value: "debug"}}, false},
		{"config get log-format", &ConfigCmd{Get: &ConfigGetCmd{Key: "log-format"}}, false},
		{"config get invalid key", &ConfigCmd{Get: &ConfigGetCmd{Key: "invalid-key"}}, true},
		{"config set invalid key", &ConfigCmd{Set: &ConfigSetCmd{Key: "invalid-key", Value: "value"}}, true},
		{"config no subcommand", &ConfigCmd{}, true},
		{
			"config multiple subcommands",
			&ConfigCmd{
				Get:  &ConfigGetCmd{Key: "max-pinned"},
				List: &ConfigListCmd{},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := Args{Config: tt.config}
			err := args.Validate()
			if tt.expectErr && err == nil {
				t.Errorf("Expected validation to fail for %s", tt.name)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected validation to pass for %s, got: %v", tt.name, err)
			}
		})
	}
}

func TestConfigCommands_Integration(t *testing.T) {
	c, out, _ := setupCLI(t)

	run(t, c, Args{Config: &ConfigCmd{Set: &ConfigSetCmd{Key: "max-history-items", Value: "25"}}})

	out.Reset()
	run(t, c, Args{Config: &ConfigCmd{Get: &ConfigGetCmd{Key: "max-history-items"}}})
	if strings.TrimSpace(out.String()) != "25" {
		t.Errorf("Expected 25, got %q", out.String())
	}

	out.Reset()
	run(t, c, Args{Config: &ConfigCmd{List: &ConfigListCmd{}}})
	for _, key := range []string{"incognito", "max-pinned", "remember-history"} {
		if !strings.Contains(out.String(), key) {
			t.Errorf("Expected %s in config list:\n%s", key, out.String())
		}
	}

	for _, tc := range []struct{ key, value string }{
		{"max-history-items", "not-a-number"},
		{"max-history-items", "-5"},
		{"max-history-items", "2000"},
		{"incognito", "maybe"},
	} {
		args := Args{Config: &ConfigCmd{Set: &ConfigSetCmd{Key: tc.key, Value: tc.value}}}
		if err := c.Execute(context.Background(), &args); err == nil {
			t.Errorf("Expected config set %s=%s to fail, but it succeeded", tc.key, tc.value)
		}
	}
}

func TestConfigIntegrationWithHistoryLimit(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	historyPath := filepath.Join(tempDir, "history")

	setup, _, _ := newTestCLI(t, configPath, historyPath)
	run(t, setup, Args{Config: &ConfigCmd{Set: &ConfigSetCmd{Key: "max-history-items", Value: "2"}}})
	run(t, setup, Args{Config: &ConfigCmd{Set: &ConfigSetCmd{Key: "enable-history-limit", Value: "true"}}})
	setup.Close()

	// A new instance picks up the configured limit
	c, _, _ := newTestCLI(t, configPath, historyPath)
	defer c.Close()

	for _, text := range []string{"a", "b", "c"} {
		addText(t, c, text)
	}
	if c.history.Count() != 2 {
		t.Errorf("Expected history capped at 2, got %d", c.history.Count())
	}
}

func TestLogOptions(t *testing.T) {
	cfgArgs := &Args{}
	_, cfg, err := LoadConfig(&Args{ConfigPath: stringPtr(filepath.Join(t.TempDir(), "config.yaml"))})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if _, level := LogOptions(cfgArgs, cfg); level.String() != "WARN" {
		t.Errorf("Expected WARN for one-shot commands, got %s", level)
	}
	if _, level := LogOptions(&Args{Watch: &WatchCmd{}}, cfg); level.String() != "INFO" {
		t.Errorf("Expected INFO while watching, got %s", level)
	}

	cfg.LogLevel = "error"
	if _, level := LogOptions(cfgArgs, cfg); level.String() != "ERROR" {
		t.Errorf("Expected config level ERROR, got %s", level)
	}
	if _, level := LogOptions(&Args{LogLevel: stringPtr("debug")}, cfg); level.String() != "DEBUG" {
		t.Errorf("Expected flag to override config, got %s", level)
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		then time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-72 * time.Hour), "3d ago"},
	}
	for _, tt := range tests {
		if got := age(now, tt.then); got != tt.want {
			t.Errorf("age(%s) = %q, want %q", now.Sub(tt.then), got, tt.want)
		}
	}
}

// Helper functions for pointer creation
func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
