package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/moby/sys/atomicwriter"

	"github.com/yiblet/clippocket/internal/backup"
	"github.com/yiblet/clippocket/internal/classify"
	"github.com/yiblet/clippocket/internal/config"
	"github.com/yiblet/clippocket/internal/item"
	"github.com/yiblet/clippocket/internal/pasteboard"
	"github.com/yiblet/clippocket/internal/pinned"
)

// executeWatch records clipboard changes until ctx is cancelled
func (c *CLI) executeWatch(ctx context.Context) error {
	board, err := c.newBoard()
	if err != nil {
		return fmt.Errorf("failed to open clipboard: %w", err)
	}

	monitor := pasteboard.NewMonitor(board, c.capturer, c.history)
	c.logger.Info("watching clipboard",
		"path", c.dir.Root(), "history", c.history.Count(), "pinned", c.pinned.Count())

	err = monitor.Run(ctx)
	c.history.Flush()
	c.logger.Info("stopped watching", "history", c.history.Count())
	return err
}

// executeAdd handles the 'clippocket add' command
func (c *CLI) executeAdd(cmd *AddCmd) error {
	kind := classify.KindText
	switch {
	case cmd.Image:
		kind = classify.KindImage
	case cmd.Path:
		kind = classify.KindFile
	}

	if cmd.Path {
		for _, name := range cmd.Files {
			abs, err := filepath.Abs(name)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", name, err)
			}
			c.add([]byte(abs), kind, cmd.Source)
		}
		return nil
	}

	if len(cmd.Files) == 0 {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		if len(data) == 0 {
			return fmt.Errorf("no input provided")
		}
		c.add(data, kind, cmd.Source)
		return nil
	}

	for _, name := range cmd.Files {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", name, err)
		}
		c.add(data, kind, cmd.Source)
	}
	return nil
}

func (c *CLI) add(data []byte, kind classify.Kind, source string) {
	it, ok := c.capturer.OnNewContent(data, kind, source)
	if !ok {
		fmt.Fprintln(c.stdout, "Skipped: nothing new to record")
		return
	}
	fmt.Fprintf(c.stdout, "Stored: %s\n", it.Preview(previewWidth))
}

// executeList handles the 'clippocket list' command
func (c *CLI) executeList(cmd *ListCmd) error {
	items := c.history.Items()
	if len(items) == 0 {
		fmt.Fprintln(c.stdout, "History is empty.")
		return nil
	}

	var filter item.Type
	if cmd.Type != "" {
		t, err := item.ParseType(cmd.Type)
		if err != nil {
			return err
		}
		filter = t
	}

	now := time.Now()
	shown := 0
	for i, it := range items {
		if filter != "" && it.Type != filter {
			continue
		}
		if cmd.Limit > 0 && shown == cmd.Limit {
			break
		}
		writeHistoryRow(c.stdout, i, it, c.pinned.IsPinned(it), now)
		shown++
	}
	if shown == 0 {
		fmt.Fprintf(c.stdout, "No %s items in history.\n", filter.DisplayName())
	}
	return nil
}

// executeSearch handles the 'clippocket search' command
func (c *CLI) executeSearch(cmd *SearchCmd) error {
	if cmd.Pinned {
		matches := c.pinned.Search(cmd.Query)
		if len(matches) == 0 {
			return fmt.Errorf("no pinned matches found for: %s", cmd.Query)
		}
		all := c.pinned.Items()
		for _, p := range matches {
			index := slices.IndexFunc(all, func(other *item.Pinned) bool { return other.ID == p.ID })
			writePinnedRow(c.stdout, index, p)
		}
		return nil
	}

	matches := c.history.Search(cmd.Query)
	if len(matches) == 0 {
		return fmt.Errorf("no matches found for: %s", cmd.Query)
	}

	all := c.history.Items()
	now := time.Now()
	for _, it := range matches {
		index := slices.IndexFunc(all, func(other *item.Item) bool { return other.ID == it.ID })
		if index < 0 {
			// Item was deleted between search and now
			continue
		}
		writeHistoryRow(c.stdout, index, it, c.pinned.IsPinned(it), now)
	}
	return nil
}

// executeCopy handles the 'clippocket copy' command
func (c *CLI) executeCopy(cmd *CopyCmd) error {
	var (
		it  *item.Item
		pin *item.Pinned
		err error
	)
	if cmd.Pinned {
		pin, err = c.resolvePinned(cmd.Ref)
		if err == nil {
			it = pin.Original
		}
	} else {
		it, err = c.resolveHistory(cmd.Ref)
	}
	if err != nil {
		return err
	}

	if cmd.Stdout {
		return writeContent(c.stdout, it)
	}

	board, err := c.newBoard()
	if err != nil {
		return fmt.Errorf("failed to open clipboard: %w", err)
	}
	monitor := pasteboard.NewMonitor(board, c.capturer, c.history)

	if pin != nil {
		if err := monitor.Write(it); err != nil {
			return err
		}
		if err := c.pinned.MoveToTop(pin.ID); err != nil {
			return err
		}
	} else if _, err := monitor.Copy(it.ID); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Copied to clipboard: %s\n", it.Preview(previewWidth))
	return nil
}

// writeContent streams an item's raw content
func writeContent(w io.Writer, it *item.Item) error {
	var err error
	switch content := it.Content.(type) {
	case item.Text:
		_, err = io.WriteString(w, string(content))
	case item.Image:
		_, err = w.Write(content)
	case item.FilePath:
		_, err = fmt.Fprintln(w, string(content))
	}
	return err
}

// executeDelete handles the 'clippocket delete' command
func (c *CLI) executeDelete(cmd *DeleteCmd) error {
	it, err := c.resolveHistory(cmd.Ref)
	if err != nil {
		return err
	}
	if err := c.history.Delete(it.ID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	fmt.Fprintf(c.stdout, "Deleted: %s\n", it.Preview(previewWidth))
	return nil
}

// executeClear handles the 'clippocket clear' command
func (c *CLI) executeClear(cmd *ClearCmd) error {
	count := c.history.Count()
	pinnedCount := 0
	if cmd.Pinned {
		pinnedCount = c.pinned.Count()
	}

	if count == 0 && pinnedCount == 0 {
		fmt.Fprintln(c.stdout, "History is already empty.")
		return nil
	}

	// Prompt for confirmation unless --force is used
	if !cmd.Force {
		prompt := fmt.Sprintf("This will delete %d item(s) from history", count)
		if cmd.Pinned {
			prompt += fmt.Sprintf(" and %d pinned item(s)", pinnedCount)
		}
		if !c.confirm(prompt + ". Continue?") {
			fmt.Fprintln(c.stdout, "Cancelled.")
			return nil
		}
	}

	if err := c.history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if cmd.Pinned {
		if err := c.pinned.Clear(); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.stdout, "Cleared %d item(s) from history.\n", count)
	return nil
}

// executePin handles the 'clippocket pin' command
func (c *CLI) executePin(cmd *PinCmd) error {
	it, err := c.resolveHistory(cmd.Ref)
	if err != nil {
		return err
	}

	added, err := c.pinned.Pin(it, cmd.Title)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintf(c.stdout, "Already pinned: %s\n", it.Preview(previewWidth))
		return nil
	}
	fmt.Fprintf(c.stdout, "Pinned: %s\n", it.Preview(previewWidth))
	return nil
}

// executeUnpin handles the 'clippocket unpin' command. A reference that is
// neither a pinned index nor a pinned id is tried as the id of the history
// item the entry was pinned from.
func (c *CLI) executeUnpin(cmd *UnpinCmd) error {
	p, err := c.resolvePinned(cmd.Ref)
	switch {
	case err == nil:
		if err := c.pinned.Unpin(p.ID); err != nil {
			return err
		}
	case errors.Is(err, pinned.ErrNotFound):
		if err := c.pinned.UnpinByOriginalID(cmd.Ref); err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, "Unpinned.")
		return nil
	default:
		return err
	}

	fmt.Fprintf(c.stdout, "Unpinned: %s\n", p.Original.Preview(previewWidth))
	return nil
}

// executePins handles the 'clippocket pins' command
func (c *CLI) executePins(cmd *PinsCmd) error {
	items := c.pinned.Items()
	if len(items) == 0 {
		fmt.Fprintln(c.stdout, "No pinned items.")
		return nil
	}

	var filter item.Type
	if cmd.Type != "" {
		t, err := item.ParseType(cmd.Type)
		if err != nil {
			return err
		}
		filter = t
	}

	for i, p := range items {
		if filter != "" && p.Original.Type != filter {
			continue
		}
		writePinnedRow(c.stdout, i, p)
	}
	return nil
}

// executeTitle handles the 'clippocket title' command
func (c *CLI) executeTitle(cmd *TitleCmd) error {
	p, err := c.resolvePinned(cmd.Ref)
	if err != nil {
		return err
	}
	if err := c.pinned.SetTitle(p.ID, cmd.Title); err != nil {
		return err
	}

	updated, err := c.pinned.Find(p.ID)
	if err != nil {
		return err
	}
	if updated.CustomTitle == nil {
		fmt.Fprintln(c.stdout, "Title cleared.")
		return nil
	}
	fmt.Fprintf(c.stdout, "Title set: %s\n", *updated.CustomTitle)
	return nil
}

// executeMove handles the 'clippocket move' command
func (c *CLI) executeMove(cmd *MoveCmd) error {
	if cmd.To == nil {
		p, err := c.pinned.Get(cmd.From)
		if err != nil {
			return err
		}
		if err := c.pinned.MoveToTop(p.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Moved pinned item %d to the top.\n", cmd.From)
		return nil
	}

	if err := c.pinned.Reorder(cmd.From, *cmd.To); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Moved pinned item %d to %d.\n", cmd.From, *cmd.To)
	return nil
}

// executeVerify handles the 'clippocket verify' command
func (c *CLI) executeVerify() error {
	if !c.pinned.ValidateIntegrity() {
		return fmt.Errorf("pinned items failed integrity check: duplicate or empty entries found")
	}
	fmt.Fprintf(c.stdout, "%s %d pinned item(s) verified.\n", okStyle.Render("OK"), c.pinned.Count())
	return nil
}

// executeExport handles the 'clippocket export' command
func (c *CLI) executeExport(cmd *ExportCmd) error {
	history, pins := c.history.Items(), c.pinned.Items()
	data, err := backup.Export(history, pins, config.HistoryCap(c.config), config.PinnedCap(c.config))
	if err != nil {
		return err
	}

	if cmd.File == nil {
		_, err := c.stdout.Write(data)
		return err
	}

	if err := atomicwriter.WriteFile(*cmd.File, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	fmt.Fprintf(c.stdout, "Exported %d history and %d pinned item(s) to %s\n",
		min(len(history), config.HistoryCap(c.config)),
		min(len(pins), config.PinnedCap(c.config)),
		*cmd.File)
	return nil
}

// executeImport handles the 'clippocket import' command
func (c *CLI) executeImport(cmd *ImportCmd) error {
	var (
		data []byte
		err  error
	)
	if cmd.File != nil {
		data, err = os.ReadFile(*cmd.File)
	} else {
		data, err = io.ReadAll(c.stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	history, pins, err := backup.Import(data, config.HistoryCap(c.config), config.PinnedCap(c.config))
	if err != nil {
		return err
	}

	// Stdin carries the backup itself, so only prompt when reading a file
	if cmd.File != nil && !cmd.Force {
		prompt := fmt.Sprintf("This will replace %d history and %d pinned item(s). Continue?",
			c.history.Count(), c.pinned.Count())
		if !c.confirm(prompt) {
			fmt.Fprintln(c.stdout, "Cancelled.")
			return nil
		}
	}

	restored := c.history.ReplaceAll(history)
	pinnedRestored, err := c.pinned.ReplaceAll(pins)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Imported %d history and %d pinned item(s).\n", restored, pinnedRestored)
	return nil
}

// executeConfig handles the 'clippocket config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configManager.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.stdout, value)
		return nil

	case cmd.Set != nil:
		if err := c.configManager.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.stdout, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil

	case cmd.List != nil:
		values, err := c.configManager.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}

		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		fmt.Fprintf(c.stdout, "Current configuration (%s):\n", c.configManager.GetConfigPath())
		for _, key := range keys {
			fmt.Fprintf(c.stdout, "  %s = %s\n", keyStyle.Render(key), values[key])
		}
		return nil

	default:
		return fmt.Errorf("no config subcommand specified")
	}
}
