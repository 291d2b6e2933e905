package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/yiblet/clippocket/internal/appdir"
	"github.com/yiblet/clippocket/internal/capture"
	"github.com/yiblet/clippocket/internal/config"
	"github.com/yiblet/clippocket/internal/history"
	"github.com/yiblet/clippocket/internal/item"
	"github.com/yiblet/clippocket/internal/logging"
	"github.com/yiblet/clippocket/internal/pasteboard"
	"github.com/yiblet/clippocket/internal/pasteboard/sysboard"
	"github.com/yiblet/clippocket/internal/persist"
	"github.com/yiblet/clippocket/internal/pinned"
	"github.com/yiblet/clippocket/internal/store/dbstore"
)

// CLI handles the command-line interface
type CLI struct {
	configManager *config.ConfigManager
	config        *config.Config
	dir           *appdir.Dir
	defaults      *dbstore.SQLiteStore
	history       *history.Store
	pinned        *pinned.Store
	capturer      *capture.Capturer
	newBoard      func() (pasteboard.Board, error)
	stdin         io.Reader
	stdout        io.Writer
	logger        *slog.Logger
}

// LoadConfig reads the configuration named by args, or the default config
// file when no path is given.
func LoadConfig(args *Args) (*config.ConfigManager, *config.Config, error) {
	var cm *config.ConfigManager
	if args != nil && args.ConfigPath != nil {
		cm = config.NewConfigManagerWithPath(*args.ConfigPath)
	} else {
		var err error
		cm, err = config.NewConfigManager()
		if err != nil {
			return nil, nil, err
		}
	}

	cfg, err := cm.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cm, cfg, nil
}

// LogOptions resolves the log format and level (precedence: flag > config >
// default). Watching logs captures at info; one-shot commands only warn.
func LogOptions(args *Args, cfg *config.Config) (logging.Format, slog.Level) {
	format, level := cfg.LogFormat, cfg.LogLevel
	if args.LogFormat != nil {
		format = *args.LogFormat
	}
	if args.LogLevel != nil {
		level = *args.LogLevel
	}

	fallback := slog.LevelWarn
	if args.Watch != nil {
		fallback = slog.LevelInfo
	}
	return logging.ParseFormat(format), logging.ParseLevel(level, fallback)
}

// New creates a new CLI instance
func New() (*CLI, error) {
	return NewWithArgs(&Args{})
}

// NewWithArgs creates a new CLI instance, honoring the config and history
// location flags in args
func NewWithArgs(args *Args) (*CLI, error) {
	if args == nil {
		args = &Args{}
	}
	cm, cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(args, cm, cfg)
}

// NewWithConfig opens the storage directory and restores history and pinned
// items. The logger must already be configured: the stores capture
// slog.Default() here.
func NewWithConfig(args *Args, cm *config.ConfigManager, cfg *config.Config) (*CLI, error) {
	// Determine history location (precedence: flag > config > default)
	location := cfg.HistoryLocation
	if args != nil && args.History != nil {
		location = *args.History
	}

	dir, err := appdir.NewWithLocation(location)
	if err != nil {
		return nil, err
	}

	defaults, err := dbstore.NewSQLiteStore(dir.Path(appdir.DefaultsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create defaults store: %w", err)
	}

	logger := slog.Default()
	gateway := persist.New(dir, defaults, cfg, persist.WithLogger(logger))
	hist := history.New(cfg, gateway, history.WithLogger(logger))
	pins := pinned.New(cfg, gateway)

	storedHistory, storedPinned := gateway.Load()
	hist.Restore(storedHistory)
	pins.Restore(storedPinned)
	logger.Debug("restored clipboard data",
		"history", hist.Count(), "pinned", pins.Count(), "path", dir.Root())

	return &CLI{
		configManager: cm,
		config:        cfg,
		dir:           dir,
		defaults:      defaults,
		history:       hist,
		pinned:        pins,
		capturer:      capture.New(cfg, hist, capture.WithLogger(logger)),
		newBoard:      systemBoard,
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		logger:        logger,
	}, nil
}

func systemBoard() (pasteboard.Board, error) {
	board, err := sysboard.New()
	if err != nil {
		return nil, err
	}
	return board, nil
}

// Close writes any pending history and releases the defaults database.
func (c *CLI) Close() error {
	c.history.Close()
	return c.defaults.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Watch != nil:
		return c.executeWatch(ctx)
	case args.Add != nil:
		return c.executeAdd(args.Add)
	case args.List != nil:
		return c.executeList(args.List)
	case args.Search != nil:
		return c.executeSearch(args.Search)
	case args.Copy != nil:
		return c.executeCopy(args.Copy)
	case args.Delete != nil:
		return c.executeDelete(args.Delete)
	case args.Clear != nil:
		return c.executeClear(args.Clear)
	case args.Pin != nil:
		return c.executePin(args.Pin)
	case args.Unpin != nil:
		return c.executeUnpin(args.Unpin)
	case args.Pins != nil:
		return c.executePins(args.Pins)
	case args.Title != nil:
		return c.executeTitle(args.Title)
	case args.Move != nil:
		return c.executeMove(args.Move)
	case args.Verify != nil:
		return c.executeVerify()
	case args.Export != nil:
		return c.executeExport(args.Export)
	case args.Import != nil:
		return c.executeImport(args.Import)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	default:
		return c.executeList(&ListCmd{})
	}
}

// resolveHistory looks up a history item by index or by id.
func (c *CLI) resolveHistory(ref string) (*item.Item, error) {
	if index, err := strconv.Atoi(ref); err == nil {
		return c.history.Get(index)
	}
	return c.history.Find(ref)
}

// resolvePinned looks up a pinned item by index or by pinned id.
func (c *CLI) resolvePinned(ref string) (*item.Pinned, error) {
	if index, err := strconv.Atoi(ref); err == nil {
		return c.pinned.Get(index)
	}
	return c.pinned.Find(ref)
}

// confirm asks a yes/no question on stdout and reads the answer from stdin.
func (c *CLI) confirm(prompt string) bool {
	fmt.Fprintf(c.stdout, "%s [y/N]: ", prompt)
	response, _ := bufio.NewReader(c.stdin).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
