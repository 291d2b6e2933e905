package cli

import (
	"fmt"

	"github.com/yiblet/clippocket/internal/item"
)

// Args represents the top-level command structure
type Args struct {
	ConfigPath *string `arg:"--config" help:"Path to config file (default: ~/.config/clippocket/config.yaml)"`
	History    *string `arg:"--history" help:"Directory for history storage (overrides history-location)"`
	LogLevel   *string `arg:"--log-level" help:"Log level: debug, info, warn, error"`
	LogFormat  *string `arg:"--log-format" help:"Log format: auto, text, json"`

	Watch  *WatchCmd  `arg:"subcommand:watch" help:"Watch the clipboard and record every copy"`
	Add    *AddCmd    `arg:"subcommand:add" help:"Add content to the history"`
	List   *ListCmd   `arg:"subcommand:list" help:"List history items, most recent first"`
	Search *SearchCmd `arg:"subcommand:search" help:"Search history or pinned items"`
	Copy   *CopyCmd   `arg:"subcommand:copy" help:"Copy a history item back to the clipboard"`
	Delete *DeleteCmd `arg:"subcommand:delete" help:"Delete a history item"`
	Clear  *ClearCmd  `arg:"subcommand:clear" help:"Clear the history"`
	Pin    *PinCmd    `arg:"subcommand:pin" help:"Pin a history item"`
	Unpin  *UnpinCmd  `arg:"subcommand:unpin" help:"Unpin an item"`
	Pins   *PinsCmd   `arg:"subcommand:pins" help:"List pinned items"`
	Title  *TitleCmd  `arg:"subcommand:title" help:"Set or clear the title of a pinned item"`
	Move   *MoveCmd   `arg:"subcommand:move" help:"Reorder pinned items"`
	Verify *VerifyCmd `arg:"subcommand:verify" help:"Check pinned items for duplicates and corruption"`
	Export *ExportCmd `arg:"subcommand:export" help:"Export history and pinned items as a backup"`
	Import *ImportCmd `arg:"subcommand:import" help:"Replace history and pinned items from a backup"`
	Config *ConfigCmd `arg:"subcommand:config" help:"Manage configuration"`
}

// WatchCmd represents the 'clippocket watch' command
type WatchCmd struct{}

// AddCmd represents the 'clippocket add' command
type AddCmd struct {
	Files  []string `arg:"positional" help:"Files to read from (reads stdin if none)"`
	Image  bool     `arg:"-i,--image" help:"Treat input as image data"`
	Path   bool     `arg:"-p,--path" help:"Store the file references instead of their contents"`
	Source string   `arg:"-s,--source" help:"Source application identifier"`
}

// ListCmd represents the 'clippocket list' command
type ListCmd struct {
	Limit int    `arg:"-n,--limit" help:"Maximum items to show (0 for all)"`
	Type  string `arg:"-t,--type" help:"Only show items of this type"`
}

// SearchCmd represents the 'clippocket search' command
type SearchCmd struct {
	Query  string `arg:"positional,required" help:"Case-insensitive text to look for"`
	Pinned bool   `arg:"-p,--pinned" help:"Search pinned items instead of history"`
}

// CopyCmd represents the 'clippocket copy' command
type CopyCmd struct {
	Ref    string `arg:"positional,required" help:"History index (0=most recent) or item id"`
	Pinned bool   `arg:"-p,--pinned" help:"Resolve the reference against pinned items"`
	Stdout bool   `arg:"-o,--stdout" help:"Write the content to stdout instead of the clipboard"`
}

// DeleteCmd represents the 'clippocket delete' command
type DeleteCmd struct {
	Ref string `arg:"positional,required" help:"History index or item id"`
}

// ClearCmd represents the 'clippocket clear' command
type ClearCmd struct {
	Force  bool `arg:"-f,--force" help:"Skip confirmation prompt"`
	Pinned bool `arg:"-p,--pinned" help:"Also remove all pinned items"`
}

// PinCmd represents the 'clippocket pin' command
type PinCmd struct {
	Ref   string  `arg:"positional,required" help:"History index or item id"`
	Title *string `arg:"-t,--title" help:"Custom title for the pinned item"`
}

// UnpinCmd represents the 'clippocket unpin' command
type UnpinCmd struct {
	Ref string `arg:"positional,required" help:"Pinned index, pinned id or original item id"`
}

// PinsCmd represents the 'clippocket pins' command
type PinsCmd struct {
	Type string `arg:"-t,--type" help:"Only show pinned items of this type"`
}

// TitleCmd represents the 'clippocket title' command
type TitleCmd struct {
	Ref   string  `arg:"positional,required" help:"Pinned index or pinned id"`
	Title *string `arg:"positional" help:"New title (omit to clear)"`
}

// MoveCmd represents the 'clippocket move' command
type MoveCmd struct {
	From int  `arg:"positional,required" help:"Current pinned index"`
	To   *int `arg:"positional" help:"Destination pinned index (default: top)"`
}

// VerifyCmd represents the 'clippocket verify' command
type VerifyCmd struct{}

// ExportCmd represents the 'clippocket export' command
type ExportCmd struct {
	File *string `arg:"positional" help:"Output file (stdout if omitted)"`
}

// ImportCmd represents the 'clippocket import' command
type ImportCmd struct {
	File  *string `arg:"positional" help:"Backup file (stdin if omitted)"`
	Force bool    `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// ConfigCmd represents the 'clippocket config' command with subcommands
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration values"`
}

// ConfigGetCmd represents the 'clippocket config get' command
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

// ConfigSetCmd represents the 'clippocket config set' command
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

// ConfigListCmd represents the 'clippocket config list' command
type ConfigListCmd struct{}

// validConfigKeys are the keys accepted by 'config get' and 'config set'
var validConfigKeys = map[string]bool{
	"remember-history":     true,
	"max-history-items":    true,
	"enable-history-limit": true,
	"max-pinned":           true,
	"incognito":            true,
	"excluded-apps":        true,
	"history-location":     true,
	"log-level":            true,
	"log-format":           true,
}

// Description returns the program description
func (Args) Description() string {
	return "clippocket - clipboard history with pinned items"
}

// Version returns the program version
func (Args) Version() string {
	return "clippocket 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  clippocket watch                   # Record clipboard changes until interrupted
  echo "hello" | clippocket add      # Add from stdin
  clippocket list -n 10              # Show the ten most recent items
  clippocket copy 2                  # Put the third item back on the clipboard
  clippocket pin 0 -t "greeting"     # Pin the most recent item
  clippocket move 3                  # Move pinned item 3 to the top
  clippocket export backup.json      # Write a backup
  clippocket config set incognito true

For more information, visit: https://github.com/yiblet/clippocket`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.Add != nil:
		return args.Add.Validate()
	case args.List != nil:
		return args.List.Validate()
	case args.Move != nil:
		return args.Move.Validate()
	case args.Pins != nil:
		return validateType(args.Pins.Type)
	case args.Config != nil:
		return args.Config.Validate()
	}
	return nil
}

// Validate validates add command arguments
func (a *AddCmd) Validate() error {
	if a.Image && a.Path {
		return fmt.Errorf("cannot specify both --image and --path")
	}
	if a.Path && len(a.Files) == 0 {
		return fmt.Errorf("--path requires at least one file")
	}
	return nil
}

// Validate validates list command arguments
func (l *ListCmd) Validate() error {
	if l.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	return validateType(l.Type)
}

// Validate validates move command arguments
func (m *MoveCmd) Validate() error {
	if m.From < 0 || (m.To != nil && *m.To < 0) {
		return fmt.Errorf("index must be non-negative")
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	subcommands := 0
	if c.Get != nil {
		subcommands++
		if !validConfigKeys[c.Get.Key] {
			return fmt.Errorf("invalid config key: %s", c.Get.Key)
		}
	}
	if c.Set != nil {
		subcommands++
		if !validConfigKeys[c.Set.Key] {
			return fmt.Errorf("invalid config key: %s", c.Set.Key)
		}
	}
	if c.List != nil {
		subcommands++
	}

	if subcommands == 0 {
		return fmt.Errorf("config command requires a subcommand (get, set, or list)")
	}
	if subcommands > 1 {
		return fmt.Errorf("config command accepts only one subcommand")
	}
	return nil
}

func validateType(name string) error {
	if name == "" {
		return nil
	}
	_, err := item.ParseType(name)
	return err
}
