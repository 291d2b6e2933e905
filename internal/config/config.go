package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// HardMaxHistoryItems is the absolute history ceiling, applied whatever
	// the user configured.
	HardMaxHistoryItems = 500

	// DefaultMaxPinnedItems is the default pinned ceiling.
	DefaultMaxPinnedItems = 50

	// MaxHistoryFileBytes is the largest history file that will be loaded.
	MaxHistoryFileBytes = 250 << 20
)

// Settings is the configuration read by the stores and the persistence
// gateway at call time.
type Settings interface {
	// RememberHistory reports whether history is persisted at all.
	RememberHistory() bool
	// MaxHistoryItems is the user's configured history size.
	MaxHistoryItems() int
	// HistoryLimitEnabled reports whether MaxHistoryItems applies.
	HistoryLimitEnabled() bool
	// MaxPinnedItems is the pinned ceiling.
	MaxPinnedItems() int
}

// HistoryCap returns the effective history cap: the configured maximum when
// the limit is enabled, clamped to the hard ceiling, otherwise the hard
// ceiling itself.
func HistoryCap(s Settings) int {
	if !s.HistoryLimitEnabled() {
		return HardMaxHistoryItems
	}
	n := s.MaxHistoryItems()
	if n <= 0 || n > HardMaxHistoryItems {
		return HardMaxHistoryItems
	}
	return n
}

// PinnedCap returns the effective pinned cap.
func PinnedCap(s Settings) int {
	if n := s.MaxPinnedItems(); n > 0 {
		return n
	}
	return DefaultMaxPinnedItems
}

// DefaultExcludedApps are password managers whose clipboard writes are never
// captured unless the user changes the list.
var DefaultExcludedApps = []string{
	"com.agilebits.onepassword7",
	"com.lastpass.LastPass",
	"com.dashlane.dashlanephonefinal",
	"com.bitwarden.desktop",
	"com.apple.keychainaccess",
}

// Config represents the clippocket configuration
type Config struct {
	Remember        bool     `yaml:"remember_history"`
	HistoryLimit    int      `yaml:"max_history_items"`
	LimitHistory    bool     `yaml:"enable_history_limit"`
	PinnedLimit     int      `yaml:"max_pinned"`
	ExcludedApps    []string `yaml:"excluded_apps"`
	Incognito       bool     `yaml:"incognito"`
	HistoryLocation string   `yaml:"history_location,omitempty"`
	LogLevel        string   `yaml:"log_level,omitempty"`
	LogFormat       string   `yaml:"log_format,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Remember:     true,
		HistoryLimit: 100,
		LimitHistory: false,
		PinnedLimit:  DefaultMaxPinnedItems,
		ExcludedApps: slices.Clone(DefaultExcludedApps),
	}
}

func (c *Config) RememberHistory() bool     { return c.Remember }
func (c *Config) MaxHistoryItems() int      { return c.HistoryLimit }
func (c *Config) HistoryLimitEnabled() bool { return c.LimitHistory }
func (c *Config) MaxPinnedItems() int       { return c.PinnedLimit }

// IsAppExcluded reports whether captures from bundleID are ignored.
func (c *Config) IsAppExcluded(bundleID string) bool {
	if bundleID == "" {
		return false
	}
	return slices.Contains(c.ExcludedApps, bundleID)
}

// IsIncognito reports whether capturing is paused.
func (c *Config) IsIncognito() bool {
	return c.Incognito
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a config manager for ~/.config/clippocket/config.yaml
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "clippocket", "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys missing from the file keep their defaults
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cm.validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validate checks value ranges
func (cm *ConfigManager) validate(config *Config) error {
	if config.HistoryLimit <= 0 {
		return fmt.Errorf("max_history_items must be greater than 0")
	}

	if config.HistoryLimit > HardMaxHistoryItems {
		return fmt.Errorf("max_history_items cannot exceed %d items", HardMaxHistoryItems)
	}

	if config.PinnedLimit <= 0 {
		return fmt.Errorf("max_pinned must be greater than 0")
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "remember-history":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		config.Remember = b
	case "max-history-items":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for max-history-items: %s", value)
		}
		config.HistoryLimit = n
	case "enable-history-limit":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		config.LimitHistory = b
	case "max-pinned":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for max-pinned: %s", value)
		}
		config.PinnedLimit = n
	case "incognito":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		config.Incognito = b
	case "excluded-apps":
		config.ExcludedApps = splitList(value)
	case "history-location":
		config.HistoryLocation = value
	case "log-level":
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("invalid log-level: %s (must be debug, info, warn or error)", value)
		}
		config.LogLevel = value
	case "log-format":
		if !slices.Contains(logFormats, value) {
			return fmt.Errorf("invalid log-format: %s (must be auto, text or json)", value)
		}
		config.LogFormat = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	values, err := cm.List()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	result := map[string]string{
		"remember-history":     strconv.FormatBool(config.Remember),
		"max-history-items":    strconv.Itoa(config.HistoryLimit),
		"enable-history-limit": strconv.FormatBool(config.LimitHistory),
		"max-pinned":           strconv.Itoa(config.PinnedLimit),
		"incognito":            strconv.FormatBool(config.Incognito),
		"excluded-apps":        strings.Join(config.ExcludedApps, ","),
		"history-location":     config.HistoryLocation,
		"log-level":            config.LogLevel,
		"log-format":           config.LogFormat,
	}

	if result["history-location"] == "" {
		result["history-location"] = "[default]"
	}

	return result, nil
}

var logFormats = []string{"auto", "text", "json"}

func parseBool(key, value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value for %s: %s (must be 'true' or 'false')", key, value)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
