// Package config loads client settings from defaults, an optional file and
// SECMENTOR_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/abhisek/secmentor/internal/api"
	"github.com/abhisek/secmentor/internal/notify"
	"github.com/abhisek/secmentor/internal/progression"
)

// EnvPrefix prefixes every environment override, e.g. SECMENTOR_SERVER_BASE_URL.
const EnvPrefix = "SECMENTOR"

// Config holds all client configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Notify NotifyConfig `mapstructure:"notify"`
	Ranks  RanksConfig  `mapstructure:"ranks"`
	UI     UIConfig     `mapstructure:"ui"`
}

// ServerConfig locates the chat backend.
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig locates the local database. Empty means the default path.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the diagnostic log file. Empty Path means the default.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// NotifyConfig tunes the XP overlay.
type NotifyConfig struct {
	XPDuration time.Duration `mapstructure:"xp_duration"`
}

// RanksConfig mirrors the server's rank thresholds, keyed by rank number.
type RanksConfig struct {
	Thresholds map[string]int `mapstructure:"thresholds"`
}

// UIConfig tunes the terminal rendering.
type UIConfig struct {
	// MarkdownStyle is a glamour standard style name or "auto".
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	thresholds := make(map[string]int)
	for rank, xp := range progression.DefaultThresholds() {
		thresholds[strconv.Itoa(rank)] = xp
	}
	return Config{
		Server: ServerConfig{BaseURL: api.DefaultBaseURL},
		Log:    LogConfig{Level: "info"},
		Notify: NotifyConfig{XPDuration: notify.DefaultDelay},
		Ranks:  RanksConfig{Thresholds: thresholds},
		UI:     UIConfig{MarkdownStyle: styles.DarkStyle},
	}
}

// Load builds a Config from defaults, the file at path (optional; empty
// path means no file) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	v := viper.New()

	m := make(map[string]any)
	if err := mapstructure.Decode(cfg, &m); err != nil {
		return cfg, fmt.Errorf("mapstructure: %v", err)
	}
	if err := v.MergeConfigMap(m); err != nil {
		return cfg, fmt.Errorf("merge config map: %v", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return cfg, fmt.Errorf("read config from file %s: %v", path, err)
		}
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %v", err)
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/secmentor/config.yaml when that file
// exists, or "".
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "secmentor", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// ThresholdTable converts the configured thresholds. Keys that are not rank
// numbers are skipped.
func (c Config) ThresholdTable() progression.ThresholdTable {
	table := make(progression.ThresholdTable, len(c.Ranks.Thresholds))
	for k, xp := range c.Ranks.Thresholds {
		rank, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		table[rank] = xp
	}
	return table
}

// Validate checks the settings the client cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if c.Notify.XPDuration <= 0 {
		return fmt.Errorf("notify.xp_duration must be positive, got %s", c.Notify.XPDuration)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, ok := styles.DefaultStyles[c.UI.MarkdownStyle]; !ok && c.UI.MarkdownStyle != styles.AutoStyle {
		return fmt.Errorf("ui.markdown_style: unknown style %q", c.UI.MarkdownStyle)
	}
	return c.validateThresholds()
}

// validateThresholds requires a rank 1 entry and thresholds that never
// decrease as the rank goes up.
func (c Config) validateThresholds() error {
	table := c.ThresholdTable()
	if _, ok := table[1]; !ok {
		return fmt.Errorf("ranks.thresholds: rank 1 is required")
	}
	ranks := table.Ranks()
	for i := 1; i < len(ranks); i++ {
		lo, hi := ranks[i-1], ranks[i]
		if table[hi] < table[lo] {
			return fmt.Errorf("ranks.thresholds: rank %d (%d XP) is below rank %d (%d XP)", hi, table[hi], lo, table[lo])
		}
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return lvl, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
