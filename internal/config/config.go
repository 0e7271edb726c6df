// Package config provides configuration types and defaults for mirrorkit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/mirrorkit/internal/domain/feature"
	"github.com/zjrosen/mirrorkit/internal/domain/option"
	"github.com/zjrosen/mirrorkit/internal/log"
	"github.com/zjrosen/mirrorkit/internal/tracing"
)

// Asset sources.
const (
	SourceFS     = "fs"
	SourceSQLite = "sqlite"
)

// Config holds all configuration options for mirrorkit.
type Config struct {
	Assets  AssetsConfig    `mapstructure:"assets"`
	Catalog CatalogConfig   `mapstructure:"catalog"`
	Cache   CacheConfig     `mapstructure:"cache"`
	Editor  EditorConfig    `mapstructure:"editor"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	Serve   ServeConfig     `mapstructure:"serve"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// AssetsConfig selects where resource payloads are read from.
type AssetsConfig struct {
	Source string `mapstructure:"source"`  // "fs" (default) or "sqlite"
	Dir    string `mapstructure:"dir"`     // CodeMirror distribution root for the fs source
	DBPath string `mapstructure:"db_path"` // payload database for the sqlite source
}

// CatalogConfig locates the user catalog.
type CatalogConfig struct {
	// UserDir contains a catalog/ directory of *.yaml files merged over the
	// built-in catalog when the user-catalog flag is on.
	UserDir string `mapstructure:"user_dir"`
}

// CacheConfig tunes the payload cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// EditorConfig describes the editor every served page is prepared for.
type EditorConfig struct {
	Features       []string `mapstructure:"features"` // always activated
	Theme          string   `mapstructure:"theme"`
	KeyMap         string   `mapstructure:"keymap"`
	Mode           string   `mapstructure:"mode"`
	InputStyle     string   `mapstructure:"input_style"`
	ScrollbarStyle string   `mapstructure:"scrollbar_style"`
	ReadOnly       string   `mapstructure:"read_only"`
	Direction      string   `mapstructure:"direction"`
	LineSeparator  string   `mapstructure:"line_separator"`
	AddOns         []string `mapstructure:"addons"` // add-on options switched on, e.g. matchBrackets
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr  string `mapstructure:"addr"`
	Watch bool   `mapstructure:"watch"`
}

// Options parses the editor settings into typed option values.
func (e EditorConfig) Options() (option.EditorOptions, error) {
	var opts option.EditorOptions
	var err error

	if opts.InputStyle, err = option.ParseInputStyle(e.InputStyle); err != nil {
		return opts, err
	}
	if opts.ReadOnly, err = option.ParseReadOnly(e.ReadOnly); err != nil {
		return opts, err
	}
	if opts.Direction, err = option.ParseDirection(e.Direction); err != nil {
		return opts, err
	}
	if opts.ScrollbarStyle, err = option.ParseScrollbarStyle(e.ScrollbarStyle); err != nil {
		return opts, err
	}
	if opts.LineSeparator, err = option.ParseLineSeparator(e.LineSeparator); err != nil {
		return opts, err
	}
	for _, name := range e.AddOns {
		addOn, err := option.ParseAddOnOption(name)
		if err != nil {
			return opts, err
		}
		opts.AddOns = append(opts.AddOns, addOn)
	}

	opts.Theme = e.Theme
	if opts.Theme == "" {
		opts.Theme = "default"
	}
	opts.KeyMap = e.KeyMap
	if opts.KeyMap == "" {
		opts.KeyMap = "default"
	}
	opts.Mode = e.Mode
	return opts, nil
}

// DefaultBaseDir returns ~/.mirrorkit, or "" if home is unavailable.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mirrorkit")
}

// DefaultDBPath returns ~/.mirrorkit/payloads.db.
func DefaultDBPath() string {
	base := DefaultBaseDir()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "payloads.db")
}

// DefaultTracesFilePath returns ~/.config/mirrorkit/traces/traces.jsonl.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mirrorkit", "traces", "traces.jsonl")
}

// ValidateAssets checks the asset source settings.
func ValidateAssets(a AssetsConfig) error {
	switch a.Source {
	case "", SourceFS:
		if a.Dir == "" {
			return errors.New("assets.dir is required for the fs source")
		}
	case SourceSQLite:
		if a.DBPath == "" {
			return errors.New("assets.db_path is required for the sqlite source")
		}
	default:
		return fmt.Errorf("assets.source must be %q or %q, got %q", SourceFS, SourceSQLite, a.Source)
	}
	return nil
}

// ValidateCache checks the cache settings. Zero uses the default TTL.
func ValidateCache(c CacheConfig) error {
	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.TTL)
	}
	return nil
}

// ValidateEditor checks that every editor value parses and every named
// feature is a valid feature name. Whether the features exist is only known
// once the catalog is built.
func ValidateEditor(e EditorConfig) error {
	if _, err := e.Options(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	for _, name := range e.Features {
		if err := feature.ValidateName(name); err != nil {
			return fmt.Errorf("editor.features: %w", err)
		}
	}
	for key, name := range map[string]string{"theme": e.Theme, "keymap": e.KeyMap, "mode": e.Mode} {
		if name == "" || name == "default" {
			continue
		}
		if err := feature.ValidateName(name); err != nil {
			return fmt.Errorf("editor.%s: %w", key, err)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	return t.Validate()
}

// ValidateServe checks the server settings.
func ValidateServe(s ServeConfig) error {
	if s.Addr == "" {
		return errors.New("serve.addr is required")
	}
	return nil
}

// Validate runs every section validator.
func Validate(c Config) error {
	for _, err := range []error{
		ValidateAssets(c.Assets),
		ValidateCache(c.Cache),
		ValidateEditor(c.Editor),
		ValidateTracing(c.Tracing),
		ValidateServe(c.Serve),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	traces := tracing.DefaultConfig()
	traces.FilePath = DefaultTracesFilePath()

	return Config{
		Assets: AssetsConfig{
			Source: SourceFS,
			Dir:    filepath.Join("node_modules", "codemirror"),
			DBPath: DefaultDBPath(),
		},
		Catalog: CatalogConfig{
			UserDir: DefaultBaseDir(),
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Editor: EditorConfig{
			Features:       []string{},
			Theme:          "default",
			KeyMap:         "default",
			InputStyle:     string(option.InputStyleTextarea),
			ScrollbarStyle: string(option.ScrollbarNative),
			ReadOnly:       string(option.ReadOnlyFalse),
			Direction:      string(option.DirectionLTR),
			LineSeparator:  string(option.LineSeparatorAny),
		},
		Tracing: traces,
		Serve: ServeConfig{
			Addr:  "127.0.0.1:8088",
			Watch: false,
		},
		Flags: map[string]bool{},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# mirrorkit configuration

# Where resource payloads come from
assets:
  source: fs                    # fs (read a CodeMirror distribution) or sqlite (imported payloads)
  dir: node_modules/codemirror  # distribution root for the fs source
  # db_path: ~/.mirrorkit/payloads.db  # payload database for the sqlite source (see bundle:import)

# User catalog: <user_dir>/catalog/*.yaml is merged over the built-in catalog
# when the user-catalog flag is on. Entries with a built-in name replace it.
# catalog:
#   user_dir: ~/.mirrorkit

# Payload cache (used when the payload-cache flag is on)
cache:
  ttl: 10m

# The editor every page is prepared for. Features named here, plus those the
# options below need, are activated on every served page.
editor:
  features: []
  theme: default            # a theme feature, e.g. monokai
  keymap: default           # default, vim, emacs or sublime
  # mode: javascript        # a mode feature
  input_style: textarea     # textarea or contenteditable
  scrollbar_style: native   # native, null, simple or overlay
  read_only: "false"        # "false", "true" or nocursor
  direction: ltr            # ltr or rtl
  line_separator: "null"    # "null" (any), \n, \r\n or \r
  # addons:                 # add-on options switched on
  #   - matchBrackets
  #   - styleActiveLine

# Tracing
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/mirrorkit/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

serve:
  addr: 127.0.0.1:8088
  watch: false              # reload catalog and payloads when files change

# Feature flags
# flags:
#   user-catalog: true
#   payload-cache: true
#   strict-options: false
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
