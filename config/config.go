// Package config loads eztranslate's config.yaml.
//
// Values are layered: built-in defaults, then the YAML file, then
// EZTRANSLATE_* environment variables. A missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level config.yaml structure.
type File struct {
	// DataDir holds the Local tier settings file. Empty means the XDG data dir.
	DataDir string `yaml:"data_dir,omitempty"`
	// Sync configures the Synchronized tier. Unset Addr disables it.
	Sync Sync `yaml:"sync,omitempty"`
	Log  Log  `yaml:"log,omitempty"`
	HTTP HTTP `yaml:"http,omitempty"`
	// Prompt is a custom prompt template using {{targetLang}},
	// {{secondTargetLang}} and {{text}}.
	Prompt string `yaml:"prompt,omitempty"`
	// Language is the UI locale, e.g. "zh_CN". Empty detects it from the
	// environment.
	Language string `yaml:"language,omitempty"`
}

// Sync points at the Redis server backing the Synchronized tier.
type Sync struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Key      string `yaml:"key,omitempty"`
}

// Enabled reports whether a sync server is configured.
func (s Sync) Enabled() bool {
	return strings.TrimSpace(s.Addr) != ""
}

// Log selects the zap level ("debug", "info", "warn", "error") and
// encoding ("console" or "json").
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// HTTP configures outbound provider requests.
type HTTP struct {
	Proxy string `yaml:"proxy,omitempty"`
	// Timeout bounds a whole provider call; 0 means none.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Default returns the built-in configuration.
func Default() *File {
	return &File{
		Log: Log{Level: "warn", Format: "console"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the config file name inside the config directory.
const FileName = "config.yaml"

const envPrefix = "EZTRANSLATE_"

// DefaultPath returns $XDG_CONFIG_HOME/eztranslate/config.yaml
// (falling back to ~/.config).
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "eztranslate", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "eztranslate", FileName), nil
}

// Load reads path (DefaultPath when empty) and applies environment
// overrides.
func Load(path string) (*File, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (f *File) applyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	str("DATA_DIR", &f.DataDir)
	str("SYNC_ADDR", &f.Sync.Addr)
	str("SYNC_PASSWORD", &f.Sync.Password)
	str("LOG_LEVEL", &f.Log.Level)
	str("LOG_FORMAT", &f.Log.Format)
	str("PROXY", &f.HTTP.Proxy)
	str("LANG", &f.Language)

	if v, ok := os.LookupEnv(envPrefix + "SYNC_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSYNC_DB: %w", envPrefix, err)
		}
		f.Sync.DB = db
	}
	return nil
}

// Validate checks enumerated fields.
func (f *File) Validate() error {
	switch strings.ToLower(f.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", f.Log.Level)
	}
	switch strings.ToLower(f.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format %q: must be console or json", f.Log.Format)
	}
	if f.Sync.DB < 0 {
		return fmt.Errorf("sync.db %d: must not be negative", f.Sync.DB)
	}
	if f.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout %s: must not be negative", f.HTTP.Timeout)
	}
	return nil
}
