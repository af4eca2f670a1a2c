package util

import (
	"fmt"
	"os"
	"scopecore/internal/object"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultHistoryDriver = "sqlite3"
	DefaultHistoryDSN    = "scopecore-history.db"
	DefaultLogLevel      = "error"
)

type History struct {
	Enabled bool   `toml:"enabled"`
	Driver  string `toml:"driver"`
	DSN     string `toml:"dsn"`
}

// Configuration is assembled from build metadata, an optional TOML file and
// command line flags, in that order.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`
	RootPath  string `toml:"-"`
	DebugAST  bool   `toml:"debug_ast"`

	LogLevel  string         `toml:"log_level"`
	LogFile   string         `toml:"log_file"`
	Timeout   time.Duration  `toml:"timeout"`
	History   History        `toml:"history"`
	Constants map[string]any `toml:"constants"`
}

// LoadConfiguration reads path when it is non-empty, then fills defaults and
// validates the result.
func LoadConfiguration(path string) (Configuration, error) {
	var cfg Configuration
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Configuration) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.History.Driver == "" {
		cfg.History.Driver = DefaultHistoryDriver
	}
	if cfg.History.DSN == "" && cfg.History.Driver == DefaultHistoryDriver {
		cfg.History.DSN = DefaultHistoryDSN
	}
}

func (cfg Configuration) Validate() error {
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	_, err := cfg.ConstantObjects()
	return err
}

func validateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error", "none":
		return nil
	}
	return fmt.Errorf("log_level must be one of debug, info, warn, error, none, got %q", level)
}

func validateHistory(h History) error {
	switch h.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("history.driver must be one of sqlite3, mysql, postgres, got %q", h.Driver)
	}
	if h.Enabled && strings.TrimSpace(h.DSN) == "" {
		return fmt.Errorf("history.dsn is required for driver %s", h.Driver)
	}
	return nil
}

// ConstantObjects converts the [constants] table into runtime values.
func (cfg Configuration) ConstantObjects() (map[string]object.Object, error) {
	if len(cfg.Constants) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(cfg.Constants))
	for name := range cfg.Constants {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]object.Object, len(names))
	for _, name := range names {
		obj, err := object.FromNative(cfg.Constants[name])
		if err != nil {
			return nil, fmt.Errorf("constants.%s: %w", name, err)
		}
		out[name] = obj
	}
	return out, nil
}
