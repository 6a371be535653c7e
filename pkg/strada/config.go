package strada

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/BrandonKowalski/strada/pkg/strada/internal"
)

// Config is the on-disk router configuration.
//
// Example:
//
//	stack_size = 16
//	log_level = "debug"
//
//	[routes]
//	"/" = "home"
//	"/settings" = "settings"
//
// The [routes] table maps URLs to named string routes behind an exact-match
// lookup; applications that need pattern matching supply their own
// URLMapperFunc instead.
type Config struct {
	StackSize int               `toml:"stack_size"`
	LogLevel  string            `toml:"log_level"`
	Routes    map[string]string `toml:"routes"`
}

// LoadConfig reads a TOML router configuration from path and applies
// defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes a TOML router configuration and applies defaults.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.StackSize == 0 {
		cfg.StackSize = DefaultStackSize
	}
	if cfg.StackSize < 0 {
		return Config{}, fmt.Errorf("stack_size must be positive, got %d", cfg.StackSize)
	}
	return cfg, nil
}

// Options converts the configuration into router options. A non-empty
// log_level also adjusts the shared navigation logger.
func (c Config) Options() []Option {
	if c.LogLevel != "" {
		internal.SetRawLogLevel(c.LogLevel)
	}
	opts := []Option{WithStackSize(c.StackSize)}
	if len(c.Routes) > 0 {
		table := make(map[string]Route, len(c.Routes))
		for url, name := range c.Routes {
			table[url] = name
		}
		opts = append(opts, WithURLMapper(TableMapper(table)))
	}
	return opts
}

// NewFromConfig builds a Router from a TOML configuration file. Options
// passed here are applied after the configuration's own, so callers can
// override it.
func NewFromConfig(path string, opts ...Option) (*Router, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(append(cfg.Options(), opts...)...), nil
}

// TableMapper builds a URLMapperFunc from an exact-match lookup table.
func TableMapper(table map[string]Route) URLMapperFunc {
	return func(url string) Route {
		if route, ok := table[url]; ok {
			return route
		}
		return nil
	}
}
