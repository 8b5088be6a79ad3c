// Package config loads CLI configuration from file, environment and flags.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all CLI configuration options.
type Config struct {
	Format      string `koanf:"format"`
	Workers     int    `koanf:"workers"`
	HistoryFile string `koanf:"history_file"`
	Verbose     bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultFormat      = "table"
	DefaultWorkers     = 4
	DefaultHistoryFile = ".windql_history"
)

var configFileUsed string

// findConfigFile finds the config file to use.
// Priority: explicit path > windql.yaml > windql.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"windql.yaml", "windql.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":       DefaultFormat,
		"workers":      DefaultWorkers,
		"history_file": DefaultHistoryFile,
		"verbose":      false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// WINDQL_HISTORY_FILE -> history_file
	if err := k.Load(env.Provider("WINDQL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "WINDQL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	return &cfg, nil
}

// FileUsed returns the path to the config file being used, if any.
func FileUsed() string {
	return configFileUsed
}

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the config in the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the command context.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Format:      DefaultFormat,
		Workers:     DefaultWorkers,
		HistoryFile: DefaultHistoryFile,
	}
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger retrieves the logger from the command context.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
