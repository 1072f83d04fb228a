// Package config loads runtime settings: built-in defaults, then an
// optional TOML or YAML file, then SCENEKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCENEKIT_"

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Log    LogConfig    `koanf:"log"`
	Save   SaveConfig   `koanf:"save"`
	Assets AssetsConfig `koanf:"assets"`
	Loop   LoopConfig   `koanf:"loop"`
	Events EventsConfig `koanf:"events"`
}

type LogConfig struct {
	Verbosity int    `koanf:"verbosity"`
	File      string `koanf:"file"`
}

type SaveConfig struct {
	Dir        string `koanf:"dir"`
	Slot       int    `koanf:"slot"`
	Codec      string `koanf:"codec"`
	Backend    string `koanf:"backend"`
	SQLitePath string `koanf:"sqlite_path"`
}

type AssetsConfig struct {
	Manifest string `koanf:"manifest"`
}

type LoopConfig struct {
	TickRate float64 `koanf:"tick_rate"`
	// MaxFrame caps the time one host frame may feed into the accumulator.
	MaxFrame time.Duration `koanf:"max_frame"`
}

type EventsConfig struct {
	MatchMode string `koanf:"match_mode"`
}

func defaults() map[string]interface{} {
	dataDir := filepath.Join(xdg.DataHome, "scenekit")
	return map[string]interface{}{
		"log.verbosity":     0,
		"log.file":          "",
		"save.dir":          filepath.Join(dataDir, "saves"),
		"save.slot":         0,
		"save.codec":        "json",
		"save.backend":      BackendFile,
		"save.sqlite_path":  filepath.Join(dataDir, "saves.db"),
		"assets.manifest":   "assets.yaml",
		"loop.tick_rate":    20.0,
		"loop.max_frame":    "250ms",
		"events.match_mode": "tag",
	}
}

// Default returns the configuration with nothing overridden
func Default() *Config {
	cfg, err := load(koanf.New("."))
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load builds the configuration. path may be empty; otherwise it must
// name an existing .toml, .yaml or .yml file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// SCENEKIT_SAVE_SQLITE_PATH -> save.sqlite_path
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	return unmarshal(k)
}

func load(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

// Validate rejects values the runtime cannot work with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Save.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("save.backend: unknown backend %q", c.Save.Backend))
	}
	switch c.Save.Codec {
	case "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("save.codec: unknown codec %q", c.Save.Codec))
	}
	if c.Loop.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("loop.tick_rate: must be positive, got %v", c.Loop.TickRate))
	}
	if c.Loop.MaxFrame <= 0 {
		errs = append(errs, fmt.Errorf("loop.max_frame: must be positive, got %v", c.Loop.MaxFrame))
	}
	switch c.Events.MatchMode {
	case "tag", "origin-name":
	default:
		errs = append(errs, fmt.Errorf("events.match_mode: unknown mode %q", c.Events.MatchMode))
	}
	return errors.Join(errs...)
}
