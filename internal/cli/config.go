package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given. A missing default file is not an error.
const defaultConfigFile = "driftview.toml"

// Config holds CLI-wide defaults, overridable per command via flags.
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Zoom   ZoomConfig   `toml:"zoom"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// CanvasConfig sets the logical canvas dimensions used for policy checks
// and screen-position queries.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// ZoomConfig sets the per-keystroke zoom factor for the explore TUI.
type ZoomConfig struct {
	Step float64 `toml:"step"`
	Pan  float64 `toml:"pan"`
}

// ServerConfig sets the serve command defaults.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects the view bookmark backend.
// Backend is one of "memory", "file", "redis", or "mongo".
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`      // file backend
	Addr     string `toml:"addr"`     // redis backend
	Password string `toml:"password"` // redis backend
	DB       int    `toml:"db"`       // redis backend
	URI      string `toml:"uri"`      // mongo backend
	Database string `toml:"database"` // mongo backend
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		Canvas: CanvasConfig{Width: 800, Height: 600},
		Zoom:   ZoomConfig{Step: 1.2, Pan: 20},
		Server: ServerConfig{Addr: ":8433"},
		Store:  StoreConfig{Backend: "memory"},
	}
}

// loadConfig reads the config file at path, or defaultConfigFile when path
// is empty. Values present in the file override the built-in defaults; a
// missing default file is ignored, a missing explicit file is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// configKey is the context key for storing the loaded config.
const configKey ctxKey = 1

// withConfig returns a new context with the given config attached.
func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the config from ctx, falling back to the
// built-in defaults when none was attached.
func configFromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey).(Config); ok {
		return cfg
	}
	return defaultConfig()
}
