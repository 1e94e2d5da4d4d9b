// Package config loads nest.toml configuration files.
//
// Configuration is optional: every field has a default, a missing file
// at the default location is not an error, and command line flags
// override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/4TheSolutions/nest/pkg/storage"
)

// Config is the full nest.toml document.
type Config struct {
	Storage storage.Config `toml:"storage"`
	Server  Server         `toml:"server"`
	Render  Render         `toml:"render"`
}

// Server configures the nest serve command.
type Server struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
}

// Render configures export defaults.
type Render struct {
	// Style selects the default layout: "nested" draws the containment
	// circles as edited, "tree" draws a graphviz node-link diagram.
	Style string `toml:"style"`

	// Scale multiplies raster output dimensions.
	Scale float64 `toml:"scale"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Storage: storage.Config{Backend: "file"},
		Server:  Server{Addr: "localhost:8420"},
		Render:  Render{Style: "nested", Scale: 1.0},
	}
}

// DefaultPath returns the conventional config file location,
// ~/.config/nest/nest.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "nest", "nest.toml"), nil
}

// Load reads the config file at path. An empty path means the default
// location, where a missing file yields [Default]. An explicit path
// that does not exist is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Storage.Backend {
	case "", "file", "memory", "redis", "mongo":
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	switch cfg.Render.Style {
	case "", "nested", "tree":
	default:
		return fmt.Errorf("unknown render style %q", cfg.Render.Style)
	}
	if cfg.Render.Scale <= 0 {
		return fmt.Errorf("render scale must be positive, got %g", cfg.Render.Scale)
	}
	return nil
}
