// Package config loads the optional TOML configuration file for the
// vortexd binary. The ingest core itself takes no process inputs beyond
// the shared region and the listening socket; this package exists purely
// so the binary that wires the core together is configurable without
// recompiling.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/ingest"
)

// Config mirrors vortexd's config.toml. Every field has a corresponding CLI
// flag, which takes precedence when set.
type Config struct {
	Listen         string `toml:"listen,omitempty"`
	SharedMemName  string `toml:"shm_name,omitempty"`
	StatusInterval int    `toml:"status_interval,omitempty"`
}

// Default returns the built-in defaults used when no config file is
// present and no flags override them.
func Default() Config {
	return Config{
		Listen:         ingest.DefaultAddr,
		SharedMemName:  "vortex_double_buffer",
		StatusInterval: 100,
	}
}

// Load reads path and overlays it onto Default(). A missing file is not an
// error: it simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
