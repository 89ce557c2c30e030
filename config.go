package libvisio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// RenderConfig controls how Parser output is rendered, shared by both
// single-file and watch-mode CLI invocations.
type RenderConfig struct {
	Scale     float64 `toml:"scale"`
	Format    string  `toml:"format"`    // "svg" or "pdf"
	Vectorize bool    `toml:"vectorize"` // re-trace foreign raster objects instead of embedding them (SVG output only)
}

// WatchConfig names the directories a `vsd2svg --watch` daemon should
// follow: one or more source directories, an output directory, and a
// poll fallback interval for filesystems where fsnotify events are
// unreliable.
type WatchConfig struct {
	Directories  []string `toml:"directories"`
	Output       string   `toml:"output"`
	PollInterval int      `toml:"poll_interval"` // seconds, 0 = default (5s)
}

func (w WatchConfig) PollDuration() time.Duration {
	if w.PollInterval > 0 {
		return time.Duration(w.PollInterval) * time.Second
	}
	return 5 * time.Second
}

// Config is the top-level TOML document read by cmd/vsd2svg.
type Config struct {
	Render RenderConfig `toml:"render"`
	Watch  WatchConfig  `toml:"watch"`
}

func defaultConfig() *Config {
	return &Config{
		Render: RenderConfig{Scale: 1.0, Format: "svg"},
	}
}

// LoadConfig reads a TOML config file at path, falling back to
// defaultConfig when the file does not exist. Any other read/parse
// error is returned to the caller.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Render.Scale == 0 {
		cfg.Render.Scale = 1.0
	}
	if cfg.Render.Format == "" {
		cfg.Render.Format = "svg"
	}
	return cfg, nil
}
