package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/meadori/dualscreen/hittest"
	"github.com/meadori/dualscreen/logging"
)

const defaultServerAddr = ":50051"

var defaultButtons = []string{"Swap"}

// Config represents ~/.dualscreen/config.toml.
type Config struct {
	AssetDir      string   `toml:"asset_dir"`
	DualScreen    *bool    `toml:"dual_screen"`
	HoldFrames    int      `toml:"hold_frames"`
	Buttons       []string `toml:"buttons"`
	ScreenshotDir string   `toml:"screenshot_dir"`

	Server ServerConfig   `toml:"server"`
	Log    logging.Config `toml:"log"`
}

// ServerConfig configures the remote control service.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	on := true
	return Config{
		DualScreen: &on,
		HoldFrames: hittest.DefaultHoldFrames,
		Buttons:    append([]string(nil), defaultButtons...),
		Server: ServerConfig{
			Addr: defaultServerAddr,
		},
	}
}

// DualScreenEnabled reports the dual_screen setting, defaulting to on.
func (c Config) DualScreenEnabled() bool {
	return c.DualScreen == nil || *c.DualScreen
}

// DefaultPath returns the default config path (~/.dualscreen/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dualscreen", "config.toml"), nil
}

// Loader caches config values and reloads when the file changes.
type Loader struct {
	path     string
	lastRead fileState
	cached   Config
}

type fileState struct {
	modTime time.Time
	size    int64
}

// NewLoader creates a config loader for the provided path.
func NewLoader(path string) *Loader {
	return &Loader{
		path:   strings.TrimSpace(path),
		cached: Defaults(),
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load returns the cached config, reloading if the file changed. A missing
// file yields the defaults.
func (l *Loader) Load() (Config, error) {
	if l == nil {
		return Defaults(), errors.New("nil loader")
	}
	if l.path == "" {
		return Defaults(), errors.New("empty config path")
	}
	info, err := os.Stat(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.cached = Defaults()
			l.lastRead = fileState{}
			return l.cached, nil
		}
		return Defaults(), err
	}
	state := fileState{modTime: info.ModTime(), size: info.Size()}
	if state == l.lastRead {
		return l.cached, nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return Defaults(), err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Defaults(), fmt.Errorf("config %s: %w", l.path, err)
	}
	l.cached = cfg
	l.lastRead = state
	return cfg, nil
}

// Parse decodes a TOML document over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), err
	}
	applyDefaults(&cfg)
	if _, err := cfg.Log.Normalize(); err != nil {
		return Defaults(), err
	}
	return cfg, nil
}

// Marshal encodes cfg as TOML.
func Marshal(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.HoldFrames <= 0 {
		cfg.HoldFrames = hittest.DefaultHoldFrames
	}
	if cfg.Buttons == nil {
		cfg.Buttons = append([]string(nil), defaultButtons...)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	cfg.AssetDir = strings.TrimSpace(cfg.AssetDir)
	cfg.ScreenshotDir = strings.TrimSpace(cfg.ScreenshotDir)
}
