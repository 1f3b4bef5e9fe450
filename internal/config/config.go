// Package config loads the app settings from a YAML file in the user's
// home directory. A missing file means defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
)

// FileName is the config file looked up in the home directory.
const FileName = ".ridex.yaml"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	// Name is shown to other participants on the LAN. Empty means the
	// hostname.
	Name                  string  `yaml:"name"`
	Port                  int     `yaml:"port"`
	MaxLayers             int     `yaml:"max_layers"`
	RoomColor             string  `yaml:"room_color"`
	PenColor              string  `yaml:"pen_color"`
	SelectionNetThreshold float64 `yaml:"selection_net_threshold"`
	MinLayerSize          float64 `yaml:"min_layer_size"`
	LogLevel              string  `yaml:"log_level"`
	SaveDir               string  `yaml:"save_dir"`
	Advertise             bool    `yaml:"advertise"`
}

func Default() Config {
	return Config{
		Port:                  8888,
		MaxLayers:             100,
		RoomColor:             "#1e1e1e",
		PenColor:              "#000000",
		SelectionNetThreshold: 5,
		LogLevel:              "info",
		Advertise:             true,
	}
}

// DefaultPath is ~/.ridex.yaml, or the bare file name when there is no home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, cfg.normalize()
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port))
	}
	if c.MaxLayers <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_layers must be positive", ErrInvalid))
	}
	if c.SelectionNetThreshold < 0 || c.MinLayerSize < 0 {
		errs = append(errs, fmt.Errorf("%w: sizes must not be negative", ErrInvalid))
	}
	if _, err := geom.ParseHex(c.RoomColor); err != nil {
		errs = append(errs, fmt.Errorf("%w: room_color: %w", ErrInvalid, err))
	}
	if _, err := geom.ParseHex(c.PenColor); err != nil {
		errs = append(errs, fmt.Errorf("%w: pen_color: %w", ErrInvalid, err))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	c.SaveDir = expandHome(c.SaveDir)
	return errors.Join(errs...)
}

// RoomRGB and PenRGB are only valid on a config returned by Load without
// error.
func (c Config) RoomRGB() geom.RGB { return geom.MustParseHex(c.RoomColor) }
func (c Config) PenRGB() geom.RGB  { return geom.MustParseHex(c.PenColor) }

func (c Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, s)
	}
	return l, nil
}

// SavePath places name in the save directory, creating it if needed.
func (c Config) SavePath(name string) string {
	if c.SaveDir == "" {
		return name
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		return name
	}
	return filepath.Join(c.SaveDir, name)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
