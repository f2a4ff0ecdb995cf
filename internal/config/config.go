// Package config loads run settings from a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	HostWindow      = "window"
	HostFramebuffer = "framebuffer"
	HostHeadless    = "headless"

	maxConfigSize = 1 << 20
)

var (
	ErrNotFound          = errors.New("config file not found")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

type Window struct {
	Title     string `yaml:"title" toml:"title"`
	Width     int    `yaml:"width" toml:"width"`
	Height    int    `yaml:"height" toml:"height"`
	MinWidth  int    `yaml:"min_width" toml:"min_width"`
	MinHeight int    `yaml:"min_height" toml:"min_height"`
	TPS       int    `yaml:"tps" toml:"tps"`
}

type Framebuffer struct {
	Device string  `yaml:"device" toml:"device"`
	Scale  float64 `yaml:"scale" toml:"scale"`
	FPS    int     `yaml:"fps" toml:"fps"`
}

type Headless struct {
	Frames int     `yaml:"frames" toml:"frames"`
	FPS    int     `yaml:"fps" toml:"fps"`
	Scale  float64 `yaml:"scale" toml:"scale"`
	OutDir string  `yaml:"out_dir" toml:"out_dir"`
}

type Renderer struct {
	// SDF registers gg's signed-distance-field accelerator for circles and
	// rectangles.
	SDF bool `yaml:"sdf" toml:"sdf"`
}

type Config struct {
	Host        string            `yaml:"host" toml:"host"`
	Loop        bool              `yaml:"loop" toml:"loop"`
	DensityCap  float64           `yaml:"density_cap" toml:"density_cap"`
	LogLevel    string            `yaml:"log_level" toml:"log_level"`
	Controls    map[string]string `yaml:"controls" toml:"controls"`
	Window      Window            `yaml:"window" toml:"window"`
	Framebuffer Framebuffer       `yaml:"framebuffer" toml:"framebuffer"`
	Headless    Headless          `yaml:"headless" toml:"headless"`
	Renderer    Renderer          `yaml:"renderer" toml:"renderer"`
}

func Default() Config {
	return Config{
		Host:       HostWindow,
		Loop:       true,
		DensityCap: 4,
		LogLevel:   "info",
		Controls:   map[string]string{},
		Window: Window{
			Title:     "Orbit",
			Width:     1024,
			Height:    768,
			MinWidth:  320,
			MinHeight: 240,
			TPS:       60,
		},
		Framebuffer: Framebuffer{Device: "/dev/fb0", Scale: 1, FPS: 30},
		Headless:    Headless{Frames: 60, FPS: 60, Scale: 1},
	}
}

// Load reads path over the defaults. A missing file returns the defaults
// together with an error wrapping ErrNotFound.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config file %s too large (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Default(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Controls == nil {
		cfg.Controls = map[string]string{}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	switch c.Host {
	case HostWindow, HostFramebuffer, HostHeadless:
	default:
		errs = append(errs, fmt.Errorf("unknown host %q", c.Host))
	}
	if c.DensityCap < 0 {
		errs = append(errs, fmt.Errorf("density_cap must not be negative, got %v", c.DensityCap))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Headless.Frames < 0 {
		errs = append(errs, fmt.Errorf("headless frames must not be negative, got %d", c.Headless.Frames))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
