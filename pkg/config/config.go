// Package config loads the user's sketchplane settings from a YAML file and
// applies SKP_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazu/sketchplane/pkg/geom2d"
	applog "github.com/chazu/sketchplane/pkg/log"
	"github.com/chazu/sketchplane/pkg/session"
	"github.com/chazu/sketchplane/pkg/workplane"
)

// GeometryConfig holds the kernel tolerances.
type GeometryConfig struct {
	Linear   float64 `yaml:"linear_tolerance"`
	Angular  float64 `yaml:"angular_tolerance"`
	Infinity float64 `yaml:"infinity"`
}

// WorkplaneConfig holds defaults for new workplanes.
type WorkplaneConfig struct {
	Size     float64 `yaml:"size"`
	Units    string  `yaml:"units"`
	SeedAxes bool    `yaml:"seed_axes"`
}

// EngineConfig controls script evaluation.
type EngineConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
}

// KernelConfig controls profile preview meshing.
type KernelConfig struct {
	Backend    string  `yaml:"backend"` // "sdfx" or "manifold"
	MeshCells  int     `yaml:"mesh_cells"`
	StripWidth float64 `yaml:"strip_width"`
	Thickness  float64 `yaml:"thickness"`
}

// LoggingConfig mirrors applog.Options.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Config is the user-editable configuration.
type Config struct {
	ConfigVersion int             `yaml:"config_version"`
	Geometry      GeometryConfig  `yaml:"geometry"`
	Workplane     WorkplaneConfig `yaml:"workplane"`
	Engine        EngineConfig    `yaml:"engine"`
	Kernel        KernelConfig    `yaml:"kernel"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ConfigVersion: 1,
		Geometry: GeometryConfig{
			Linear:   geom2d.DefaultTolerance.Linear,
			Angular:  geom2d.DefaultTolerance.Angular,
			Infinity: 1e10,
		},
		Workplane: WorkplaneConfig{Size: workplane.DefaultSize, Units: "mm", SeedAxes: true},
		Engine:    EngineConfig{TimeoutMs: 5000},
		Kernel:    KernelConfig{Backend: "sdfx", MeshCells: 200, StripWidth: 0.5, Thickness: 0.5},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
	}
}

// Environment variables read by Load.
const (
	EnvUnits         = "SKP_UNITS"
	EnvWorkplaneSize = "SKP_WORKPLANE_SIZE"
	EnvEvalTimeoutMs = "SKP_EVAL_TIMEOUT_MS"
	EnvMeshCells     = "SKP_MESH_CELLS"
	EnvKernel        = "SKP_KERNEL"
	EnvLogLevel      = "SKP_LOG_LEVEL"
	EnvLogFormat     = "SKP_LOG_FORMAT"
	EnvLogSource     = "SKP_LOG_SOURCE"
	EnvLogFile       = "SKP_LOG_FILE"
)

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, "Library", "Application Support")
		}
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" && os.Getenv("HOME") != "" {
			base = filepath.Join(os.Getenv("HOME"), ".config")
		}
	}
	if base == "" {
		return "", errors.New("config: cannot resolve config directory")
	}
	return filepath.Join(base, "sketchplane", "config.yaml"), nil
}

// Load reads the config file at path over the defaults and applies
// environment overrides. An empty path means DefaultPath. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			cfg.normalize()
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	cfg.normalize()
	return cfg, nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// normalize replaces out-of-range values, including unit names the session
// does not know, with defaults.
func (c *Config) normalize() {
	d := Defaults()
	if c.Geometry.Linear <= 0 {
		c.Geometry.Linear = d.Geometry.Linear
	}
	if c.Geometry.Angular <= 0 {
		c.Geometry.Angular = d.Geometry.Angular
	}
	if c.Geometry.Infinity <= 0 {
		c.Geometry.Infinity = d.Geometry.Infinity
	}
	if c.Workplane.Size <= 0 {
		c.Workplane.Size = d.Workplane.Size
	}
	c.Workplane.Units = strings.ToLower(strings.TrimSpace(c.Workplane.Units))
	if !slices.Contains(session.UnitNames(), c.Workplane.Units) {
		c.Workplane.Units = d.Workplane.Units
	}
	if c.Engine.TimeoutMs <= 0 {
		c.Engine.TimeoutMs = d.Engine.TimeoutMs
	}
	c.Kernel.Backend = strings.ToLower(strings.TrimSpace(c.Kernel.Backend))
	if c.Kernel.Backend == "" {
		c.Kernel.Backend = d.Kernel.Backend
	}
	if c.Kernel.MeshCells <= 0 {
		c.Kernel.MeshCells = d.Kernel.MeshCells
	}
	if c.Kernel.StripWidth <= 0 {
		c.Kernel.StripWidth = d.Kernel.StripWidth
	}
	if c.Kernel.Thickness <= 0 {
		c.Kernel.Thickness = d.Kernel.Thickness
	}
}

func applyEnvOverrides(c *Config) {
	if v := env(EnvUnits); v != "" {
		c.Workplane.Units = strings.ToLower(v)
	}
	if v := env(EnvWorkplaneSize); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Workplane.Size = f
		}
	}
	if v := env(EnvEvalTimeoutMs); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.TimeoutMs = n
		}
	}
	if v := env(EnvMeshCells); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Kernel.MeshCells = n
		}
	}
	if v := env(EnvKernel); v != "" {
		c.Kernel.Backend = v
	}
	if v := env(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		c.Logging.Source = truthy(v)
	}
	if v := env(EnvLogFile); v != "" {
		c.Logging.File = v
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Tolerance returns the configured geometry tolerance.
func (c Config) Tolerance() geom2d.Tolerance {
	return geom2d.Tolerance{Linear: c.Geometry.Linear, Angular: c.Geometry.Angular}
}

// WorkplaneOptions returns the options for new workplanes.
func (c Config) WorkplaneOptions() workplane.Options {
	return workplane.Options{
		Size:      c.Workplane.Size,
		Tolerance: c.Tolerance(),
		Infinity:  c.Geometry.Infinity,
		SeedAxes:  c.Workplane.SeedAxes,
	}
}

// EvalTimeout returns the script evaluation timeout.
func (c Config) EvalTimeout() time.Duration {
	return time.Duration(c.Engine.TimeoutMs) * time.Millisecond
}

// LogOptions returns the logger options.
func (c Config) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
