// Package config loads the handsoff configuration file.
//
// The file lives under os.UserConfigDir()/handsoff/config.yaml unless a path
// is given explicitly. A missing file is not an error: every field has a
// default, and values present in the file override those defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	appDir   = "handsoff"
	fileName = "config.yaml"
)

// Config is the complete application configuration.
type Config struct {
	Camera    Camera    `yaml:"camera"`
	Model     Model     `yaml:"model"`
	Training  Training  `yaml:"training"`
	Detection Detection `yaml:"detection"`
	Alert     Alert     `yaml:"alert"`
	Server    Server    `yaml:"server"`
	Store     Store     `yaml:"store"`
	Log       Log       `yaml:"log"`
	Tray      Tray      `yaml:"tray"`
}

// Camera configures video capture.
type Camera struct {
	Device   int `yaml:"device"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPS      int `yaml:"fps"`
	WarmupMs int `yaml:"warmup_ms"` // how long to wait for the first frame
}

// Model configures the embedding network. An empty Path selects the
// built-in pixel embedder.
type Model struct {
	Path        string    `yaml:"path"`
	ConfigPath  string    `yaml:"config"`
	InputSize   int       `yaml:"input_size"`
	Scale       float64   `yaml:"scale"`
	Mean        []float64 `yaml:"mean"`
	SwapRB      bool      `yaml:"swap_rb"`
	OutputLayer string    `yaml:"output_layer"`
}

// Training configures sample collection for each class.
type Training struct {
	Samples    int `yaml:"samples"`
	DurationMs int `yaml:"duration_ms"`
}

// Detection configures the classification loop.
type Detection struct {
	TickMs    int     `yaml:"tick_ms"`
	Threshold float64 `yaml:"threshold"`
	Neighbors int     `yaml:"neighbors"`
}

// Alert configures the sound and notification sinks.
type Alert struct {
	Sound      string   `yaml:"sound"`
	Player     []string `yaml:"player"` // command prefix, the sound path is appended
	Title      string   `yaml:"title"`
	Body       string   `yaml:"body"`
	CooldownMs int      `yaml:"cooldown_ms"`
}

// Server configures the local HTTP API.
type Server struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Store configures the history database.
type Store struct {
	Path string `yaml:"path"`
}

// Log configures the root logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Tray toggles the system tray front-end.
type Tray struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Camera: Camera{
			Device:   0,
			Width:    640,
			Height:   480,
			FPS:      15,
			WarmupMs: 5000,
		},
		Model: Model{
			InputSize: 224,
			Scale:     1.0 / 127.5,
			Mean:      []float64{127.5, 127.5, 127.5},
			SwapRB:    true,
		},
		Training: Training{
			Samples:    50,
			DurationMs: 5000,
		},
		Detection: Detection{
			TickMs:    1000,
			Threshold: 0.8,
			Neighbors: 3,
		},
		Alert: Alert{
			Title:      "Touched",
			Body:       "Hand down",
			CooldownMs: 3000,
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Tray: Tray{
			Enabled: true,
		},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// DefaultPath returns the path of the default configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the configuration at path. An empty path means DefaultPath.
// Relative store paths are resolved against the configuration directory.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(filepath.Dir(path), "handsoff.db")
	} else if !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(filepath.Dir(path), cfg.Store.Path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.Training.Samples < 1:
		return fmt.Errorf("training.samples must be >= 1, got %d", c.Training.Samples)
	case c.Training.DurationMs < 0:
		return fmt.Errorf("training.duration_ms must be >= 0, got %d", c.Training.DurationMs)
	case c.Detection.TickMs < 1:
		return fmt.Errorf("detection.tick_ms must be >= 1, got %d", c.Detection.TickMs)
	case c.Detection.Threshold < 0 || c.Detection.Threshold > 1:
		return fmt.Errorf("detection.threshold must be in [0,1], got %v", c.Detection.Threshold)
	case c.Detection.Neighbors < 1:
		return fmt.Errorf("detection.neighbors must be >= 1, got %d", c.Detection.Neighbors)
	case c.Alert.CooldownMs < 0:
		return fmt.Errorf("alert.cooldown_ms must be >= 0, got %d", c.Alert.CooldownMs)
	case c.Model.Path != "" && c.Model.InputSize < 1:
		return fmt.Errorf("model.input_size must be >= 1, got %d", c.Model.InputSize)
	}
	return nil
}

// TrainingDuration returns the total duration of one collection burst.
func (c Config) TrainingDuration() time.Duration {
	return time.Duration(c.Training.DurationMs) * time.Millisecond
}

// TickInterval returns the pause between detection ticks.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Detection.TickMs) * time.Millisecond
}

// Cooldown returns the notification cooldown.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.Alert.CooldownMs) * time.Millisecond
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
