package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/1broseidon/railers/internal/keys"
)

// TargetConfig identifies the external window the overlay follows.
type TargetConfig struct {
	// Class is the window class (WM_CLASS on X11).
	Class string `yaml:"class"`
	Title string `yaml:"title"`
}

// InsetsConfig trims the target's outer box to the overlay's placement.
type InsetsConfig struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// OverlayConfig describes the overlay window.
type OverlayConfig struct {
	Title  string       `yaml:"title"`
	Width  int          `yaml:"width"`
	Height int          `yaml:"height"`
	Insets InsetsConfig `yaml:"insets"`
}

type TrackingConfig struct {
	// TickRateHz is how often the target window is polled.
	TickRateHz int `yaml:"tick_rate_hz"`
}

type HotkeyConfig struct {
	// Toggle shows or hides the overlay, e.g. "Shift-F10".
	Toggle string `yaml:"toggle"`
}

// RemapConfig configures trigger keys that press the substitute key.
type RemapConfig struct {
	Triggers   []string `yaml:"triggers"`
	Substitute string   `yaml:"substitute"`
	// EnabledAtStart is the initial state of every trigger toggle.
	EnabledAtStart bool `yaml:"enabled_at_start"`
	PressDelayMS   int  `yaml:"press_delay_ms"`
	// PollIntervalMS is the keyboard sampling interval on X11.
	PollIntervalMS int `yaml:"poll_interval_ms"`
	QueueSize      int `yaml:"queue_size"`
}

// LoggingConfig configures the optional log file.
type LoggingConfig struct {
	// File is the log file path; empty logs to stderr only
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config represents the complete application configuration
type Config struct {
	Target   TargetConfig   `yaml:"target"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Tracking TrackingConfig `yaml:"tracking"`
	Hotkey   HotkeyConfig   `yaml:"hotkey"`
	Remap    RemapConfig    `yaml:"remap"`
	LogLevel string         `yaml:"log_level"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			Class: "UnityWndClass",
			Title: "Honkai: Star Rail",
		},
		Overlay: OverlayConfig{
			Title:  "Railers",
			Width:  1280,
			Height: 720,
			Insets: defaultInsets(runtime.GOOS),
		},
		Tracking: TrackingConfig{TickRateHz: 120},
		Hotkey:   HotkeyConfig{Toggle: "Shift-F10"},
		Remap: RemapConfig{
			Triggers:       []string{"F", "Return"},
			Substitute:     "Space",
			PressDelayMS:   10,
			PollIntervalMS: 5,
			QueueSize:      64,
		},
		LogLevel: "info",
	}
}

// defaultInsets returns the frame to trim on goos. Windows reports the outer
// frame of the target; X11 geometry is already the client area.
func defaultInsets(goos string) InsetsConfig {
	if goos == "windows" {
		return InsetsConfig{Left: 8, Top: 31, Width: 16, Height: 39}
	}
	return InsetsConfig{}
}

// ToggleCombo parses the toggle hotkey.
func (c *Config) ToggleCombo() (keys.Combo, error) {
	return keys.ParseCombo(c.Hotkey.Toggle)
}

// TriggerKeys parses the remap triggers.
func (c *Config) TriggerKeys() ([]keys.Key, error) {
	out := make([]keys.Key, 0, len(c.Remap.Triggers))
	for _, name := range c.Remap.Triggers {
		k, err := keys.Parse(name)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// SubstituteKey parses the key synthesized for triggers.
func (c *Config) SubstituteKey() (keys.Key, error) {
	return keys.Parse(c.Remap.Substitute)
}

func (c *Config) PressDelay() time.Duration {
	return time.Duration(c.Remap.PressDelayMS) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Remap.PollIntervalMS) * time.Millisecond
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File != "" {
		cfg.File = expandHome(cfg.File)
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	return cfg
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target.Class) == "" && strings.TrimSpace(c.Target.Title) == "" {
		return &ValidationError{Path: "target", Err: fmt.Errorf("target class or title is required")}
	}
	if c.Overlay.Width <= 0 {
		return &ValidationError{Path: "overlay.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Overlay.Height <= 0 {
		return &ValidationError{Path: "overlay.height", Err: fmt.Errorf("height must be > 0")}
	}
	insets := map[string]int{
		"left":   c.Overlay.Insets.Left,
		"top":    c.Overlay.Insets.Top,
		"width":  c.Overlay.Insets.Width,
		"height": c.Overlay.Insets.Height,
	}
	for _, name := range []string{"left", "top", "width", "height"} {
		if insets[name] < 0 {
			return &ValidationError{Path: "overlay.insets." + name, Err: fmt.Errorf("insets must be >= 0")}
		}
	}
	if c.Tracking.TickRateHz < 10 || c.Tracking.TickRateHz > 1000 {
		return &ValidationError{Path: "tracking.tick_rate_hz", Err: fmt.Errorf("tick_rate_hz must be between 10 and 1000")}
	}
	if _, err := c.ToggleCombo(); err != nil {
		return &ValidationError{Path: "hotkey.toggle", Err: err}
	}

	seen := make(map[keys.Key]struct{}, len(c.Remap.Triggers))
	for i, name := range c.Remap.Triggers {
		path := fmt.Sprintf("remap.triggers[%d]", i)
		k, err := keys.Parse(name)
		if err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if k.IsModifier() {
			return &ValidationError{Path: path, Err: fmt.Errorf("modifier %s cannot be a trigger", k)}
		}
		if _, dup := seen[k]; dup {
			return &ValidationError{Path: path, Err: fmt.Errorf("duplicate trigger %s", k)}
		}
		seen[k] = struct{}{}
	}
	sub, err := c.SubstituteKey()
	if err != nil {
		return &ValidationError{Path: "remap.substitute", Err: err}
	}
	if _, clash := seen[sub]; clash {
		return &ValidationError{Path: "remap.substitute", Err: fmt.Errorf("substitute %s must not also be a trigger", sub)}
	}
	if c.Remap.PressDelayMS < 1 || c.Remap.PressDelayMS > 1000 {
		return &ValidationError{Path: "remap.press_delay_ms", Err: fmt.Errorf("press_delay_ms must be between 1 and 1000")}
	}
	if c.Remap.PollIntervalMS < 1 || c.Remap.PollIntervalMS > 100 {
		return &ValidationError{Path: "remap.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be between 1 and 100")}
	}
	if c.Remap.QueueSize < 1 {
		return &ValidationError{Path: "remap.queue_size", Err: fmt.Errorf("queue_size must be >= 1")}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}
