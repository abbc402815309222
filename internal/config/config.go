package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/suykerbuyk/adaptive-ui/internal/behavior"
	"github.com/suykerbuyk/adaptive-ui/internal/mode"
)

// Config holds all adaptive-ui configuration.
type Config struct {
	StateDir string `toml:"state_dir"`

	Log     LogConfig     `toml:"log"`
	Scroll  ScrollConfig  `toml:"scroll"`
	Dwell   DwellConfig   `toml:"dwell"`
	Click   ClickConfig   `toml:"click"`
	Journal JournalConfig `toml:"journal"`
	Archive ArchiveConfig `toml:"archive"`
	Ingest  IngestConfig  `toml:"ingest"`

	Environment EnvironmentConfig `toml:"environment"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type ScrollConfig struct {
	MovementThresholdPx float64 `toml:"movement_threshold_px"`
	WindowSize          int     `toml:"window_size"`
	MinDirectionChanges int     `toml:"min_direction_changes"`
	MinWindowSamples    int     `toml:"min_window_samples"`
	WindowSpanMs        int     `toml:"window_span_ms"`
}

type DwellConfig struct {
	LongBrowsingSeconds int `toml:"long_browsing_seconds"`
	MinScrollSamples    int `toml:"min_scroll_samples"`
	TickIntervalMs      int `toml:"tick_interval_ms"`
}

type ClickConfig struct {
	NearMissRadiusPx      float64 `toml:"near_miss_radius_px"`
	NearMissRetention     int     `toml:"near_miss_retention"`
	AncestorDepth         int     `toml:"ancestor_depth"`
	MissesPerStep         int     `toml:"misses_per_step"`
	ScaleStep             float64 `toml:"scale_step"`
	MaxScale              float64 `toml:"max_scale"`
	FallbackMinAttempts   int     `toml:"fallback_min_attempts"`
	FallbackSuccessRatio  float64 `toml:"fallback_success_ratio"`
	FallbackMinNearMisses int     `toml:"fallback_min_near_misses"`
}

type JournalConfig struct {
	Enabled bool `toml:"enabled"`
}

type ArchiveConfig struct {
	Compress bool `toml:"compress"`
}

type IngestConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// EnvironmentConfig describes the device sessions start on. Recordings
// carry no device hints, so these stand in for what a host would report.
type EnvironmentConfig struct {
	ViewportWidth  int    `toml:"viewport_width"`  // CSS px, 0 when unknown
	ConnectionType string `toml:"connection_type"` // e.g. "4g", "2g"
	PrefersDark    bool   `toml:"prefers_dark"`
	LargeUI        bool   `toml:"large_ui"` // accessibility mode already on
	Frontline      bool   `toml:"frontline"`
}

// DefaultConfig returns config with the reference thresholds.
func DefaultConfig() Config {
	return Config{
		StateDir: "~/.local/state/adaptive-ui",
		Log: LogConfig{
			Level: "info",
		},
		Scroll: ScrollConfig{
			MovementThresholdPx: 50,
			WindowSize:          20,
			MinDirectionChanges: 10,
			MinWindowSamples:    15,
			WindowSpanMs:        10000,
		},
		Dwell: DwellConfig{
			LongBrowsingSeconds: 120,
			MinScrollSamples:    10,
			TickIntervalMs:      1000,
		},
		Click: ClickConfig{
			NearMissRadiusPx:      30,
			NearMissRetention:     10,
			AncestorDepth:         3,
			MissesPerStep:         3,
			ScaleStep:             0.15,
			MaxScale:              1.75,
			FallbackMinAttempts:   5,
			FallbackSuccessRatio:  0.7,
			FallbackMinNearMisses: 2,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Archive: ArchiveConfig{
			Compress: true,
		},
		Ingest: IngestConfig{
			DebounceMs: 500,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	paths := configPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.StateDir = expandHome(cfg.StateDir)

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "adaptive-ui", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "adaptive-ui", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Thresholds converts the detection sections to collector thresholds.
func (c Config) Thresholds() behavior.Thresholds {
	return behavior.Thresholds{
		ScrollMovement:        c.Scroll.MovementThresholdPx,
		ScrollWindow:          c.Scroll.WindowSize,
		ChaosDirectionChanges: c.Scroll.MinDirectionChanges,
		ChaosWindowSamples:    c.Scroll.MinWindowSamples,
		ChaosWindowSpan:       time.Duration(c.Scroll.WindowSpanMs) * time.Millisecond,
		LongBrowsingDwell:     time.Duration(c.Dwell.LongBrowsingSeconds) * time.Second,
		LongBrowsingSamples:   c.Dwell.MinScrollSamples,
		NearMissRadius:        c.Click.NearMissRadiusPx,
		NearMissRetention:     c.Click.NearMissRetention,
		AncestorDepth:         c.Click.AncestorDepth,
		MissesPerStep:         c.Click.MissesPerStep,
		ScaleStepPercent:      int(math.Round(c.Click.ScaleStep * 100)),
		MaxScalePercent:       int(math.Round(c.Click.MaxScale * 100)),
		FallbackMinAttempts:   c.Click.FallbackMinAttempts,
		FallbackSuccessRatio:  c.Click.FallbackSuccessRatio,
		FallbackMinNearMisses: c.Click.FallbackMinNearMisses,
	}
}

// InitialMode returns the display mode sessions start in: the modes
// detected from the environment plus the explicit large-UI and frontline
// settings.
func (c Config) InitialMode() mode.Mode {
	m := mode.Detect(mode.Environment{
		ViewportWidth:  c.Environment.ViewportWidth,
		ConnectionType: c.Environment.ConnectionType,
		PrefersDark:    c.Environment.PrefersDark,
	})
	m.LargeUI = c.Environment.LargeUI
	m.Frontline = c.Environment.Frontline
	return m
}

// TickInterval returns the dwell timer period.
func (c Config) TickInterval() time.Duration {
	if c.Dwell.TickIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(c.Dwell.TickIntervalMs) * time.Millisecond
}

// IngestDebounce returns how long a recording must be quiet before replay.
func (c Config) IngestDebounce() time.Duration {
	if c.Ingest.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Ingest.DebounceMs) * time.Millisecond
}

// JournalPath returns the SQLite journal inside the state directory.
func (c Config) JournalPath() string {
	return filepath.Join(c.StateDir, "journal.db")
}

// ArchiveDir returns the directory holding compressed recordings.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.StateDir, "recordings")
}
