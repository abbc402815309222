package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the adaptive-ui config directory path.
// Uses $XDG_CONFIG_HOME/adaptive-ui if set, otherwise ~/.config/adaptive-ui.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "adaptive-ui")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "adaptive-ui")
}

// WriteDefault writes a default config.toml pointing state_dir at stateDir.
// An existing file keeps every other setting; only its state_dir line is
// rewritten. Returns the config path and one of "created", "updated" or
// "unchanged".
func WriteDefault(stateDir string) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")
	portable := CompressHome(stateDir)

	if data, err := os.ReadFile(path); err == nil {
		updated, changed := setStateDir(string(data), portable)
		if !changed {
			return path, "unchanged", nil
		}
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return "", "", fmt.Errorf("update config: %w", err)
		}
		return path, "updated", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	content := fmt.Sprintf(defaultTemplate, portable)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, "created", nil
}

// setStateDir replaces the top-level state_dir assignment, or prepends one.
func setStateDir(content, stateDir string) (string, bool) {
	line := fmt.Sprintf("state_dir = %q", stateDir)
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "[") {
			break
		}
		key, _, ok := strings.Cut(trimmed, "=")
		if !ok || strings.TrimSpace(key) != "state_dir" {
			continue
		}
		if trimmed == line {
			return content, false
		}
		lines[i] = line
		return strings.Join(lines, "\n"), true
	}
	return line + "\n\n" + content, true
}

const defaultTemplate = `state_dir = %q

[log]
level = "info"

[scroll]
movement_threshold_px = 50
window_size = 20
min_direction_changes = 10
min_window_samples = 15
window_span_ms = 10000

[dwell]
long_browsing_seconds = 120
min_scroll_samples = 10
tick_interval_ms = 1000

[click]
near_miss_radius_px = 30
near_miss_retention = 10
ancestor_depth = 3
misses_per_step = 3
scale_step = 0.15
max_scale = 1.75
fallback_min_attempts = 5
fallback_success_ratio = 0.7
fallback_min_near_misses = 2

[journal]
enabled = true

[archive]
compress = true

[ingest]
debounce_ms = 500

[environment]
viewport_width = 0
connection_type = ""
prefers_dark = false
large_ui = false
frontline = false
`

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
