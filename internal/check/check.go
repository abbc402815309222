package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/suykerbuyk/adaptive-ui/internal/config"
	"github.com/suykerbuyk/adaptive-ui/internal/journal"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "adaptui check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("adaptui check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the resolved config path. A missing file is a warning;
// the defaults apply.
func CheckConfig() Result {
	cfgPath := filepath.Join(config.ConfigDir(), "config.toml")
	if _, err := os.Stat(cfgPath); err != nil {
		return Result{Name: "config", Status: Warn, Detail: config.CompressHome(cfgPath) + " not found (using defaults)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(cfgPath)}
}

// CheckLogLevel validates the configured log level.
func CheckLogLevel(level string) Result {
	if level == "" {
		return Result{Name: "log", Status: Pass, Detail: "info (default)"}
	}
	if _, err := zapcore.ParseLevel(level); err != nil {
		return Result{Name: "log", Status: Fail, Detail: fmt.Sprintf("unknown level %q", level)}
	}
	return Result{Name: "log", Status: Pass, Detail: level}
}

// CheckStateDir checks whether the state directory exists.
func CheckStateDir(stateDir string) Result {
	if info, err := os.Stat(stateDir); err == nil && info.IsDir() {
		return Result{Name: "state", Status: Pass, Detail: config.CompressHome(stateDir)}
	}
	return Result{Name: "state", Status: Warn, Detail: config.CompressHome(stateDir) + " not found (run adaptui init)"}
}

// CheckThresholds flags detection settings that can never fire or never stop.
func CheckThresholds(cfg config.Config) Result {
	var problems []string
	if cfg.Click.MaxScale < 1 {
		problems = append(problems, "max_scale below 1.0")
	}
	if cfg.Click.ScaleStep <= 0 {
		problems = append(problems, "scale_step must be positive")
	}
	if r := cfg.Click.FallbackSuccessRatio; r <= 0 || r > 1 {
		problems = append(problems, "fallback_success_ratio outside (0, 1]")
	}
	if cfg.Scroll.WindowSize <= cfg.Scroll.MinWindowSamples {
		problems = append(problems, "scroll window_size must exceed min_window_samples")
	}
	if cfg.Click.NearMissRadiusPx < 0 {
		problems = append(problems, "near_miss_radius_px is negative")
	}
	if len(problems) > 0 {
		return Result{Name: "thresholds", Status: Fail, Detail: strings.Join(problems, "; ")}
	}
	return Result{Name: "thresholds", Status: Pass, Detail: fmt.Sprintf("scale step %.0f%%, cap %.0f%%",
		cfg.Click.ScaleStep*100, cfg.Click.MaxScale*100)}
}

// CheckEnvironment reports the mode sessions start in and warns about
// device hints Detect does not understand.
func CheckEnvironment(cfg config.Config) Result {
	env := cfg.Environment
	detail := "starting mode: " + cfg.InitialMode().String()
	if env.ViewportWidth < 0 {
		return Result{Name: "environment", Status: Warn, Detail: "negative viewport_width ignored; " + detail}
	}
	switch strings.ToLower(strings.TrimSpace(env.ConnectionType)) {
	case "", "slow-2g", "2g", "3g", "4g":
	default:
		return Result{Name: "environment", Status: Warn,
			Detail: fmt.Sprintf("unknown connection_type %q; %s", env.ConnectionType, detail)}
	}
	return Result{Name: "environment", Status: Pass, Detail: detail}
}

// CheckJournal opens the journal and reports how many sessions it holds.
func CheckJournal(cfg config.Config) Result {
	if !cfg.Journal.Enabled {
		return Result{Name: "journal", Status: Pass, Detail: "disabled"}
	}
	path := cfg.JournalPath()
	if _, err := os.Stat(path); err != nil {
		return Result{Name: "journal", Status: Warn, Detail: "journal.db not created yet"}
	}

	store, err := journal.Open(path)
	if err != nil {
		return Result{Name: "journal", Status: Fail, Detail: err.Error()}
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sessions, err := store.List(ctx, 0)
	if err != nil {
		return Result{Name: "journal", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "journal", Status: Pass, Detail: fmt.Sprintf("journal.db (%d sessions)", len(sessions))}
}

// CheckArchive reports the archive directory and how many recordings it holds.
func CheckArchive(cfg config.Config) Result {
	if !cfg.Archive.Compress {
		return Result{Name: "archive", Status: Pass, Detail: "disabled"}
	}
	if info, err := os.Stat(cfg.ArchiveDir()); err != nil || !info.IsDir() {
		return Result{Name: "archive", Status: Warn, Detail: "recordings/ not found yet"}
	}
	matches, _ := filepath.Glob(filepath.Join(cfg.ArchiveDir(), "*.jsonl.zst"))
	return Result{Name: "archive", Status: Pass, Detail: fmt.Sprintf("recordings/ (%d archived)", len(matches))}
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig())
	results = append(results, CheckLogLevel(cfg.Log.Level))
	results = append(results, CheckStateDir(cfg.StateDir))
	results = append(results, CheckThresholds(cfg))
	results = append(results, CheckEnvironment(cfg))
	results = append(results, CheckJournal(cfg))
	results = append(results, CheckArchive(cfg))

	return Report{Results: results}
}
