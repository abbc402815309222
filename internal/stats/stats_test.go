package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/suykerbuyk/adaptive-ui/internal/behavior"
	"github.com/suykerbuyk/adaptive-ui/internal/journal"
	"github.com/suykerbuyk/adaptive-ui/internal/mode"
)

func makeSession(id string, ended time.Time, scale float64, dwell, misses int, actions ...string) journal.Session {
	snap := behavior.DefaultSnapshot()
	snap.UIScaleFactor = scale
	snap.TimeOnPageSeconds = dwell
	snap.MissedClickCount = misses
	sess := journal.Session{
		ID:          id,
		RecordingID: id,
		StartedAt:   ended.Add(-time.Duration(dwell) * time.Second),
		EndedAt:     ended,
		Snapshot:    snap,
	}
	for i, a := range actions {
		sess.Timeline = append(sess.Timeline, journal.Entry{Offset: time.Duration(i) * time.Second, Action: a})
		switch a {
		case "show-help-prompt":
			sess.Snapshot.ChaoticScrolling = true
		case "show-quick-access-panel":
			sess.Snapshot.LongBrowsing = true
		case "set-large-ui(true)":
			sess.Snapshot.ClickDifficulty = true
			sess.Mode = mode.Mode{LargeUI: true}
		}
	}
	return sess
}

var oct = time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC)

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, time.Time{})
	if s.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d, want 0", s.TotalSessions)
	}
	if s.AvgScalePercent != 0 || s.AvgAdaptations != 0 || s.AvgDwell != 0 {
		t.Errorf("averages should be zero, got %+v", s)
	}
}

func TestCompute_SingleSession(t *testing.T) {
	s := Compute([]journal.Session{
		makeSession("s1", oct, 1.15, 90, 3, "set-large-ui(true)", "notify-scale-increase(115%)"),
	}, time.Time{})

	if s.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d", s.TotalSessions)
	}
	if s.TotalAdaptations != 2 {
		t.Errorf("TotalAdaptations = %d", s.TotalAdaptations)
	}
	if s.TotalDwell != 90 {
		t.Errorf("TotalDwell = %d", s.TotalDwell)
	}
	if s.NearMisses != 3 {
		t.Errorf("NearMisses = %d", s.NearMisses)
	}
	if s.ClickDifficulty != 1 || s.LargeUI != 1 {
		t.Errorf("ClickDifficulty = %d, LargeUI = %d", s.ClickDifficulty, s.LargeUI)
	}
	if s.MaxScalePercent != 115 || s.AvgScalePercent != 115 {
		t.Errorf("scale = %f (max %d)", s.AvgScalePercent, s.MaxScalePercent)
	}
}

func TestCompute_Averages(t *testing.T) {
	s := Compute([]journal.Session{
		makeSession("s1", oct, 1.0, 60, 0),
		makeSession("s2", oct, 1.3, 120, 6, "notify-scale-increase(115%)", "notify-scale-increase(130%)"),
	}, time.Time{})

	if s.AvgScalePercent != 115 {
		t.Errorf("AvgScalePercent = %f, want 115", s.AvgScalePercent)
	}
	if s.AvgAdaptations != 1 {
		t.Errorf("AvgAdaptations = %f, want 1", s.AvgAdaptations)
	}
	if s.AvgDwell != 90 {
		t.Errorf("AvgDwell = %f, want 90", s.AvgDwell)
	}
	if s.MaxScalePercent != 130 {
		t.Errorf("MaxScalePercent = %d, want 130", s.MaxScalePercent)
	}
}

func TestCompute_SinceFilter(t *testing.T) {
	s := Compute([]journal.Session{
		makeSession("old", oct.AddDate(0, -1, 0), 1.0, 10, 0),
		makeSession("new", oct, 1.0, 10, 0),
	}, oct.AddDate(0, 0, -1))

	if s.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1", s.TotalSessions)
	}
}

func TestCompute_ActionBreakdown(t *testing.T) {
	s := Compute([]journal.Session{
		makeSession("s1", oct, 1.3, 30, 6, "set-large-ui(true)", "notify-scale-increase(115%)", "notify-scale-increase(130%)"),
		makeSession("s2", oct, 1.15, 30, 3, "show-help-prompt", "notify-scale-increase(115%)"),
		makeSession("s3", oct, 1.0, 30, 0),
	}, time.Time{})

	want := []ActionStats{
		{Name: "notify-scale-increase", Count: 3, Sessions: 2, Percent: float64(2) / 3 * 100},
		{Name: "set-large-ui", Count: 1, Sessions: 1, Percent: float64(1) / 3 * 100},
		{Name: "show-help-prompt", Count: 1, Sessions: 1, Percent: float64(1) / 3 * 100},
	}
	if diff := cmp.Diff(want, s.Actions); diff != "" {
		t.Errorf("Actions (-want +got):\n%s", diff)
	}
	if s.ChaoticScrolling != 1 {
		t.Errorf("ChaoticScrolling = %d, want 1", s.ChaoticScrolling)
	}
}

func TestCompute_ScaleDistribution(t *testing.T) {
	s := Compute([]journal.Session{
		makeSession("s1", oct, 1.3, 0, 0),
		makeSession("s2", oct, 1.0, 0, 0),
		makeSession("s3", oct, 1.3, 0, 0),
	}, time.Time{})

	want := []ScaleStats{{Percent: 100, Sessions: 1}, {Percent: 130, Sessions: 2}}
	if diff := cmp.Diff(want, s.Scales); diff != "" {
		t.Errorf("Scales (-want +got):\n%s", diff)
	}
}

func TestCompute_MonthlyTrend(t *testing.T) {
	var sessions []journal.Session
	for i := 0; i < 8; i++ {
		sessions = append(sessions, makeSession("m", oct.AddDate(0, -i, 0), 1.15, 0, 3, "notify-scale-increase(115%)"))
	}
	sessions = append(sessions, makeSession("extra", oct, 1.0, 0, 0))

	s := Compute(sessions, time.Time{})

	if len(s.Monthly) != 6 {
		t.Fatalf("Monthly = %d entries, want 6 (capped)", len(s.Monthly))
	}
	if s.Monthly[0].Month != "2026-10" {
		t.Errorf("Monthly[0] = %q, want most recent first", s.Monthly[0].Month)
	}
	if s.Monthly[0].Sessions != 2 || s.Monthly[0].Adaptations != 1 || s.Monthly[0].Enlarged != 1 {
		t.Errorf("Monthly[0] = %+v", s.Monthly[0])
	}
}

func TestFormat_Overview(t *testing.T) {
	s := Compute([]journal.Session{
		makeSession("s1", oct, 1.15, 150, 3, "set-large-ui(true)", "notify-scale-increase(115%)"),
		makeSession("s2", oct, 1.0, 30, 0),
	}, time.Time{})
	out := Format(s, "")

	for _, want := range []string{"adaptui stats\n", "Overview", "Signals", "Averages", "Adaptations", "Final Scale", "Monthly Trend"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, "1 (50%)") {
		t.Errorf("output missing click difficulty share:\n%s", out)
	}
	if !strings.Contains(out, "3m") {
		t.Errorf("output missing total dwell:\n%s", out)
	}
}

func TestFormat_SingleScaleOmitsDistribution(t *testing.T) {
	s := Compute([]journal.Session{makeSession("s1", oct, 1.0, 10, 0)}, time.Time{})
	if out := Format(s, ""); strings.Contains(out, "Final Scale") {
		t.Error("Final Scale should be omitted when every session ended at the same scale")
	}
}

func TestFormat_Empty(t *testing.T) {
	out := Format(Compute(nil, time.Time{}), "")
	if !strings.Contains(out, "No sessions found") {
		t.Errorf("empty format should show 'No sessions found', got: %s", out)
	}
}

func TestFormat_EmptyWithSince(t *testing.T) {
	out := Format(Compute(nil, oct), "2026-10-05")
	if !strings.Contains(out, "--since 2026-10-05") {
		t.Errorf("header should show the filter, got: %s", out)
	}
	if !strings.Contains(out, "No sessions ended since 2026-10-05") {
		t.Errorf("empty filtered format, got: %s", out)
	}
}

func TestFormatDwell(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{150, "2m 30s"},
		{3600, "1h"},
		{5400, "1h 30m"},
	}

	for _, tt := range tests {
		got := formatDwell(tt.input)
		if got != tt.want {
			t.Errorf("formatDwell(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1000000, "1,000,000"},
	}

	for _, tt := range tests {
		got := formatInt(tt.input)
		if got != tt.want {
			t.Errorf("formatInt(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestShare(t *testing.T) {
	if got := share(1, 3); got != "1 (33%)" {
		t.Errorf("share(1, 3) = %q", got)
	}
	if got := share(0, 0); got != "0" {
		t.Errorf("share(0, 0) = %q", got)
	}
}
