package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/suykerbuyk/adaptive-ui/internal/journal"
)

// Summary holds aggregate metrics computed from journaled sessions.
type Summary struct {
	TotalSessions    int
	TotalAdaptations int
	TotalDwell       int // seconds
	NearMisses       int

	ChaoticScrolling int // sessions that ended with the flag set
	LongBrowsing     int
	ClickDifficulty  int
	LargeUI          int

	AvgScalePercent float64
	MaxScalePercent int
	AvgAdaptations  float64
	AvgDwell        float64 // seconds

	Actions []ActionStats
	Scales  []ScaleStats
	Monthly []MonthStats
}

// ActionStats holds per-action counts.
type ActionStats struct {
	Name     string // e.g. "set-large-ui"
	Count    int
	Sessions int
	Percent  float64 // of sessions
}

// ScaleStats counts sessions by final scale.
type ScaleStats struct {
	Percent  int
	Sessions int
}

// MonthStats holds per-month aggregate metrics.
type MonthStats struct {
	Month       string // YYYY-MM
	Sessions    int
	Adaptations int
	Enlarged    int
}

// Compute builds a Summary from journal sessions, optionally limited to
// sessions that ended at or after since.
func Compute(sessions []journal.Session, since time.Time) Summary {
	var s Summary

	actionMap := make(map[string]*ActionStats)
	scaleMap := make(map[int]int)
	monthMap := make(map[string]*MonthStats)
	scaleTotal := 0

	for _, sess := range sessions {
		if !since.IsZero() && sess.EndedAt.Before(since) {
			continue
		}

		snap := sess.Snapshot
		scale := snap.ScalePercent()

		s.TotalSessions++
		s.TotalAdaptations += len(sess.Timeline)
		s.TotalDwell += snap.TimeOnPageSeconds
		s.NearMisses += snap.MissedClickCount
		scaleTotal += scale
		if scale > s.MaxScalePercent {
			s.MaxScalePercent = scale
		}

		if snap.ChaoticScrolling {
			s.ChaoticScrolling++
		}
		if snap.LongBrowsing {
			s.LongBrowsing++
		}
		if snap.ClickDifficulty {
			s.ClickDifficulty++
		}
		if sess.Mode.LargeUI {
			s.LargeUI++
		}

		// Action breakdown
		seen := make(map[string]bool)
		for _, e := range sess.Timeline {
			name := actionName(e.Action)
			as, ok := actionMap[name]
			if !ok {
				as = &ActionStats{Name: name}
				actionMap[name] = as
			}
			as.Count++
			if !seen[name] {
				as.Sessions++
				seen[name] = true
			}
		}

		scaleMap[scale]++

		// Monthly breakdown
		if !sess.EndedAt.IsZero() {
			month := sess.EndedAt.UTC().Format("2006-01")
			mm, ok := monthMap[month]
			if !ok {
				mm = &MonthStats{Month: month}
				monthMap[month] = mm
			}
			mm.Sessions++
			mm.Adaptations += len(sess.Timeline)
			if scale > 100 {
				mm.Enlarged++
			}
		}
	}

	// Averages (guard division by zero)
	if s.TotalSessions > 0 {
		s.AvgScalePercent = float64(scaleTotal) / float64(s.TotalSessions)
		s.AvgAdaptations = float64(s.TotalAdaptations) / float64(s.TotalSessions)
		s.AvgDwell = float64(s.TotalDwell) / float64(s.TotalSessions)
	}

	// Sort actions by count desc
	for _, as := range actionMap {
		if s.TotalSessions > 0 {
			as.Percent = float64(as.Sessions) / float64(s.TotalSessions) * 100
		}
		s.Actions = append(s.Actions, *as)
	}
	sort.Slice(s.Actions, func(i, j int) bool {
		if s.Actions[i].Count != s.Actions[j].Count {
			return s.Actions[i].Count > s.Actions[j].Count
		}
		return s.Actions[i].Name < s.Actions[j].Name
	})

	// Sort scales ascending
	for pct, n := range scaleMap {
		s.Scales = append(s.Scales, ScaleStats{Percent: pct, Sessions: n})
	}
	sort.Slice(s.Scales, func(i, j int) bool {
		return s.Scales[i].Percent < s.Scales[j].Percent
	})

	// Sort months recent-first, cap at 6
	for _, mm := range monthMap {
		s.Monthly = append(s.Monthly, *mm)
	}
	sort.Slice(s.Monthly, func(i, j int) bool {
		return s.Monthly[i].Month > s.Monthly[j].Month
	})
	if len(s.Monthly) > 6 {
		s.Monthly = s.Monthly[:6]
	}

	return s
}

// actionName strips the argument from a journaled action,
// "notify-scale-increase(115%)" becomes "notify-scale-increase".
func actionName(action string) string {
	name, _, _ := strings.Cut(action, "(")
	return name
}
