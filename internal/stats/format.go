package stats

import (
	"fmt"
	"strings"
)

// Format renders a Summary as aligned terminal output. since is the
// filter as the user typed it, or "".
func Format(s Summary, since string) string {
	header := "adaptui stats\n"
	if since != "" {
		header = fmt.Sprintf("adaptui stats --since %s\n", since)
	}

	if s.TotalSessions == 0 {
		if since != "" {
			return header + fmt.Sprintf("\n  No sessions ended since %s.\n", since)
		}
		return header + "\n  No sessions found. Run `adaptui replay` or `adaptui watch` first.\n"
	}

	var b strings.Builder
	b.WriteString(header)

	// Overview
	b.WriteString("\nOverview\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "sessions", s.TotalSessions)
	fmt.Fprintf(&b, "  %-20s %d\n", "adaptations", s.TotalAdaptations)
	fmt.Fprintf(&b, "  %-20s %s\n", "total dwell", formatDwell(s.TotalDwell))
	fmt.Fprintf(&b, "  %-20s %s\n", "near misses", formatInt(s.NearMisses))

	// Signals
	b.WriteString("\nSignals\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "chaotic scrolling", share(s.ChaoticScrolling, s.TotalSessions))
	fmt.Fprintf(&b, "  %-20s %s\n", "long browsing", share(s.LongBrowsing, s.TotalSessions))
	fmt.Fprintf(&b, "  %-20s %s\n", "click difficulty", share(s.ClickDifficulty, s.TotalSessions))
	fmt.Fprintf(&b, "  %-20s %s\n", "large ui", share(s.LargeUI, s.TotalSessions))

	// Averages
	b.WriteString("\nAverages\n")
	fmt.Fprintf(&b, "  %-20s %.0f%% (max %d%%)\n", "scale", s.AvgScalePercent, s.MaxScalePercent)
	fmt.Fprintf(&b, "  %-20s %.1f\n", "adaptations/session", s.AvgAdaptations)
	fmt.Fprintf(&b, "  %-20s %s\n", "dwell", formatDwell(int(s.AvgDwell)))

	// Actions
	if len(s.Actions) > 0 {
		b.WriteString("\nAdaptations\n")
		for _, a := range s.Actions {
			fmt.Fprintf(&b, "  %-24s %3d in %d sessions (%d%%)\n", a.Name, a.Count, a.Sessions, int(a.Percent))
		}
	}

	// Scale distribution
	if len(s.Scales) > 1 {
		b.WriteString("\nFinal Scale\n")
		for _, sc := range s.Scales {
			fmt.Fprintf(&b, "  %4d%%   %3d sessions\n", sc.Percent, sc.Sessions)
		}
	}

	// Monthly Trend
	if len(s.Monthly) > 0 {
		b.WriteString("\nMonthly Trend\n")
		for _, m := range s.Monthly {
			fmt.Fprintf(&b, "  %-12s %3d sessions   %4d adaptations   %3d enlarged\n",
				m.Month, m.Sessions, m.Adaptations, m.Enlarged)
		}
	}

	return b.String()
}

// share formats n of total as "n (p%)".
func share(n, total int) string {
	if total <= 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%d%%)", n, n*100/total)
}

// formatInt formats an integer with comma separators.
func formatInt(n int) string {
	if n < 0 {
		return "0"
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// formatDwell formats seconds as "Xh Ym", "Xm Ys" or "Xs".
func formatDwell(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	sec := seconds % 60
	switch {
	case h > 0 && m == 0:
		return fmt.Sprintf("%dh", h)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0 && sec == 0:
		return fmt.Sprintf("%dm", m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
