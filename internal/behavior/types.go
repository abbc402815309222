package behavior

import (
	"math"
	"time"
)

// Snapshot is the derived behavioral state of one observation session.
type Snapshot struct {
	ChaoticScrolling       bool    // rapid scroll reversals detected
	LongBrowsing           bool    // long engaged dwell detected
	ClickDifficulty        bool    // near-miss clicking detected
	ScrollDirectionChanges int     // reversals beyond the movement threshold
	TimeOnPageSeconds      int     // dwell since session start
	MissedClickCount       int     // near misses currently retained
	UIScaleFactor          float64 // 1.0 = normal, 1.15 = +15%
}

// DefaultSnapshot returns the all-false, zero-counter state of a fresh session.
func DefaultSnapshot() Snapshot {
	return Snapshot{UIScaleFactor: 1.0}
}

// ScalePercent returns UIScaleFactor as a rounded percentage.
func (s Snapshot) ScalePercent() int {
	return int(math.Round(s.UIScaleFactor * 100))
}

// Point is a position in screen coordinates.
type Point struct {
	X, Y float64
}

func (p Point) valid() bool {
	return finite(p.X) && finite(p.Y) && p.X >= 0 && p.Y >= 0
}

// Rect is an element's bounding box in screen coordinates.
type Rect struct {
	Left, Top, Width, Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the midpoint of the box.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// ClickEvent is a single pointer click. Target may be nil when the host
// cannot resolve it; the collector then asks the surface.
type ClickEvent struct {
	Point
	Target Element
	At     time.Time
}

// NearMiss records a click that landed just outside an interactive element.
type NearMiss struct {
	Point
	At      time.Time
	Nearest Element
}

type direction int

const (
	directionDown direction = iota
	directionUp
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
