// Package behavior derives behavioral signals (chaotic scrolling, long
// browsing, click difficulty, UI scale) from raw interaction events.
//
// A Collector is a plain state machine and is not safe for concurrent use.
// Scope wraps one in a single event-loop goroutine for live hosts.
package behavior

import (
	"time"

	"go.uber.org/zap"
)

// Collector accumulates interaction events into a Snapshot.
type Collector struct {
	th      Thresholds
	surface Surface
	log     *zap.Logger

	start    time.Time
	snapshot Snapshot

	// scroll tracking
	lastY       float64
	lastDir     direction
	scrollTimes []time.Time

	// click tracking
	attempts     int
	successes    int
	consecutive  int
	nearMisses   []NearMiss
	scalePercent int
}

// Option configures a Collector.
type Option func(*Collector)

// WithThresholds overrides the detection constants.
func WithThresholds(th Thresholds) Option {
	return func(c *Collector) { c.th = th.normalize() }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCollector creates a collector whose dwell clock starts at start.
// surface may be nil; near-miss detection is then disabled.
func NewCollector(start time.Time, surface Surface, opts ...Option) *Collector {
	c := &Collector{
		th:      DefaultThresholds(),
		surface: surface,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset(start)
	return c
}

// SetSurface replaces the hit-testing surface, e.g. after the page content
// changed. Counters are kept.
func (c *Collector) SetSurface(s Surface) {
	c.surface = s
}

// Snapshot returns a copy of the current derived state.
func (c *Collector) Snapshot() Snapshot {
	return c.snapshot
}

// NearMisses returns the retained near misses, oldest first.
func (c *Collector) NearMisses() []NearMiss {
	out := make([]NearMiss, len(c.nearMisses))
	copy(out, c.nearMisses)
	return out
}

// ScrollSamples returns how many scroll timestamps are currently retained.
func (c *Collector) ScrollSamples() int {
	return len(c.scrollTimes)
}

// LongBrowsingDue returns the earliest tick time that would set
// LongBrowsing with the scroll samples retained now. ok is false when no
// tick can set it before another event arrives.
func (c *Collector) LongBrowsingDue() (due time.Time, ok bool) {
	if c.snapshot.LongBrowsing || len(c.scrollTimes) <= c.th.LongBrowsingSamples {
		return time.Time{}, false
	}
	secs := c.th.LongBrowsingDwell/time.Second + 1
	return c.start.Add(secs * time.Second), true
}

// Reset zeroes every counter and flag and restarts the dwell clock at now.
func (c *Collector) Reset(now time.Time) {
	c.start = now
	c.snapshot = DefaultSnapshot()
	c.lastY = 0
	c.lastDir = directionDown
	c.scrollTimes = c.scrollTimes[:0]
	c.attempts = 0
	c.successes = 0
	c.consecutive = 0
	c.nearMisses = c.nearMisses[:0]
	c.scalePercent = 100
}

// Tick advances the dwell counter to the whole seconds elapsed since start.
func (c *Collector) Tick(now time.Time) {
	if now.IsZero() || now.Before(c.start) {
		return
	}
	elapsed := int(now.Sub(c.start) / time.Second)
	if elapsed > c.snapshot.TimeOnPageSeconds {
		c.snapshot.TimeOnPageSeconds = elapsed
	}

	dwell := time.Duration(c.snapshot.TimeOnPageSeconds) * time.Second
	if !c.snapshot.LongBrowsing && dwell > c.th.LongBrowsingDwell && len(c.scrollTimes) > c.th.LongBrowsingSamples {
		c.snapshot.LongBrowsing = true
		c.log.Debug("long browsing detected",
			zap.Int("seconds", c.snapshot.TimeOnPageSeconds),
			zap.Int("scroll_samples", len(c.scrollTimes)))
	}
}
