package behavior

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// Scroll records a vertical scroll offset sampled at the given time.
// Invalid offsets are ignored without touching any counter.
func (c *Collector) Scroll(y float64, at time.Time) {
	if !finite(y) || y < 0 || at.IsZero() {
		return
	}

	dir := directionUp
	if y > c.lastY {
		dir = directionDown
	}
	if dir != c.lastDir && math.Abs(y-c.lastY) > c.th.ScrollMovement {
		c.snapshot.ScrollDirectionChanges++
		c.lastDir = dir
	}
	c.lastY = y

	c.scrollTimes = append(c.scrollTimes, at)
	if over := len(c.scrollTimes) - c.th.ScrollWindow; over > 0 {
		c.scrollTimes = append(c.scrollTimes[:0], c.scrollTimes[over:]...)
	}

	if c.snapshot.ChaoticScrolling {
		return
	}
	if c.snapshot.ScrollDirectionChanges > c.th.ChaosDirectionChanges && len(c.scrollTimes) > c.th.ChaosWindowSamples {
		span := c.scrollTimes[len(c.scrollTimes)-1].Sub(c.scrollTimes[0])
		if span < c.th.ChaosWindowSpan {
			c.snapshot.ChaoticScrolling = true
			c.log.Debug("chaotic scrolling detected",
				zap.Int("direction_changes", c.snapshot.ScrollDirectionChanges),
				zap.Duration("span", span))
		}
	}
}
