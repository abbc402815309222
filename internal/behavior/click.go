package behavior

import (
	"math"

	"go.uber.org/zap"
)

// Click records a pointer click and updates the click-difficulty signals.
// Clicks with invalid coordinates or no timestamp are ignored.
func (c *Collector) Click(ev ClickEvent) {
	if !ev.Point.valid() || ev.At.IsZero() {
		return
	}
	c.attempts++

	target := ev.Target
	if target == nil && c.surface != nil {
		if el, ok := c.surface.ElementAt(ev.Point); ok {
			target = el
		}
	}

	if IsClickable(target, c.th.AncestorDepth) {
		c.successes++
		c.consecutive = 0
	} else if nearest := c.nearestClickable(ev.Point); nearest != nil {
		c.recordNearMiss(NearMiss{Point: ev.Point, At: ev.At, Nearest: nearest})
	}

	c.checkFallback()
}

func (c *Collector) recordNearMiss(nm NearMiss) {
	c.nearMisses = append(c.nearMisses, nm)
	if over := len(c.nearMisses) - c.th.NearMissRetention; over > 0 {
		c.nearMisses = append(c.nearMisses[:0], c.nearMisses[over:]...)
	}
	c.snapshot.MissedClickCount = len(c.nearMisses)
	c.consecutive++

	if c.consecutive < c.th.MissesPerStep {
		return
	}
	c.consecutive = 0
	c.snapshot.ClickDifficulty = true

	next := c.scalePercent + c.th.ScaleStepPercent
	if next > c.th.MaxScalePercent {
		next = c.th.MaxScalePercent
	}
	if next != c.scalePercent {
		c.scalePercent = next
		c.snapshot.UIScaleFactor = float64(next) / 100
		c.log.Info("ui scale increased after click difficulty",
			zap.Int("percent", next),
			zap.Int("near_misses", len(c.nearMisses)))
	}
}

// checkFallback applies the coarse success-ratio rule. It is independent of
// the consecutive-miss rule; either one sets ClickDifficulty.
func (c *Collector) checkFallback() {
	if c.snapshot.ClickDifficulty || c.attempts <= c.th.FallbackMinAttempts {
		return
	}
	ratio := float64(c.successes) / float64(c.attempts)
	if ratio < c.th.FallbackSuccessRatio && len(c.nearMisses) >= c.th.FallbackMinNearMisses {
		c.snapshot.ClickDifficulty = true
		c.log.Debug("click difficulty detected by success ratio",
			zap.Float64("ratio", ratio),
			zap.Int("attempts", c.attempts))
	}
}

// nearestClickable returns the button, link or button-role element closest
// to p whose box lies within the near-miss radius, or nil. Descendants of
// such elements are not candidates.
func (c *Collector) nearestClickable(p Point) Element {
	if c.surface == nil {
		return nil
	}
	r := c.th.NearMissRadius

	var (
		nearest Element
		best    = math.Inf(1)
	)
	for _, el := range c.surface.InteractiveElements() {
		if el == nil || !isInteractive(el) {
			continue
		}
		box, ok := c.surface.BoundingBox(el)
		if !ok {
			continue
		}
		center := box.Center()
		dist := math.Hypot(p.X-center.X, p.Y-center.Y)

		nearX := p.X >= box.Left-r && p.X <= box.Right()+r
		nearY := p.Y >= box.Top-r && p.Y <= box.Bottom()+r
		if nearX && nearY && dist <= r+math.Max(box.Width, box.Height)/2 && dist < best {
			nearest = el
			best = dist
		}
	}
	return nearest
}
