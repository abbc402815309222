package behavior

import "time"

// Thresholds holds the detection constants. The defaults are fixed so that
// recorded sessions replay identically.
type Thresholds struct {
	ScrollMovement        float64       // px a reversal must cover to count
	ScrollWindow          int           // scroll timestamps retained
	ChaosDirectionChanges int           // reversals required (strictly more than)
	ChaosWindowSamples    int           // retained samples required (strictly more than)
	ChaosWindowSpan       time.Duration // oldest..newest sample must be under this
	LongBrowsingDwell     time.Duration // dwell required (strictly more than)
	LongBrowsingSamples   int           // scroll samples required (strictly more than)
	NearMissRadius        float64       // px tolerance around an element's box
	NearMissRetention     int           // near misses retained
	AncestorDepth         int           // parent levels searched for a clickable
	MissesPerStep         int           // consecutive near misses per scale step
	ScaleStepPercent      int           // enlargement per step
	MaxScalePercent       int           // enlargement cap
	FallbackMinAttempts   int           // attempts required (strictly more than)
	FallbackSuccessRatio  float64       // success ratio must fall below this
	FallbackMinNearMisses int           // retained near misses required
}

// DefaultThresholds returns the reference detection constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ScrollMovement:        50,
		ScrollWindow:          20,
		ChaosDirectionChanges: 10,
		ChaosWindowSamples:    15,
		ChaosWindowSpan:       10 * time.Second,
		LongBrowsingDwell:     120 * time.Second,
		LongBrowsingSamples:   10,
		NearMissRadius:        30,
		NearMissRetention:     10,
		AncestorDepth:         3,
		MissesPerStep:         3,
		ScaleStepPercent:      15,
		MaxScalePercent:       175,
		FallbackMinAttempts:   5,
		FallbackSuccessRatio:  0.7,
		FallbackMinNearMisses: 2,
	}
}

// normalize replaces unusable values with the defaults.
func (t Thresholds) normalize() Thresholds {
	d := DefaultThresholds()
	if t.ScrollWindow <= 0 {
		t.ScrollWindow = d.ScrollWindow
	}
	if t.NearMissRetention <= 0 {
		t.NearMissRetention = d.NearMissRetention
	}
	if t.MissesPerStep <= 0 {
		t.MissesPerStep = d.MissesPerStep
	}
	if t.MaxScalePercent < 100 {
		t.MaxScalePercent = d.MaxScalePercent
	}
	if t.ScaleStepPercent < 0 {
		t.ScaleStepPercent = d.ScaleStepPercent
	}
	return t
}
