package behavior

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeElement struct {
	tag, role string
	parent    *fakeElement
}

func (e *fakeElement) Tag() string  { return e.tag }
func (e *fakeElement) Role() string { return e.role }
func (e *fakeElement) Parent() Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

type fakeSurface struct {
	boxes map[*fakeElement]Rect
	order []*fakeElement
	under *fakeElement
}

func newSurface() *fakeSurface {
	return &fakeSurface{boxes: make(map[*fakeElement]Rect)}
}

func (s *fakeSurface) add(e *fakeElement, r Rect) *fakeElement {
	s.boxes[e] = r
	s.order = append(s.order, e)
	return e
}

func (s *fakeSurface) ElementAt(Point) (Element, bool) {
	if s.under == nil {
		return nil, false
	}
	return s.under, true
}

func (s *fakeSurface) InteractiveElements() []Element {
	out := make([]Element, 0, len(s.order))
	for _, e := range s.order {
		out = append(out, e)
	}
	return out
}

func (s *fakeSurface) BoundingBox(e Element) (Rect, bool) {
	fe, ok := e.(*fakeElement)
	if !ok {
		return Rect{}, false
	}
	r, ok := s.boxes[fe]
	return r, ok
}

// buttonSurface has one button at (100,100) sized 80x40.
func buttonSurface() (*fakeSurface, *fakeElement) {
	s := newSurface()
	btn := s.add(&fakeElement{tag: "button"}, Rect{Left: 100, Top: 100, Width: 80, Height: 40})
	return s, btn
}

var plainDiv = &fakeElement{tag: "div"}

func nearMissAt(i int) ClickEvent {
	return ClickEvent{Point: Point{X: 90, Y: 110}, Target: plainDiv, At: t0.Add(time.Duration(i) * time.Second)}
}

func farClickAt(i int) ClickEvent {
	return ClickEvent{Point: Point{X: 600, Y: 600}, Target: plainDiv, At: t0.Add(time.Duration(i) * time.Second)}
}

func TestNewCollector_Defaults(t *testing.T) {
	c := NewCollector(t0, nil)
	if got := c.Snapshot(); got != DefaultSnapshot() {
		t.Errorf("snapshot = %+v, want defaults", got)
	}
	if c.Snapshot().UIScaleFactor != 1.0 {
		t.Errorf("UIScaleFactor = %v, want 1.0", c.Snapshot().UIScaleFactor)
	}
}

func TestScroll_SameDirectionNeverCountsChanges(t *testing.T) {
	c := NewCollector(t0, nil)
	for i := 1; i <= 50; i++ {
		c.Scroll(float64(i*200), t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	if c.Snapshot().ScrollDirectionChanges != 0 {
		t.Errorf("direction changes = %d, want 0", c.Snapshot().ScrollDirectionChanges)
	}

	up := NewCollector(t0, nil)
	up.Scroll(10000, t0)
	for i := 1; i <= 50; i++ {
		up.Scroll(float64(10000-i*100), t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	// the first reversal away from the initial downward direction counts once
	if up.Snapshot().ScrollDirectionChanges != 1 {
		t.Errorf("direction changes = %d, want 1", up.Snapshot().ScrollDirectionChanges)
	}
	if up.Snapshot().ChaoticScrolling {
		t.Error("monotonic scrolling must not be chaotic")
	}
}

func TestScroll_ChaoticDetection(t *testing.T) {
	c := NewCollector(t0, nil)
	at := func(i int) time.Time { return t0.Add(time.Duration(i) * 200 * time.Millisecond) }

	// 100, 0, 100, 0 ... every sample after the first reverses by 100px.
	for i := 0; i < 15; i++ {
		c.Scroll(float64(100*((i+1)%2)), at(i))
	}
	if c.Snapshot().ChaoticScrolling {
		t.Fatal("chaotic with only 15 samples retained")
	}
	c.Scroll(float64(100*(16%2)), at(15))
	snap := c.Snapshot()
	if !snap.ChaoticScrolling {
		t.Fatalf("expected chaotic scrolling, snapshot = %+v", snap)
	}
	if snap.ScrollDirectionChanges != 15 {
		t.Errorf("direction changes = %d, want 15", snap.ScrollDirectionChanges)
	}

	// calm scrolling afterwards keeps the flag
	for i := 16; i < 60; i++ {
		c.Scroll(float64(i*500), t0.Add(time.Duration(i)*5*time.Second))
	}
	if !c.Snapshot().ChaoticScrolling {
		t.Error("chaotic scrolling must stay true for the session")
	}
}

func TestScroll_SlowReversalsNotChaotic(t *testing.T) {
	c := NewCollector(t0, nil)
	for i := 0; i < 40; i++ {
		c.Scroll(float64(100*((i+1)%2)), t0.Add(time.Duration(i)*2*time.Second))
	}
	if c.Snapshot().ScrollDirectionChanges <= 10 {
		t.Fatalf("direction changes = %d, want > 10", c.Snapshot().ScrollDirectionChanges)
	}
	if c.Snapshot().ChaoticScrolling {
		t.Error("reversals spread over more than 10s must not be chaotic")
	}
}

func TestScroll_SmallReversalsIgnored(t *testing.T) {
	c := NewCollector(t0, nil)
	for i := 0; i < 40; i++ {
		c.Scroll(float64(40*((i+1)%2)), t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	if c.Snapshot().ScrollDirectionChanges != 0 {
		t.Errorf("direction changes = %d, want 0 for 40px jitter", c.Snapshot().ScrollDirectionChanges)
	}
}

func TestScroll_InvalidIgnored(t *testing.T) {
	c := NewCollector(t0, nil)
	c.Scroll(math.NaN(), t0)
	c.Scroll(math.Inf(1), t0)
	c.Scroll(-20, t0)
	c.Scroll(300, time.Time{})
	if c.ScrollSamples() != 0 {
		t.Errorf("samples = %d, want 0", c.ScrollSamples())
	}
	if c.Snapshot() != DefaultSnapshot() {
		t.Errorf("snapshot changed by invalid input: %+v", c.Snapshot())
	}
}

func TestScroll_WindowBounded(t *testing.T) {
	c := NewCollector(t0, nil)
	for i := 0; i < 100; i++ {
		c.Scroll(float64(i), t0.Add(time.Duration(i)*time.Millisecond))
	}
	if c.ScrollSamples() != 20 {
		t.Errorf("samples = %d, want 20", c.ScrollSamples())
	}
}

func TestTick_LongBrowsing(t *testing.T) {
	c := NewCollector(t0, nil)
	for i := 0; i < 11; i++ {
		c.Scroll(float64(i*100), t0.Add(time.Duration(i)*time.Second))
	}
	c.Tick(t0.Add(120 * time.Second))
	if c.Snapshot().LongBrowsing {
		t.Fatal("long browsing at exactly 120s")
	}
	c.Tick(t0.Add(121 * time.Second))
	snap := c.Snapshot()
	if !snap.LongBrowsing {
		t.Fatal("expected long browsing at 121s with 11 samples")
	}
	if snap.TimeOnPageSeconds != 121 {
		t.Errorf("TimeOnPageSeconds = %d, want 121", snap.TimeOnPageSeconds)
	}
}

func TestTick_IdleNotLongBrowsing(t *testing.T) {
	c := NewCollector(t0, nil)
	for i := 0; i < 5; i++ {
		c.Scroll(float64(i*100), t0.Add(time.Duration(i)*time.Second))
	}
	c.Tick(t0.Add(121 * time.Second))
	if c.Snapshot().LongBrowsing {
		t.Error("long browsing with only 5 scroll samples")
	}
}

func TestTick_Monotonic(t *testing.T) {
	c := NewCollector(t0, nil)
	c.Tick(t0.Add(10 * time.Second))
	c.Tick(t0.Add(5 * time.Second))
	c.Tick(t0.Add(-time.Hour))
	if c.Snapshot().TimeOnPageSeconds != 10 {
		t.Errorf("TimeOnPageSeconds = %d, want 10", c.Snapshot().TimeOnPageSeconds)
	}
	c.Tick(t0.Add(10*time.Second + 900*time.Millisecond))
	if c.Snapshot().TimeOnPageSeconds != 10 {
		t.Errorf("TimeOnPageSeconds = %d, want whole seconds", c.Snapshot().TimeOnPageSeconds)
	}
}

func TestReset(t *testing.T) {
	s, _ := buttonSurface()
	c := NewCollector(t0, s)
	for i := 0; i < 20; i++ {
		c.Scroll(float64(100*((i+1)%2)), t0.Add(time.Duration(i)*100*time.Millisecond))
		c.Click(nearMissAt(i))
	}
	c.Tick(t0.Add(200 * time.Second))
	before := c.Snapshot()
	if !before.ChaoticScrolling || !before.LongBrowsing || !before.ClickDifficulty {
		t.Fatalf("setup did not trigger every signal: %+v", before)
	}

	later := t0.Add(300 * time.Second)
	c.Reset(later)
	if got := c.Snapshot(); got != DefaultSnapshot() {
		t.Errorf("after reset = %+v, want defaults", got)
	}
	if len(c.NearMisses()) != 0 || c.ScrollSamples() != 0 {
		t.Error("reset must clear retained near misses and scroll samples")
	}

	c.Tick(later.Add(3 * time.Second))
	if c.Snapshot().TimeOnPageSeconds != 3 {
		t.Errorf("TimeOnPageSeconds = %d, want 3 after restart", c.Snapshot().TimeOnPageSeconds)
	}
}
