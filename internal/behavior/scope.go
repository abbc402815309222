package behavior

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrInit is returned by Scope.Start when the host refuses the listener.
// The application keeps working without adaptive behavior.
var ErrInit = errors.New("observation scope init failed")

// Listener receives raw interaction events from a host.
type Listener interface {
	OnScroll(y float64, at time.Time)
	OnClick(ev ClickEvent)
}

// Host is the interactive environment a scope observes.
type Host interface {
	Subscribe(l Listener) (cancel func(), err error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

type eventKind int

const (
	eventScroll eventKind = iota
	eventClick
	eventReset
	eventSurface
	eventFlush
)

type event struct {
	kind    eventKind
	y       float64
	at      time.Time
	click   ClickEvent
	surface Surface
	ack     chan struct{}
}

// Scope is one mounted observation session. All collector state is owned by
// a single loop goroutine; events are processed in arrival order and ticks
// interleave only between events.
type Scope struct {
	host     Host
	surface  Surface
	clock    Clock
	interval time.Duration
	observer func(Snapshot)
	onReset  func()
	copts    []Option
	log      *zap.Logger

	events chan event
	done   chan struct{}

	mu          sync.Mutex
	snap        Snapshot
	started     bool
	running     bool
	stopLoop    context.CancelFunc
	unsubscribe func()
	releaseOnce sync.Once

	dropped   atomic.Int64
	collector *Collector // loop goroutine only
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithClock sets the time source used for ticks and the dwell start.
func WithClock(c Clock) ScopeOption {
	return func(s *Scope) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTickInterval sets the dwell timer period. Defaults to one second.
func WithTickInterval(d time.Duration) ScopeOption {
	return func(s *Scope) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithObserver registers fn to run on the loop goroutine after every
// snapshot change.
func WithObserver(fn func(Snapshot)) ScopeOption {
	return func(s *Scope) { s.observer = fn }
}

// WithResetHook registers fn to run on the loop goroutine right after a
// Reset is applied, before the reset snapshot is published.
func WithResetHook(fn func()) ScopeOption {
	return func(s *Scope) { s.onReset = fn }
}

// WithCollectorOptions passes options through to the collector.
func WithCollectorOptions(opts ...Option) ScopeOption {
	return func(s *Scope) { s.copts = append(s.copts, opts...) }
}

// WithBuffer sets how many pending events the scope queues before dropping.
func WithBuffer(n int) ScopeOption {
	return func(s *Scope) {
		if n > 0 {
			s.events = make(chan event, n)
		}
	}
}

// WithScopeLogger sets the diagnostics logger for the scope and its collector.
func WithScopeLogger(l *zap.Logger) ScopeOption {
	return func(s *Scope) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScope creates an observation scope. host may be nil in headless
// environments; the scope then reports default signals plus dwell time.
func NewScope(host Host, surface Surface, opts ...ScopeOption) *Scope {
	s := &Scope{
		host:     host,
		surface:  surface,
		clock:    SystemClock,
		interval: time.Second,
		log:      zap.NewNop(),
		events:   make(chan event, 256),
		done:     make(chan struct{}),
		snap:     DefaultSnapshot(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers with the host and starts the event loop. A registration
// failure returns an error wrapping ErrInit and leaves the scope inert.
func (s *Scope) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true

	if s.host == nil {
		s.log.Warn("no interaction host; adaptive signals stay at defaults")
	} else {
		cancel, err := s.host.Subscribe(listener{s})
		if err != nil {
			s.log.Warn("adaptive behavior disabled", zap.Error(err))
			return fmt.Errorf("%w: subscribe: %w", ErrInit, err)
		}
		s.unsubscribe = cancel
	}

	opts := append([]Option{WithLogger(s.log)}, s.copts...)
	s.collector = NewCollector(s.clock.Now(), s.surface, opts...)
	s.snap = s.collector.Snapshot()

	loopCtx, stop := context.WithCancel(ctx)
	s.stopLoop = stop
	s.running = true
	go s.run(loopCtx)
	return nil
}

// Stop deregisters from the host, stops the timer and waits for the loop to
// exit. It is safe to call more than once and on a scope that never started.
func (s *Scope) Stop() {
	s.mu.Lock()
	running := s.running
	stop := s.stopLoop
	s.mu.Unlock()
	if !running {
		return
	}
	stop()
	<-s.done
}

// Snapshot returns the latest published snapshot.
func (s *Scope) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Dropped returns how many host events were discarded because the queue was full.
func (s *Scope) Dropped() int {
	return int(s.dropped.Load())
}

// Reset zeroes all signals and restarts the dwell timer. It is serialized
// with the event stream.
func (s *Scope) Reset() {
	s.send(event{kind: eventReset})
}

// SetSurface swaps the hit-testing surface after the events already queued.
func (s *Scope) SetSurface(surface Surface) {
	s.send(event{kind: eventSurface, surface: surface})
}

// Flush blocks until every event queued before the call has been applied
// and published, or the scope stops.
func (s *Scope) Flush() {
	ack := make(chan struct{})
	if !s.send(event{kind: eventFlush, ack: ack}) {
		return
	}
	select {
	case <-ack:
	case <-s.done:
	}
}

// send queues a control event, blocking while the queue is full. It reports
// false when the scope is not running.
func (s *Scope) send(ev event) bool {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return false
	}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Scope) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		s.release()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ev)
		case <-ticker.C:
			s.collector.Tick(s.clock.Now())
		}
		s.publish()
	}
}

func (s *Scope) handle(ev event) {
	switch ev.kind {
	case eventScroll:
		s.collector.Scroll(ev.y, ev.at)
	case eventClick:
		s.collector.Click(ev.click)
	case eventReset:
		s.collector.Reset(s.clock.Now())
		if s.onReset != nil {
			s.onReset()
		}
	case eventSurface:
		s.collector.SetSurface(ev.surface)
	case eventFlush:
		close(ev.ack)
	}
}

func (s *Scope) publish() {
	next := s.collector.Snapshot()
	s.mu.Lock()
	changed := next != s.snap
	s.snap = next
	s.mu.Unlock()
	if changed && s.observer != nil {
		s.observer(next)
	}
}

func (s *Scope) release() {
	s.releaseOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

func (s *Scope) enqueue(ev event) {
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
	}
}

// listener adapts host callbacks onto the scope queue. Sends never block
// the host.
type listener struct{ s *Scope }

func (l listener) OnScroll(y float64, at time.Time) {
	l.s.enqueue(event{kind: eventScroll, y: y, at: at})
}

func (l listener) OnClick(ev ClickEvent) {
	l.s.enqueue(event{kind: eventClick, click: ev})
}
