// Package live drives the adaptation engine from interaction events that
// arrive in real time, for example JSON lines piped from a browser bridge.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suykerbuyk/adaptive-ui/internal/adapt"
	"github.com/suykerbuyk/adaptive-ui/internal/behavior"
	"github.com/suykerbuyk/adaptive-ui/internal/journal"
	"github.com/suykerbuyk/adaptive-ui/internal/mode"
	"github.com/suykerbuyk/adaptive-ui/internal/recording"
)

// Options configures a live session. The zero value uses the default
// thresholds, a one-second dwell timer, a fresh mode store and a log
// presenter.
type Options struct {
	Thresholds   *behavior.Thresholds
	TickInterval time.Duration
	Store        *mode.Store
	Presenter    adapt.Presenter
	Clock        behavior.Clock
	Logger       *zap.Logger

	// Paced holds each event back until its t offset has elapsed, so a
	// recording plays at its original speed.
	Paced bool

	// OnAdaptation runs on the scope goroutine for every dispatched action.
	OnAdaptation func(Adaptation)
}

// Adaptation is one action applied during a live session.
type Adaptation struct {
	At     time.Duration // since the session started
	Action adapt.Action
}

// Result summarizes a finished live session.
type Result struct {
	Events   int
	Dropped  int
	Duration time.Duration
	Snapshot behavior.Snapshot
	Mode     mode.Mode
	Timeline []Adaptation
}

// streamHost is the behavior.Host for events decoded from a stream.
type streamHost struct {
	mu       sync.Mutex
	listener behavior.Listener
}

func (h *streamHost) Subscribe(l behavior.Listener) (func(), error) {
	h.mu.Lock()
	h.listener = l
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		h.listener = nil
		h.mu.Unlock()
	}, nil
}

func (h *streamHost) current() behavior.Listener {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.listener
}

type item struct {
	ev  recording.Event
	err error
}

// Run observes events read from r until EOF, a malformed line or ctx is
// done. Event timestamps come from the clock at arrival; tick events are
// ignored because the scope runs its own dwell timer. A reader blocked in
// Read keeps its goroutine until Read returns.
func Run(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	th := behavior.DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	store := opts.Store
	if store == nil {
		store = mode.NewStore(mode.Mode{})
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = adapt.LogPresenter{Log: logger}
	}
	clock := opts.Clock
	if clock == nil {
		clock = behavior.SystemClock
	}

	controller := adapt.NewController()
	start := clock.Now()
	var timeline []Adaptation // scope goroutine until Stop returns

	host := &streamHost{}
	scope := behavior.NewScope(host, nil,
		behavior.WithClock(clock),
		behavior.WithTickInterval(interval),
		behavior.WithBuffer(4096),
		behavior.WithCollectorOptions(behavior.WithThresholds(th)),
		behavior.WithScopeLogger(logger),
		behavior.WithResetHook(controller.Reset),
		behavior.WithObserver(func(snap behavior.Snapshot) {
			actions := controller.OnBehaviorChanged(&snap, store.Mode())
			if len(actions) == 0 {
				return
			}
			adapt.Dispatch(actions, store, presenter)
			at := clock.Now().Sub(start)
			for _, a := range actions {
				ad := Adaptation{At: at, Action: a}
				timeline = append(timeline, ad)
				if opts.OnAdaptation != nil {
					opts.OnAdaptation(ad)
				}
			}
		}))
	if err := scope.Start(ctx); err != nil {
		return nil, fmt.Errorf("start observation: %w", err)
	}

	readCtx, stopRead := context.WithCancel(ctx)
	defer stopRead()
	items := decode(readCtx, r)

	var (
		surface *recording.StaticSurface
		events  int
		readErr error
	)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case it, ok := <-items:
			if !ok {
				break loop
			}
			if it.err != nil {
				readErr = it.err
				break loop
			}
			if opts.Paced && !waitUntil(ctx, clock, start.Add(time.Duration(it.ev.T)*time.Millisecond)) {
				break loop
			}
			events++

			l := host.current()
			switch it.ev.Type {
			case recording.TypeSurface:
				surface = recording.NewStaticSurface(it.ev.Elements)
				scope.SetSurface(surface)
			case recording.TypeScroll:
				if l != nil {
					l.OnScroll(it.ev.Y, clock.Now())
				}
			case recording.TypeClick:
				var target behavior.Element
				if surface != nil && it.ev.Target != "" {
					if el, ok := surface.Lookup(it.ev.Target); ok {
						target = el
					}
				}
				if l != nil {
					l.OnClick(behavior.ClickEvent{
						Point:  behavior.Point{X: it.ev.X, Y: it.ev.Y},
						Target: target,
						At:     clock.Now(),
					})
				}
			case recording.TypeReset:
				scope.Reset()
			}
		}
	}

	scope.Flush()
	scope.Stop()

	if dropped := scope.Dropped(); dropped > 0 {
		logger.Warn("events dropped", zap.Int("dropped", dropped))
	}
	if readErr != nil {
		return nil, readErr
	}

	return &Result{
		Events:   events,
		Dropped:  scope.Dropped(),
		Duration: clock.Now().Sub(start),
		Snapshot: scope.Snapshot(),
		Mode:     store.Mode(),
		Timeline: timeline,
	}, nil
}

// decode streams events from r until EOF, the first error or ctx is done.
func decode(ctx context.Context, r io.Reader) <-chan item {
	items := make(chan item)
	go func() {
		defer close(items)
		dec := recording.NewDecoder(r)
		for {
			ev, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case items <- item{ev: ev, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return items
}

// waitUntil sleeps until the clock reaches at. It reports false if ctx
// ended first.
func waitUntil(ctx context.Context, clock behavior.Clock, at time.Time) bool {
	wait := at.Sub(clock.Now())
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Session converts the result to a journal session ending at ended. The
// recording id is generated since a stream has no file name.
func (r *Result) Session(source string, ended time.Time) journal.Session {
	timeline := make([]journal.Entry, 0, len(r.Timeline))
	for _, a := range r.Timeline {
		timeline = append(timeline, journal.Entry{Offset: a.At, Action: a.Action.String()})
	}
	return journal.Session{
		RecordingID: "live-" + uuid.NewString(),
		Source:      source,
		StartedAt:   ended.Add(-r.Duration),
		EndedAt:     ended,
		Snapshot:    r.Snapshot,
		Mode:        r.Mode,
		Timeline:    timeline,
	}
}
