// Package replay drives the collector and adaptation controller over a
// recorded interaction session.
package replay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/adaptive-ui/internal/adapt"
	"github.com/suykerbuyk/adaptive-ui/internal/behavior"
	"github.com/suykerbuyk/adaptive-ui/internal/mode"
	"github.com/suykerbuyk/adaptive-ui/internal/recording"
)

// epoch anchors recordings, whose timestamps are relative.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Options configures a replay. The zero value uses the default thresholds,
// a one-second dwell timer and a log presenter.
type Options struct {
	Thresholds   *behavior.Thresholds
	TickInterval time.Duration
	InitialMode  mode.Mode
	Presenter    adapt.Presenter
	Logger       *zap.Logger
}

// Step is one adaptation produced during a replay.
type Step struct {
	Offset time.Duration
	Action adapt.Action
}

// Result is the outcome of a replay.
type Result struct {
	RecordingID string
	Events      int
	Duration    time.Duration
	Snapshot    behavior.Snapshot
	Mode        mode.Mode
	Timeline    []Step
}

type runner struct {
	collector  *behavior.Collector
	controller *adapt.Controller
	store      *mode.Store
	presenter  adapt.Presenter
	surface    *recording.StaticSurface
	interval   time.Duration
	lastTick   time.Time
	timeline   []Step
}

// Run replays rec from a fresh collector, controller and mode store. The
// controller is consulted after every event and every synthetic dwell tick,
// and its actions are dispatched before the next event.
func Run(ctx context.Context, rec *recording.Recording, opts Options) (*Result, error) {
	if rec == nil {
		return nil, fmt.Errorf("replay: nil recording")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("recording", rec.ID))

	th := behavior.DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = adapt.LogPresenter{Log: logger}
	}

	collector := behavior.NewCollector(epoch, nil,
		behavior.WithThresholds(th),
		behavior.WithLogger(logger))

	r := &runner{
		collector:  collector,
		controller: adapt.NewController(),
		store:      mode.NewStore(opts.InitialMode),
		presenter:  presenter,
		interval:   interval,
		lastTick:   epoch,
	}

	for i, ev := range rec.Events {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay %s: %w", rec.ID, err)
		}
		if !ev.InRange() {
			logger.Warn("event offset out of range, ignored", zap.Int("event", i), zap.Int64("t", ev.T))
			continue
		}
		at := ev.At(epoch)
		if err := r.tickUntil(ctx, at); err != nil {
			return nil, fmt.Errorf("replay %s: %w", rec.ID, err)
		}
		if err := r.apply(ev, at); err != nil {
			return nil, fmt.Errorf("replay %s: event %d: %w", rec.ID, i, err)
		}
		r.evaluate(at)
	}

	res := &Result{
		RecordingID: rec.ID,
		Events:      len(rec.Events),
		Duration:    rec.Duration(),
		Snapshot:    r.collector.Snapshot(),
		Mode:        r.store.Mode(),
		Timeline:    r.timeline,
	}
	logger.Debug("replay finished",
		zap.Int("events", res.Events),
		zap.Int("adaptations", len(res.Timeline)))
	return res, nil
}

// tickUntil fires the dwell timer at the interval boundaries up to at, the
// way the live scope ticker would have. Between events only the dwell
// counter moves, so runs of boundaries that cannot change a signal are
// collapsed into their last tick.
func (r *runner) tickUntil(ctx context.Context, at time.Time) error {
	if !at.After(r.lastTick) {
		return nil
	}
	left := int64(at.Sub(r.lastTick) / r.interval)
	for left > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := left
		if due, ok := r.collector.LongBrowsingDue(); ok {
			step = min(r.boundariesUntil(due), left)
		}
		next := r.lastTick.Add(time.Duration(step) * r.interval)
		r.collector.Tick(next)
		r.evaluate(next)
		r.lastTick = next
		left -= step
	}
	return nil
}

// boundariesUntil counts the interval boundaries after lastTick up to and
// including the first one at or after t. It is at least 1.
func (r *runner) boundariesUntil(t time.Time) int64 {
	if !t.After(r.lastTick) {
		return 1
	}
	gap := t.Sub(r.lastTick)
	n := int64(gap / r.interval)
	if gap%r.interval != 0 {
		n++
	}
	return max(n, 1)
}

func (r *runner) apply(ev recording.Event, at time.Time) error {
	switch ev.Type {
	case recording.TypeSurface:
		r.surface = recording.NewStaticSurface(ev.Elements)
		r.collector.SetSurface(r.surface)
	case recording.TypeScroll:
		r.collector.Scroll(ev.Y, at)
	case recording.TypeClick:
		var target behavior.Element
		if r.surface != nil && ev.Target != "" {
			if el, ok := r.surface.Lookup(ev.Target); ok {
				target = el
			}
		}
		r.collector.Click(behavior.ClickEvent{
			Point:  behavior.Point{X: ev.X, Y: ev.Y},
			Target: target,
			At:     at,
		})
	case recording.TypeTick:
		r.collector.Tick(at)
	case recording.TypeReset:
		r.collector.Reset(at)
		r.controller.Reset()
		r.lastTick = at
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

func (r *runner) evaluate(at time.Time) {
	snap := r.collector.Snapshot()
	actions := r.controller.OnBehaviorChanged(&snap, r.store.Mode())
	if len(actions) == 0 {
		return
	}
	adapt.Dispatch(actions, r.store, r.presenter)
	for _, a := range actions {
		r.timeline = append(r.timeline, Step{Offset: at.Sub(epoch), Action: a})
	}
}
