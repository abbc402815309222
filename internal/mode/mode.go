// Package mode holds the application-wide display mode flags. A single Store
// is created at the application root and passed to everything that reads or
// mutates it.
package mode

import (
	"strings"
	"sync"
)

// Mode is the set of independent display flags.
type Mode struct {
	Dark         bool `json:"dark"`
	LowBandwidth bool `json:"low_bandwidth"`
	Frontline    bool `json:"frontline"` // simplified layout, urgent content first
	Compact      bool `json:"compact"`   // small viewports
	LargeUI      bool `json:"large_ui"`  // accessibility mode with enlarged controls
}

// ScaleFactor is the control scale applied by large-UI mode.
func (m Mode) ScaleFactor() float64 {
	if m.LargeUI {
		return 1.3
	}
	return 1.0
}

// String lists the flags that are on, or "default" when none are.
func (m Mode) String() string {
	var on []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{m.Dark, "dark"},
		{m.LowBandwidth, "low-bandwidth"},
		{m.Frontline, "frontline"},
		{m.Compact, "compact"},
		{m.LargeUI, "large-ui"},
	} {
		if f.set {
			on = append(on, f.name)
		}
	}
	if len(on) == 0 {
		return "default"
	}
	return strings.Join(on, ", ")
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Dark         *bool
	LowBandwidth *bool
	Frontline    *bool
	Compact      *bool
	LargeUI      *bool
}

func (p Patch) apply(m Mode) Mode {
	if p.Dark != nil {
		m.Dark = *p.Dark
	}
	if p.LowBandwidth != nil {
		m.LowBandwidth = *p.LowBandwidth
	}
	if p.Frontline != nil {
		m.Frontline = *p.Frontline
	}
	if p.Compact != nil {
		m.Compact = *p.Compact
	}
	if p.LargeUI != nil {
		m.LargeUI = *p.LargeUI
	}
	return m
}

// Store serializes mode mutations and notifies subscribers after each change.
type Store struct {
	mu     sync.Mutex
	mode   Mode
	nextID int
	subs   map[int]func(Mode)
}

// NewStore creates a store holding initial.
func NewStore(initial Mode) *Store {
	return &Store{mode: initial, subs: make(map[int]func(Mode))}
}

// Mode returns the current flags.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set applies a partial update.
func (s *Store) Set(p Patch) Mode {
	return s.update(p.apply)
}

func (s *Store) ToggleDark() Mode {
	return s.update(func(m Mode) Mode { m.Dark = !m.Dark; return m })
}

func (s *Store) ToggleLowBandwidth() Mode {
	return s.update(func(m Mode) Mode { m.LowBandwidth = !m.LowBandwidth; return m })
}

func (s *Store) ToggleFrontline() Mode {
	return s.update(func(m Mode) Mode { m.Frontline = !m.Frontline; return m })
}

func (s *Store) ToggleCompact() Mode {
	return s.update(func(m Mode) Mode { m.Compact = !m.Compact; return m })
}

func (s *Store) ToggleLargeUI() Mode {
	return s.update(func(m Mode) Mode { m.LargeUI = !m.LargeUI; return m })
}

// SetLargeUI sets the accessibility flag explicitly.
func (s *Store) SetLargeUI(on bool) Mode {
	return s.update(func(m Mode) Mode { m.LargeUI = on; return m })
}

// Subscribe registers fn to be called with the new mode after every change.
// Callbacks run synchronously on the mutating goroutine, outside the lock.
func (s *Store) Subscribe(fn func(Mode)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(fn func(Mode) Mode) Mode {
	s.mu.Lock()
	prev := s.mode
	next := fn(prev)
	s.mode = next
	var subs []func(Mode)
	if next != prev {
		subs = make([]func(Mode), 0, len(s.subs))
		for _, sub := range s.subs {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(next)
	}
	return next
}
