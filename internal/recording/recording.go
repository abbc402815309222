// Package recording reads and writes interaction recordings: JSON lines
// describing a page's interactive surface followed by timed scroll, click,
// tick and reset events.
package recording

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/suykerbuyk/adaptive-ui/internal/archive"
)

// ErrMalformed is returned for lines that are not valid recording events.
var ErrMalformed = errors.New("malformed recording")

// maxLineSize bounds a single event line; surface events list every element.
const maxLineSize = 4 * 1024 * 1024

// EventType identifies a recorded event.
type EventType string

const (
	TypeSurface EventType = "surface"
	TypeScroll  EventType = "scroll"
	TypeClick   EventType = "click"
	TypeTick    EventType = "tick"
	TypeReset   EventType = "reset"
)

// Box is an element's bounding box in page pixels.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ElementSpec describes one element of a recorded surface.
type ElementSpec struct {
	ID     string `json:"id"`
	Tag    string `json:"tag"`
	Role   string `json:"role,omitempty"`
	Parent string `json:"parent,omitempty"`
	Box    *Box   `json:"box,omitempty"`
}

// Event is one line of a recording. T is milliseconds since the recording
// started.
type Event struct {
	Type     EventType     `json:"type"`
	T        int64         `json:"t,omitempty"`
	X        float64       `json:"x,omitempty"`
	Y        float64       `json:"y,omitempty"`
	Target   string        `json:"target,omitempty"`
	Elements []ElementSpec `json:"elements,omitempty"`
}

// At returns the event's wall time for a recording started at start.
func (e Event) At(start time.Time) time.Time {
	return start.Add(time.Duration(e.T) * time.Millisecond)
}

// MaxOffset bounds event timestamps. Lines with a larger t are malformed.
const MaxOffset = 7 * 24 * time.Hour

// InRange reports whether the event's offset lies within [0, MaxOffset].
func (e Event) InRange() bool {
	return e.T >= 0 && e.T <= MaxOffset.Milliseconds()
}

// Recording is a parsed recording file.
type Recording struct {
	ID     string
	Path   string
	Events []Event
}

// Duration returns the timestamp of the last timed event.
func (r *Recording) Duration() time.Duration {
	var last int64
	for _, e := range r.Events {
		if e.T > last && e.InRange() {
			last = e.T
		}
	}
	return time.Duration(last) * time.Millisecond
}

// Decoder reads recording events one line at a time.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a decoder reading JSON lines from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next known event. Blank lines and unknown event types
// are skipped; anything else that fails to decode returns ErrMalformed.
// io.EOF marks the end of the stream.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		d.line++
		line := d.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return Event{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, d.line, err)
		}
		if err := ev.validate(); err != nil {
			return Event{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, d.line, err)
		}
		if !ev.Type.known() {
			continue
		}
		return ev, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("read recording: %w", err)
	}
	return Event{}, io.EOF
}

// Parse reads every event from r.
func Parse(r io.Reader) ([]Event, error) {
	dec := NewDecoder(r)
	var events []Event
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// ParseFile reads a recording from disk, decompressing .jsonl.zst files.
func ParseFile(path string) (*Recording, error) {
	f, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Recording{
		ID:     archive.RecordingID(path),
		Path:   path,
		Events: events,
	}, nil
}

// Write encodes events as JSON lines.
func Write(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for i, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("write event %d: %w", i, err)
		}
	}
	return nil
}

func (t EventType) known() bool {
	switch t {
	case TypeSurface, TypeScroll, TypeClick, TypeTick, TypeReset:
		return true
	}
	return false
}

func (e Event) validate() error {
	if e.Type == "" {
		return errors.New("missing type")
	}
	if e.T < 0 {
		return fmt.Errorf("negative timestamp %d", e.T)
	}
	if !e.InRange() {
		return fmt.Errorf("timestamp %d beyond %s", e.T, MaxOffset)
	}
	if e.Type != TypeSurface {
		return nil
	}
	seen := make(map[string]bool, len(e.Elements))
	for _, el := range e.Elements {
		if el.ID == "" {
			return errors.New("surface element without id")
		}
		if seen[el.ID] {
			return fmt.Errorf("duplicate element id %q", el.ID)
		}
		seen[el.ID] = true
	}
	return nil
}
