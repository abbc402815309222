package recording

import (
	"github.com/suykerbuyk/adaptive-ui/internal/behavior"
)

// Element is a node of a StaticSurface.
type Element struct {
	spec   ElementSpec
	parent *Element
}

func (e *Element) ID() string   { return e.spec.ID }
func (e *Element) Tag() string  { return e.spec.Tag }
func (e *Element) Role() string { return e.spec.Role }

// Parent returns the enclosing element, or nil at the root.
func (e *Element) Parent() behavior.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// StaticSurface is a fixed element tree replayed from a surface event.
// Later elements paint over earlier ones when boxes overlap.
type StaticSurface struct {
	order []*Element
	byID  map[string]*Element
}

var _ behavior.Surface = (*StaticSurface)(nil)

// NewStaticSurface builds a surface from element specs. Parent references to
// unknown ids are treated as roots.
func NewStaticSurface(specs []ElementSpec) *StaticSurface {
	s := &StaticSurface{byID: make(map[string]*Element, len(specs))}
	for _, spec := range specs {
		el := &Element{spec: spec}
		s.order = append(s.order, el)
		s.byID[spec.ID] = el
	}
	for _, el := range s.order {
		if p, ok := s.byID[el.spec.Parent]; ok && p != el {
			el.parent = p
		}
	}
	return s
}

// Lookup returns the element with the given id.
func (s *StaticSurface) Lookup(id string) (*Element, bool) {
	el, ok := s.byID[id]
	return el, ok
}

// ElementAt returns the topmost element whose box contains p.
func (s *StaticSurface) ElementAt(p behavior.Point) (behavior.Element, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		el := s.order[i]
		box, ok := rect(el)
		if !ok {
			continue
		}
		if p.X >= box.Left && p.X <= box.Right() && p.Y >= box.Top && p.Y <= box.Bottom() {
			return el, true
		}
	}
	return nil, false
}

// InteractiveElements returns every element in document order; the collector
// filters for clickability.
func (s *StaticSurface) InteractiveElements() []behavior.Element {
	out := make([]behavior.Element, 0, len(s.order))
	for _, el := range s.order {
		out = append(out, el)
	}
	return out
}

// BoundingBox returns the recorded box of an element from this surface.
func (s *StaticSurface) BoundingBox(e behavior.Element) (behavior.Rect, bool) {
	el, ok := e.(*Element)
	if !ok || s.byID[el.spec.ID] != el {
		return behavior.Rect{}, false
	}
	return rect(el)
}

func rect(el *Element) (behavior.Rect, bool) {
	if el.spec.Box == nil {
		return behavior.Rect{}, false
	}
	b := el.spec.Box
	return behavior.Rect{Left: b.X, Top: b.Y, Width: b.W, Height: b.H}, true
}
