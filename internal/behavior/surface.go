package behavior

import "strings"

// Element is a rendered node the collector can classify.
type Element interface {
	Tag() string
	Role() string
	Parent() Element
}

// Surface abstracts the rendering tree used for hit-testing. It can be backed
// by a DOM bridge, a retained-mode UI tree or a test double.
type Surface interface {
	ElementAt(p Point) (Element, bool)
	InteractiveElements() []Element
	BoundingBox(e Element) (Rect, bool)
}

// IsClickable reports whether e is a button or link, carries the button role,
// or has such an ancestor within depth parent levels.
func IsClickable(e Element, depth int) bool {
	if e == nil {
		return false
	}
	if isInteractive(e) {
		return true
	}
	parent := e.Parent()
	for i := 0; parent != nil && i < depth; i++ {
		if isInteractive(parent) {
			return true
		}
		parent = parent.Parent()
	}
	return false
}

func isInteractive(e Element) bool {
	switch strings.ToLower(e.Tag()) {
	case "button", "a":
		return true
	}
	return strings.EqualFold(e.Role(), "button")
}
