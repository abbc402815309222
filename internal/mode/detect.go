package mode

import "strings"

// Environment describes what the host reports about the device at startup.
type Environment struct {
	ViewportWidth  int    // CSS px; 0 when unknown
	ConnectionType string // effective connection type, e.g. "4g", "2g", "slow-2g"
	PrefersDark    bool
}

const mobileBreakpoint = 768

// Detect derives the initial mode from the environment: small viewports are
// compact, slow connections get low-bandwidth rendering, and the system
// color-scheme preference selects dark mode.
func Detect(env Environment) Mode {
	var m Mode
	if env.ViewportWidth > 0 && env.ViewportWidth < mobileBreakpoint {
		m.Compact = true
	}
	switch strings.ToLower(strings.TrimSpace(env.ConnectionType)) {
	case "slow-2g", "2g":
		m.LowBandwidth = true
	}
	m.Dark = env.PrefersDark
	return m
}

// Size is a control size class.
type Size string

const (
	SizeSmall  Size = "sm"
	SizeMedium Size = "md"
	SizeLarge  Size = "lg"
	SizeXL     Size = "xl"
)

// MinTouchHeight returns the minimum control height in px for a size class.
// Compact and frontline modes use larger touch targets.
func MinTouchHeight(size Size, m Mode) int {
	heights := map[Size]int{SizeSmall: 32, SizeMedium: 40, SizeLarge: 48, SizeXL: 56}
	if m.Compact || m.Frontline {
		heights = map[Size]int{SizeSmall: 40, SizeMedium: 48, SizeLarge: 56, SizeXL: 64}
	}
	if h, ok := heights[size]; ok {
		return h
	}
	return heights[SizeMedium]
}
