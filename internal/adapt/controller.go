// Package adapt turns behavior snapshots into UI adaptations.
package adapt

import (
	"fmt"

	"github.com/suykerbuyk/adaptive-ui/internal/behavior"
	"github.com/suykerbuyk/adaptive-ui/internal/mode"
)

// Kind identifies an adaptation.
type Kind int

const (
	ShowHelpPrompt Kind = iota + 1
	ShowQuickAccessPanel
	SetLargeUI
	NotifyScaleIncrease
)

func (k Kind) String() string {
	switch k {
	case ShowHelpPrompt:
		return "show-help-prompt"
	case ShowQuickAccessPanel:
		return "show-quick-access"
	case SetLargeUI:
		return "set-large-ui"
	case NotifyScaleIncrease:
		return "notify-scale-increase"
	default:
		return "unknown"
	}
}

// Action is one adaptation decided by the controller.
type Action struct {
	Kind         Kind
	LargeUI      bool // SetLargeUI only
	ScalePercent int  // NotifyScaleIncrease only
}

func (a Action) String() string {
	switch a.Kind {
	case SetLargeUI:
		return fmt.Sprintf("%s(%t)", a.Kind, a.LargeUI)
	case NotifyScaleIncrease:
		return fmt.Sprintf("%s(%d%%)", a.Kind, a.ScalePercent)
	default:
		return a.Kind.String()
	}
}

// Actions is the set of adaptations from one evaluation.
type Actions []Action

// Has reports whether an action of kind k is present.
func (as Actions) Has(k Kind) bool {
	for _, a := range as {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// Controller decides adaptations. It owns the session-scoped one-shot state
// and is not safe for concurrent use; call it from the goroutine that owns
// the snapshot.
type Controller struct {
	help      Trigger
	quick     Trigger
	largeUI   Trigger
	lastScale float64
}

// NewController returns a controller with every trigger armed.
func NewController() *Controller {
	return &Controller{lastScale: 1.0}
}

// OnBehaviorChanged evaluates a snapshot against the current mode. The checks
// are independent and may all fire from one snapshot. A nil snapshot means no
// signals yet and yields no actions.
func (c *Controller) OnBehaviorChanged(s *behavior.Snapshot, current mode.Mode) Actions {
	if s == nil {
		return nil
	}

	var out Actions
	if s.ChaoticScrolling && c.help.Fire() {
		out = append(out, Action{Kind: ShowHelpPrompt})
	}
	if s.LongBrowsing && c.quick.Fire() {
		out = append(out, Action{Kind: ShowQuickAccessPanel})
	}
	if s.ClickDifficulty && !current.LargeUI && c.largeUI.Fire() {
		out = append(out, Action{Kind: SetLargeUI, LargeUI: true})
	}

	if s.UIScaleFactor > c.lastScale {
		out = append(out, Action{Kind: NotifyScaleIncrease, ScalePercent: s.ScalePercent()})
	}
	c.lastScale = s.UIScaleFactor

	return out
}

// Reset re-arms every one-shot trigger for a new session.
func (c *Controller) Reset() {
	c.help.Reset()
	c.quick.Reset()
	c.largeUI.Reset()
	c.lastScale = 1.0
}
