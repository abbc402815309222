package adapt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/suykerbuyk/adaptive-ui/internal/mode"
)

// Presenter renders one-shot adaptations (dialogs, panels, toasts).
type Presenter interface {
	ShowHelpPrompt()
	ShowQuickAccessPanel()
	NotifyScaleIncrease(percent int)
}

// Dispatch applies SetLargeUI to the mode store and forwards the remaining
// actions to the presenter. Either may be nil.
func Dispatch(actions Actions, store *mode.Store, p Presenter) {
	for _, a := range actions {
		switch a.Kind {
		case SetLargeUI:
			if store != nil {
				store.SetLargeUI(a.LargeUI)
			}
		case ShowHelpPrompt:
			if p != nil {
				p.ShowHelpPrompt()
			}
		case ShowQuickAccessPanel:
			if p != nil {
				p.ShowQuickAccessPanel()
			}
		case NotifyScaleIncrease:
			if p != nil {
				p.NotifyScaleIncrease(a.ScalePercent)
			}
		}
	}
}

// ScaleNotice is the toast text shown after an automatic enlargement.
func ScaleNotice(percent int) string {
	return fmt.Sprintf("Interface enlarged to %d%%: we noticed difficulty pressing buttons and enlarged the controls", percent)
}

// LogPresenter renders adaptations as log entries, for headless runs.
type LogPresenter struct {
	Log *zap.Logger
}

func (p LogPresenter) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p LogPresenter) ShowHelpPrompt() {
	p.logger().Info("help prompt shown")
}

func (p LogPresenter) ShowQuickAccessPanel() {
	p.logger().Info("quick access panel shown")
}

func (p LogPresenter) NotifyScaleIncrease(percent int) {
	p.logger().Info(ScaleNotice(percent), zap.Int("percent", percent))
}
