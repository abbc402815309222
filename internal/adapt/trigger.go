package adapt

// TriggerState is the state of a one-shot trigger.
type TriggerState int

const (
	Armed TriggerState = iota
	Fired
)

// Trigger fires at most once until Reset. The zero value is armed.
type Trigger struct {
	state TriggerState
}

// Fire moves an armed trigger to Fired and reports whether it did.
func (t *Trigger) Fire() bool {
	if t.state == Fired {
		return false
	}
	t.state = Fired
	return true
}

// State returns the current state.
func (t *Trigger) State() TriggerState { return t.state }

// Reset re-arms the trigger.
func (t *Trigger) Reset() { t.state = Armed }
