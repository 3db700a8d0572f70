package workflow

import "github.com/garyjia/ai-collections/internal/domain/entity"

// State represents a state in the approval lifecycle of a recommendation
type State string

const (
	StatePending  State = entity.StatePending
	StateApproved State = entity.StateApproved
	StateRejected State = entity.StateRejected
	StateModified State = entity.StateModified
	StateExecuted State = entity.StateExecuted
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateRejected: true,
	StateModified: true,
	StateExecuted: true,
}

var terminalStates = map[State]bool{
	StateRejected: true,
	StateExecuted: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid approval state
func (s State) IsValid() bool {
	return validStates[s]
}

// StateForAction maps a human disposition onto the state it produces
func StateForAction(action entity.ApprovalAction) (State, Trigger, bool) {
	switch action {
	case entity.ActionApproved:
		return StateApproved, TriggerApprove, true
	case entity.ActionRejected:
		return StateRejected, TriggerReject, true
	case entity.ActionModified:
		return StateModified, TriggerModify, true
	default:
		return "", "", false
	}
}
