package workflow

import "errors"

var (
	// ErrInvalidTransition means the trigger is not permitted from the current state,
	// or the stored state moved on before the transition was persisted
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState means a stored state is not one of the approval states
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed means every transition for the trigger was refused by its guard
	ErrGuardFailed = errors.New("guard condition failed")
)
