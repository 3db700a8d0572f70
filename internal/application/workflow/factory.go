package workflow

import (
	domainwf "github.com/garyjia/ai-collections/internal/domain/workflow"
)

// BuildApprovalStateMachine creates a state machine configured for the recommendation approval lifecycle.
// canSend guards TriggerExecute; a nil guard always passes.
func BuildApprovalStateMachine(initialState domainwf.State, canSend domainwf.GuardFunc) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// PENDING: a reviewer disposes of the recommendation exactly once
	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerModify, domainwf.StateModified)

	builder.Configure(domainwf.StateApproved).
		PermitIf(domainwf.TriggerExecute, domainwf.StateExecuted, canSend)

	builder.Configure(domainwf.StateModified).
		PermitIf(domainwf.TriggerExecute, domainwf.StateExecuted, canSend)

	// REJECTED and EXECUTED are terminal states - no outgoing transitions

	return builder.Build(initialState)
}
