package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainwf "github.com/garyjia/ai-collections/internal/domain/workflow"
)

func TestBuildApprovalStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    domainwf.State
		trigger domainwf.Trigger
		want    domainwf.State
		wantErr bool
	}{
		{"approve pending", domainwf.StatePending, domainwf.TriggerApprove, domainwf.StateApproved, false},
		{"reject pending", domainwf.StatePending, domainwf.TriggerReject, domainwf.StateRejected, false},
		{"modify pending", domainwf.StatePending, domainwf.TriggerModify, domainwf.StateModified, false},
		{"execute approved", domainwf.StateApproved, domainwf.TriggerExecute, domainwf.StateExecuted, false},
		{"execute modified", domainwf.StateModified, domainwf.TriggerExecute, domainwf.StateExecuted, false},
		{"execute pending", domainwf.StatePending, domainwf.TriggerExecute, domainwf.StatePending, true},
		{"execute rejected", domainwf.StateRejected, domainwf.TriggerExecute, domainwf.StateRejected, true},
		{"execute executed", domainwf.StateExecuted, domainwf.TriggerExecute, domainwf.StateExecuted, true},
		{"approve approved", domainwf.StateApproved, domainwf.TriggerApprove, domainwf.StateApproved, true},
		{"reject modified", domainwf.StateModified, domainwf.TriggerReject, domainwf.StateModified, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := BuildApprovalStateMachine(tt.from, nil)

			err := machine.Fire(context.Background(), tt.trigger)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, machine.State())
		})
	}
}

func TestBuildApprovalStateMachine_TerminalStatesHaveNoTriggers(t *testing.T) {
	for _, state := range []domainwf.State{domainwf.StateRejected, domainwf.StateExecuted} {
		machine := BuildApprovalStateMachine(state, nil)
		assert.Empty(t, machine.PermittedTriggers(), "state %s", state)
	}
}

func TestBuildApprovalStateMachine_ExecuteGuard(t *testing.T) {
	refuse := func(context.Context) bool { return false }
	allow := func(context.Context) bool { return true }

	for _, from := range []domainwf.State{domainwf.StateApproved, domainwf.StateModified} {
		t.Run(string(from), func(t *testing.T) {
			refused := BuildApprovalStateMachine(from, refuse)
			assert.True(t, refused.CanFire(domainwf.TriggerExecute))

			err := refused.Fire(context.Background(), domainwf.TriggerExecute)
			assert.ErrorIs(t, err, domainwf.ErrGuardFailed)
			assert.Equal(t, from, refused.State())

			allowed := BuildApprovalStateMachine(from, allow)
			require.NoError(t, allowed.Fire(context.Background(), domainwf.TriggerExecute))
			assert.Equal(t, domainwf.StateExecuted, allowed.State())
		})
	}
}

func TestBuildApprovalStateMachine_GuardDoesNotAffectDecisions(t *testing.T) {
	machine := BuildApprovalStateMachine(domainwf.StatePending, func(context.Context) bool { return false })

	require.NoError(t, machine.Fire(context.Background(), domainwf.TriggerApprove))
	assert.Equal(t, domainwf.StateApproved, machine.State())
}
