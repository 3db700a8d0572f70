package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, false},
		{StateApproved, false},
		{StateModified, false},
		{StateRejected, true},
		{StateExecuted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"executed", StateExecuted, true},
		{"unknown", State("SENT"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateForAction(t *testing.T) {
	tests := []struct {
		action      entity.ApprovalAction
		wantState   State
		wantTrigger Trigger
		wantOK      bool
	}{
		{entity.ActionApproved, StateApproved, TriggerApprove, true},
		{entity.ActionRejected, StateRejected, TriggerReject, true},
		{entity.ActionModified, StateModified, TriggerModify, true},
		{entity.ApprovalAction("escalated"), "", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			state, trigger, ok := StateForAction(tt.action)
			if state != tt.wantState || trigger != tt.wantTrigger || ok != tt.wantOK {
				t.Errorf("StateForAction(%s) = (%s, %s, %v), want (%s, %s, %v)",
					tt.action, state, trigger, ok, tt.wantState, tt.wantTrigger, tt.wantOK)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestBuilder_PermitPanicsFromTerminalState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic when configuring a terminal state")
		}
	}()

	NewBuilder().Configure(StateRejected).Permit(TriggerExecute, StateExecuted)
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	machine := builder.Build(StatePending)

	if !machine.CanFire(TriggerApprove) {
		t.Error("CanFire() should return true for permitted trigger")
	}
	if err := machine.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != StateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateApproved)
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).
		PermitIf(TriggerExecute, StateExecuted, func(ctx context.Context) bool { return false })

	machine := builder.Build(StateApproved)

	err := machine.Fire(context.Background(), TriggerExecute)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StateApproved {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateApproved, machine.State())
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	machine := builder.Build(StatePending)

	err := machine.Fire(context.Background(), TriggerExecute)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != StatePending {
		t.Errorf("State should remain %v, got %v", StatePending, machine.State())
	}
}

func TestStateMachine_BuildCopiesTable(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)
	machine := builder.Build(StatePending)

	// Later configuration must not leak into an already built machine
	builder.Configure(StatePending).Permit(TriggerReject, StateRejected)

	if machine.CanFire(TriggerReject) {
		t.Error("machine built before Permit() should not see the new transition")
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerModify, StateModified)

	got := builder.Build(StatePending).PermittedTriggers()
	want := []Trigger{TriggerApprove, TriggerModify, TriggerReject}

	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() returned %d triggers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
