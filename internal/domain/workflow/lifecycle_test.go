package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestLifecycle_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		to      State
		wantErr bool
	}{
		{"draft submit", StateDraft, TriggerSubmit, StateSubmitted, false},
		{"draft edit", StateDraft, TriggerEdit, StateDraft, false},
		{"draft delete", StateDraft, TriggerDelete, StateDraft, false},
		{"draft approve", StateDraft, TriggerApprove, "", true},
		{"draft reject", StateDraft, TriggerReject, "", true},
		{"submitted approve", StateSubmitted, TriggerApprove, StateApproved, false},
		{"submitted reject", StateSubmitted, TriggerReject, StateRejected, false},
		{"submitted submit", StateSubmitted, TriggerSubmit, "", true},
		{"submitted edit", StateSubmitted, TriggerEdit, "", true},
		{"submitted delete", StateSubmitted, TriggerDelete, "", true},
		{"rejected resubmit", StateRejected, TriggerSubmit, StateSubmitted, false},
		{"rejected edit", StateRejected, TriggerEdit, StateRejected, false},
		{"rejected delete", StateRejected, TriggerDelete, "", true},
		{"rejected approve", StateRejected, TriggerApprove, "", true},
		{"approved submit", StateApproved, TriggerSubmit, "", true},
		{"approved approve", StateApproved, TriggerApprove, "", true},
		{"approved reject", StateApproved, TriggerReject, "", true},
		{"approved edit", StateApproved, TriggerEdit, "", true},
		{"approved delete", StateApproved, TriggerDelete, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := NewLifecycle(tt.from)
			err := machine.Fire(context.Background(), tt.trigger)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Fire(%s from %s) error = %v, want ErrInvalidTransition", tt.trigger, tt.from, err)
				}
				if machine.State() != tt.from {
					t.Errorf("state changed to %v after failed fire", machine.State())
				}
				return
			}

			if err != nil {
				t.Fatalf("Fire(%s from %s) unexpected error: %v", tt.trigger, tt.from, err)
			}
			if machine.State() != tt.to {
				t.Errorf("State() = %v, want %v", machine.State(), tt.to)
			}
		})
	}
}

func TestLifecycle_ApprovedIsTerminal(t *testing.T) {
	machine := NewLifecycle(StateApproved)
	if got := machine.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() = %v, approved must have no outgoing transitions", got)
	}
}

func TestLifecycle_RejectReachableOnlyFromSubmitted(t *testing.T) {
	for _, from := range []State{StateDraft, StateApproved, StateRejected} {
		machine := NewLifecycle(from)
		if machine.CanFire(TriggerReject) {
			t.Errorf("CanFire(reject) from %s = true, want false", from)
		}
	}
}
