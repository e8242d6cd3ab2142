package workflow

var lifecycleBuilder = newLifecycleBuilder()

// newLifecycleBuilder encodes the expense approval transition table:
//
//	draft     --submit--> submitted     (owner)
//	rejected  --submit--> submitted     (owner, resubmission)
//	submitted --approve-> approved      (manager/admin)
//	submitted --reject--> rejected      (manager/admin, comments required)
//	draft/rejected permit edit in place (owner)
//	draft permits delete                (owner)
//
// Actor entitlement and the rejection-comment rule are enforced by the
// expense service before a trigger is fired; the table only encodes which
// triggers are legal from which status.
func newLifecycleBuilder() *Builder {
	b := NewBuilder()

	b.Configure(StateDraft).
		Permit(TriggerSubmit, StateSubmitted).
		Permit(TriggerEdit, StateDraft).
		Permit(TriggerDelete, StateDraft)

	b.Configure(StateSubmitted).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	b.Configure(StateRejected).
		Permit(TriggerSubmit, StateSubmitted).
		Permit(TriggerEdit, StateRejected)

	// Approved has no outgoing transitions.
	b.Configure(StateApproved)

	return b
}

// NewLifecycle returns a state machine for an expense currently in the given status
func NewLifecycle(current State) StateMachine {
	return lifecycleBuilder.Build(current)
}
