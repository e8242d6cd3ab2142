package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerSubmit  Trigger = "submit"
	TriggerApprove Trigger = "approve"
	TriggerReject  Trigger = "reject"

	// Edit and Delete do not move the expense to a new state, but they are
	// modeled as self-transitions so that every mutation is checked against
	// the same transition table.
	TriggerEdit   Trigger = "edit"
	TriggerDelete Trigger = "delete"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
