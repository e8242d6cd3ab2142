package workflow

// State represents an expense's position in the approval lifecycle
type State string

const (
	StateDraft     State = "draft"
	StateSubmitted State = "submitted"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateSubmitted: true,
	StateApproved:  true,
	StateRejected:  true,
}

// Approved is terminal. Rejected allows resubmission, so it is not.
var terminalStates = map[State]bool{
	StateApproved: true,
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true if no further transitions are possible from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
