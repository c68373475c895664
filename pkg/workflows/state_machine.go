package workflows

// StateMachine enforces record status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewDonationStateMachine creates the donation lifecycle machine.
// Release is the only path into "completed"; "failed" is a terminal
// administrative override.
func NewDonationStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"pending":   {"verified", "failed"},
			"verified":  {"completed", "failed"},
			"completed": {},
			"failed":    {},
		},
	}
}

// NewTaskStateMachine creates the task lifecycle machine. The first funding
// transaction moves pending to in_progress; the evidence gate guards
// in_progress to verified.
func NewTaskStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"pending":     {"in_progress", "failed"},
			"in_progress": {"verified", "failed"},
			"verified":    {"completed", "failed"},
			"completed":   {},
			"failed":      {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether no further transitions are possible.
func (sm *StateMachine) IsTerminal(status string) bool {
	return len(sm.GetAllowedTransitions(status)) == 0
}
