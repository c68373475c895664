package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDonationTransitions(t *testing.T) {
	sm := NewDonationStateMachine()

	assert.True(t, sm.CanTransition("pending", "verified"))
	assert.True(t, sm.CanTransition("verified", "completed"))
	assert.True(t, sm.CanTransition("pending", "failed"))
	assert.True(t, sm.CanTransition("verified", "failed"))

	assert.False(t, sm.CanTransition("pending", "completed"))
	assert.False(t, sm.CanTransition("completed", "verified"))
	assert.False(t, sm.CanTransition("failed", "pending"))
	assert.False(t, sm.CanTransition("unknown", "verified"))
}

func TestTaskTransitions(t *testing.T) {
	sm := NewTaskStateMachine()

	assert.True(t, sm.CanTransition("pending", "in_progress"))
	assert.True(t, sm.CanTransition("in_progress", "verified"))
	assert.True(t, sm.CanTransition("verified", "completed"))
	assert.True(t, sm.CanTransition("in_progress", "failed"))

	// verified is reachable only through in_progress
	assert.False(t, sm.CanTransition("pending", "verified"))
	assert.False(t, sm.CanTransition("completed", "failed"))
}

func TestTerminalStates(t *testing.T) {
	for _, sm := range []*StateMachine{NewDonationStateMachine(), NewTaskStateMachine()} {
		assert.True(t, sm.IsTerminal("completed"))
		assert.True(t, sm.IsTerminal("failed"))
		assert.False(t, sm.IsTerminal("pending"))
	}
}
