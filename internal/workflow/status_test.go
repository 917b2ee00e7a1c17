package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The integer values are part of the external contract (stored rows, UI
// mappings). This test pins them so a reorder of the const block cannot
// silently renumber the lifecycle.
func TestStatusCodesAreStable(t *testing.T) {
	assert.EqualValues(t, 1, StatusDraft)
	assert.EqualValues(t, 2, StatusSubmitted)
	assert.EqualValues(t, 3, StatusJEPending)
	assert.EqualValues(t, 4, StatusAppointmentScheduled)
	assert.EqualValues(t, 5, StatusJEVerified)
	assert.EqualValues(t, 6, StatusAEPending)
	assert.EqualValues(t, 7, StatusAESigned)
	assert.EqualValues(t, 8, StatusEEStage1Pending)
	assert.EqualValues(t, 9, StatusEEStage1Signed)
	assert.EqualValues(t, 10, StatusCEStage1Pending)
	assert.EqualValues(t, 11, StatusCEStage1Signed)
	assert.EqualValues(t, 12, StatusPaymentPending)
	assert.EqualValues(t, 13, StatusPaid)
	assert.EqualValues(t, 14, StatusClerkPending)
	assert.EqualValues(t, 15, StatusClerkApproved)
	assert.EqualValues(t, 16, StatusEEStage2Pending)
	assert.EqualValues(t, 17, StatusEEStage2Signed)
	assert.EqualValues(t, 18, StatusCEStage2Pending)
	assert.EqualValues(t, 19, StatusCEStage2Signed)
	assert.EqualValues(t, 20, StatusApproved)
	assert.EqualValues(t, 37, StatusRejected)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Pending at Junior Engineer", StatusJEPending.String())
	assert.Equal(t, "Rejected", StatusRejected.String())
	assert.Equal(t, "Unknown", Status(99).String())
}

func TestOnlyApprovedIsTerminal(t *testing.T) {
	for s := range statusNames {
		if s == StatusApproved {
			assert.True(t, s.IsTerminal())
		} else {
			assert.False(t, s.IsTerminal(), "status %v", s)
		}
	}
}

func TestAutoForwardStatesHaveNoActor(t *testing.T) {
	for s := range statusNames {
		if !s.IsAutoForward() {
			continue
		}
		_, ok := ActorForStatus(s)
		assert.False(t, ok, "auto-forward status %v must not be actionable", s)
	}
}
