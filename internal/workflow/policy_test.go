package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatesForRoleBuildsWorkQueues(t *testing.T) {
	assert.Equal(t, []Status{StatusJEPending, StatusAppointmentScheduled}, StatesForRole(RoleJuniorEngineer))
	assert.Equal(t, []Status{StatusAEPending}, StatesForRole(RoleAssistantEngineer))
	assert.Equal(t, []Status{StatusEEStage1Pending, StatusEEStage2Pending}, StatesForRole(RoleExecutiveEngineer))
	assert.Equal(t, []Status{StatusCEStage1Pending, StatusCEStage2Pending}, StatesForRole(RoleCityEngineer))
	assert.Equal(t, []Status{StatusClerkPending}, StatesForRole(RoleClerk))
	assert.Empty(t, StatesForRole(RoleAdmin))
}

func TestActorForStatus(t *testing.T) {
	role, ok := ActorForStatus(StatusPaymentPending)
	require.True(t, ok)
	assert.Equal(t, RoleApplicant, role)

	// Auto-forward and terminal states have no actor.
	_, ok = ActorForStatus(StatusSubmitted)
	assert.False(t, ok)
	_, ok = ActorForStatus(StatusApproved)
	assert.False(t, ok)
}

func TestEveryActionableStatusHasExactlyOneActor(t *testing.T) {
	for status := range allowedActions {
		_, ok := ActorForStatus(status)
		assert.True(t, ok, "status %v has allowed actions but no actor", status)
	}
}

func TestAuthorizeDoesNotLeakRequiredRole(t *testing.T) {
	err := Authorize(Actor{Role: RoleApplicant}, StatusCEStage2Pending, PositionArchitect, ActionSign)
	require.ErrorIs(t, err, ErrNotAuthorized)
	// The generic sentinel message must not name the role that could act.
	assert.Equal(t, ErrNotAuthorized, err)
}

func TestAuthorizeAllowsMatchingSpecialty(t *testing.T) {
	ae := Actor{Role: RoleAssistantEngineer, Specialty: PositionArchitect}
	assert.NoError(t, Authorize(ae, StatusAEPending, PositionArchitect, ActionGenerateOtp))
	assert.ErrorIs(t, Authorize(ae, StatusAEPending, PositionSupervisorGrade1, ActionGenerateOtp), ErrNotAuthorized)
}

func TestFeeSchedule(t *testing.T) {
	assert.True(t, FeeFor(PositionArchitect).IsZero())
	assert.False(t, FeeBearing(PositionArchitect))

	assert.Equal(t, "1500", FeeFor(PositionLicenceEngineer).String())
	assert.True(t, FeeBearing(PositionLicenceEngineer))
	assert.True(t, FeeBearing(PositionStructuralEngineer))
	assert.True(t, FeeBearing(PositionSupervisorGrade1))
	assert.True(t, FeeBearing(PositionSupervisorGrade2))
}

func TestValidPositionAndRole(t *testing.T) {
	assert.True(t, ValidPosition(PositionStructuralEngineer))
	assert.False(t, ValidPosition("PLUMBER"))

	assert.True(t, ValidRole(RoleClerk))
	assert.False(t, ValidRole(Role("superuser")))
}
