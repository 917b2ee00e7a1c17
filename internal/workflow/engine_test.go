package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	applicant = Actor{UserID: "u-applicant", Role: RoleApplicant}
	je        = Actor{UserID: "u-je", Role: RoleJuniorEngineer}
	aeLicence = Actor{UserID: "u-ae", Role: RoleAssistantEngineer, Specialty: PositionLicenceEngineer}
	ee        = Actor{UserID: "u-ee", Role: RoleExecutiveEngineer}
	ce        = Actor{UserID: "u-ce", Role: RoleCityEngineer}
	clerk     = Actor{UserID: "u-clerk", Role: RoleClerk}
)

func validSchedule() *SchedulePayload {
	return &SchedulePayload{
		ReviewDate:    time.Now().Add(48 * time.Hour),
		Place:         "Town Planning Office",
		ContactPerson: "Desk 4",
		RoomNumber:    "201",
	}
}

func decide(t *testing.T, req Request) Intent {
	t.Helper()
	intent, err := Decide(req)
	require.NoError(t, err)
	return intent
}

func TestSubmitAutoForwardsToJEQueue(t *testing.T) {
	intent := decide(t, Request{
		Status:   StatusDraft,
		Position: PositionLicenceEngineer,
		Action:   ActionSubmit,
		Actor:    applicant,
	})

	assert.Equal(t, StatusJEPending, intent.To)
	assert.Equal(t, []Status{StatusSubmitted, StatusJEPending}, intent.Path)
}

// Walks a fee-bearing application through the complete forward chain and
// checks every resting state in order.
func TestFullChainFeeBearingPosition(t *testing.T) {
	pos := PositionLicenceEngineer
	paid := false

	intent := decide(t, Request{Status: StatusDraft, Position: pos, Action: ActionSubmit, Actor: applicant})
	require.Equal(t, StatusJEPending, intent.To)

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionSchedule, Actor: je, Schedule: validSchedule()})
	require.Equal(t, StatusAppointmentScheduled, intent.To)

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionVerifyDocuments, Actor: je})
	require.Equal(t, StatusAEPending, intent.To)
	assert.True(t, intent.Entered(StatusJEVerified))

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionSign, Actor: aeLicence})
	require.Equal(t, StatusEEStage1Pending, intent.To)

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionSign, Actor: ee})
	require.Equal(t, StatusCEStage1Pending, intent.To)

	// CE stage-1 signature forks into the payment gate for fee-bearing positions.
	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionSign, Actor: ce, PaymentDone: paid})
	require.Equal(t, StatusPaymentPending, intent.To)

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionConfirmPayment, Actor: applicant, PaymentDone: true})
	require.Equal(t, StatusClerkPending, intent.To)
	assert.True(t, intent.Entered(StatusPaid))

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionApprove, Actor: clerk})
	require.Equal(t, StatusEEStage2Pending, intent.To)

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionSign, Actor: ee})
	require.Equal(t, StatusCEStage2Pending, intent.To)

	intent = decide(t, Request{Status: intent.To, Position: pos, Action: ActionSign, Actor: ce})
	require.Equal(t, StatusApproved, intent.To)
	assert.True(t, intent.To.IsTerminal())
}

// Architects carry no fee: the CE stage-1 signature must land directly in the
// clerk queue, never in the payment gate.
func TestArchitectSkipsPaymentGate(t *testing.T) {
	intent := decide(t, Request{
		Status:   StatusCEStage1Pending,
		Position: PositionArchitect,
		Action:   ActionSign,
		Actor:    ce,
	})

	assert.Equal(t, StatusClerkPending, intent.To)
	assert.False(t, intent.Entered(StatusPaymentPending))
}

// A resubmitted application that already paid must skip the payment gate on
// its second pass through the chain.
func TestResubmissionWithCompletedPaymentSkipsGate(t *testing.T) {
	intent := decide(t, Request{
		Status:      StatusCEStage1Pending,
		Position:    PositionLicenceEngineer,
		Action:      ActionSign,
		Actor:       ce,
		PaymentDone: true,
	})

	assert.Equal(t, StatusClerkPending, intent.To)
	assert.False(t, intent.Entered(StatusPaymentPending))
}

func TestResubmitRestartsChainFromBeginning(t *testing.T) {
	intent := decide(t, Request{
		Status:   StatusRejected,
		Position: PositionSupervisorGrade2,
		Action:   ActionResubmit,
		Actor:    applicant,
	})

	assert.Equal(t, StatusJEPending, intent.To)
}

func TestRejectFromEveryOfficerStage(t *testing.T) {
	cases := []struct {
		status Status
		actor  Actor
	}{
		{StatusJEPending, je},
		{StatusAppointmentScheduled, je},
		{StatusAEPending, aeLicence},
		{StatusEEStage1Pending, ee},
		{StatusCEStage1Pending, ce},
		{StatusClerkPending, clerk},
		{StatusEEStage2Pending, ee},
		{StatusCEStage2Pending, ce},
	}
	for _, tc := range cases {
		intent, err := Decide(Request{
			Status:   tc.status,
			Position: PositionLicenceEngineer,
			Action:   ActionReject,
			Actor:    tc.actor,
			Reject:   &RejectPayload{Comments: "insufficient experience proof"},
		})
		require.NoError(t, err, "reject from %v", tc.status)
		assert.Equal(t, StatusRejected, intent.To, "reject from %v", tc.status)
	}
}

func TestRejectRequiresComments(t *testing.T) {
	_, err := Decide(Request{
		Status:   StatusJEPending,
		Position: PositionLicenceEngineer,
		Action:   ActionReject,
		Actor:    je,
		Reject:   &RejectPayload{Comments: "   "},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWrongRoleIsNotAuthorized(t *testing.T) {
	// Authorization is checked before the action's validity, so even a
	// nonsense action from the wrong role reports ErrNotAuthorized.
	_, err := Decide(Request{
		Status:   StatusJEPending,
		Position: PositionLicenceEngineer,
		Action:   ActionSign,
		Actor:    clerk,
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestRightRoleWrongActionIsConflict(t *testing.T) {
	_, err := Decide(Request{
		Status:   StatusJEPending,
		Position: PositionLicenceEngineer,
		Action:   ActionSign, // JE never signs
		Actor:    je,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAssistantEngineerSpecialtyMustMatchPosition(t *testing.T) {
	wrongSpecialty := Actor{UserID: "u-ae2", Role: RoleAssistantEngineer, Specialty: PositionStructuralEngineer}
	_, err := Decide(Request{
		Status:   StatusAEPending,
		Position: PositionLicenceEngineer,
		Action:   ActionSign,
		Actor:    wrongSpecialty,
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestTerminalStateAcceptsNoAction(t *testing.T) {
	_, err := Decide(Request{
		Status:   StatusApproved,
		Position: PositionLicenceEngineer,
		Action:   ActionReject,
		Actor:    ce,
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestGenerateOtpDoesNotMoveTheRecord(t *testing.T) {
	intent := decide(t, Request{
		Status:   StatusEEStage1Pending,
		Position: PositionLicenceEngineer,
		Action:   ActionGenerateOtp,
		Actor:    ee,
	})

	assert.Equal(t, StatusEEStage1Pending, intent.To)
	assert.Empty(t, intent.Path)
}

func TestRescheduleKeepsAppointmentStage(t *testing.T) {
	intent := decide(t, Request{
		Status:   StatusAppointmentScheduled,
		Position: PositionLicenceEngineer,
		Action:   ActionReschedule,
		Actor:    je,
		Reschedule: &ReschedulePayload{
			NewReviewDate: time.Now().Add(72 * time.Hour),
			Reason:        "officer unavailable",
			Place:         "Town Planning Office",
			ContactPerson: "Desk 4",
			RoomNumber:    "201",
		},
	})

	assert.Equal(t, StatusAppointmentScheduled, intent.To)
	assert.Empty(t, intent.Path)
}

func TestScheduleValidation(t *testing.T) {
	now := time.Now()

	t.Run("all fields missing", func(t *testing.T) {
		err := ValidateSchedule(SchedulePayload{}, now)
		require.ErrorIs(t, err, ErrValidation)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "place")
		assert.Contains(t, verr.Fields, "contact_person")
		assert.Contains(t, verr.Fields, "room_number")
		assert.Contains(t, verr.Fields, "review_date")
	})

	t.Run("past review date", func(t *testing.T) {
		p := *validSchedule()
		p.ReviewDate = now.Add(-time.Hour)
		err := ValidateSchedule(p, now)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("whitespace-only fields rejected", func(t *testing.T) {
		p := *validSchedule()
		p.Place = "   "
		err := ValidateSchedule(p, now)
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestRescheduleRequiresReason(t *testing.T) {
	err := ValidateReschedule(ReschedulePayload{
		NewReviewDate: time.Now().Add(24 * time.Hour),
		Place:         "Town Planning Office",
		ContactPerson: "Desk 4",
		RoomNumber:    "201",
	}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "reason")
}

func TestSchedulePayloadRequired(t *testing.T) {
	_, err := Decide(Request{
		Status:   StatusJEPending,
		Position: PositionLicenceEngineer,
		Action:   ActionSchedule,
		Actor:    je,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdvanceNeverCrossesRestingState(t *testing.T) {
	// From Submitted the chain must stop at the first resting state, not run
	// through to the end.
	final, path := Advance(StatusSubmitted, PositionLicenceEngineer, false)
	assert.Equal(t, StatusJEPending, final)
	assert.Equal(t, []Status{StatusJEPending}, path)
}

func TestAdvanceFromRestingStateIsNoop(t *testing.T) {
	final, path := Advance(StatusAEPending, PositionLicenceEngineer, false)
	assert.Equal(t, StatusAEPending, final)
	assert.Empty(t, path)
}

func TestSignedDocTypePerStage(t *testing.T) {
	cases := map[Status]string{
		StatusAEPending:       DocRecommendationForm,
		StatusEEStage1Pending: DocRecommendationForm,
		StatusCEStage1Pending: DocRecommendationForm,
		StatusEEStage2Pending: DocLicenseCertificate,
		StatusCEStage2Pending: DocLicenseCertificate,
	}
	for status, want := range cases {
		got, ok := SignedDocType(status)
		require.True(t, ok, "status %v", status)
		assert.Equal(t, want, got, "status %v", status)
	}

	_, ok := SignedDocType(StatusClerkPending)
	assert.False(t, ok)
}

func TestUnknownStatusIsConflict(t *testing.T) {
	_, err := Decide(Request{Status: Status(99), Action: ActionSubmit, Actor: applicant})
	assert.ErrorIs(t, err, ErrConflict)
}
