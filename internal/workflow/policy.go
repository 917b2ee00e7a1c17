package workflow

import "fmt"

// Action is a transition request verb.
type Action string

const (
	ActionSubmit          Action = "submit"
	ActionResubmit        Action = "resubmit"
	ActionSchedule        Action = "schedule_appointment"
	ActionReschedule      Action = "reschedule_appointment"
	ActionVerifyDocuments Action = "verify_documents"
	ActionGenerateOtp     Action = "generate_otp"
	ActionSign            Action = "verify_and_sign"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionConfirmPayment  Action = "confirm_payment"
)

// actorFor maps each actionable status to the single role allowed to act on
// it. Statuses absent from this table (auto-forward and terminal states) have
// no authorized actor.
var actorFor = map[Status]Role{
	StatusDraft:                RoleApplicant,
	StatusRejected:             RoleApplicant,
	StatusJEPending:            RoleJuniorEngineer,
	StatusAppointmentScheduled: RoleJuniorEngineer,
	StatusAEPending:            RoleAssistantEngineer,
	StatusEEStage1Pending:      RoleExecutiveEngineer,
	StatusCEStage1Pending:      RoleCityEngineer,
	StatusPaymentPending:       RoleApplicant,
	StatusClerkPending:         RoleClerk,
	StatusEEStage2Pending:      RoleExecutiveEngineer,
	StatusCEStage2Pending:      RoleCityEngineer,
}

// allowedActions maps each actionable status to the actions valid in it.
var allowedActions = map[Status][]Action{
	StatusDraft:                {ActionSubmit},
	StatusRejected:             {ActionResubmit},
	StatusJEPending:            {ActionSchedule, ActionReject},
	StatusAppointmentScheduled: {ActionReschedule, ActionVerifyDocuments, ActionReject},
	StatusAEPending:            {ActionGenerateOtp, ActionSign, ActionReject},
	StatusEEStage1Pending:      {ActionGenerateOtp, ActionSign, ActionReject},
	StatusCEStage1Pending:      {ActionGenerateOtp, ActionSign, ActionReject},
	StatusPaymentPending:       {ActionConfirmPayment},
	StatusClerkPending:         {ActionApprove, ActionReject},
	StatusEEStage2Pending:      {ActionGenerateOtp, ActionSign, ActionReject},
	StatusCEStage2Pending:      {ActionGenerateOtp, ActionSign, ActionReject},
}

// ActorForStatus returns the role allowed to act on a status.
func ActorForStatus(s Status) (Role, bool) {
	r, ok := actorFor[s]
	return r, ok
}

// StatesForRole returns every status a role may act on, in lifecycle order.
// Used to build the pending-work queues per officer role.
func StatesForRole(role Role) []Status {
	ordered := []Status{
		StatusDraft, StatusJEPending, StatusAppointmentScheduled, StatusAEPending,
		StatusEEStage1Pending, StatusCEStage1Pending, StatusPaymentPending,
		StatusClerkPending, StatusEEStage2Pending, StatusCEStage2Pending, StatusRejected,
	}
	var out []Status
	for _, s := range ordered {
		if actorFor[s] == role {
			out = append(out, s)
		}
	}
	return out
}

// Authorize checks that the actor may perform the action on an application in
// the given status. Role mismatches report ErrNotAuthorized without leaking
// which role could act; a correct actor requesting an action that is not
// valid for the current status gets ErrConflict.
func Authorize(actor Actor, status Status, position string, action Action) error {
	required, ok := actorFor[status]
	if !ok {
		return fmt.Errorf("%w: no action possible in status %q", ErrNotAuthorized, status)
	}
	if actor.Role != required {
		return ErrNotAuthorized
	}
	if required == RoleAssistantEngineer && actor.Specialty != position {
		return ErrNotAuthorized
	}
	for _, a := range allowedActions[status] {
		if a == action {
			return nil
		}
	}
	return fmt.Errorf("%w: action %q not valid in status %q", ErrConflict, action, status)
}
