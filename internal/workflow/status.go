// Package workflow holds the application lifecycle state machine: the status
// enum, the role policy, and the transition engine. It is pure — no database
// or transport imports — so services apply its decisions transactionally and
// tests exercise it directly.
package workflow

// Status is the authoritative workflow position of an application.
//
// Values are stable integers consumed by external callers (UI, notification
// templates); never renumber. 21-36 are reserved for future intermediate
// stages, REJECTED stays pinned at 37.
type Status int

const (
	StatusDraft                Status = 1
	StatusSubmitted            Status = 2
	StatusJEPending            Status = 3
	StatusAppointmentScheduled Status = 4
	StatusJEVerified           Status = 5
	StatusAEPending            Status = 6
	StatusAESigned             Status = 7
	StatusEEStage1Pending      Status = 8
	StatusEEStage1Signed       Status = 9
	StatusCEStage1Pending      Status = 10
	StatusCEStage1Signed       Status = 11
	StatusPaymentPending       Status = 12
	StatusPaid                 Status = 13
	StatusClerkPending         Status = 14
	StatusClerkApproved        Status = 15
	StatusEEStage2Pending      Status = 16
	StatusEEStage2Signed       Status = 17
	StatusCEStage2Pending      Status = 18
	StatusCEStage2Signed       Status = 19
	StatusApproved             Status = 20
	StatusRejected             Status = 37
)

var statusNames = map[Status]string{
	StatusDraft:                "Draft",
	StatusSubmitted:            "Submitted",
	StatusJEPending:            "Pending at Junior Engineer",
	StatusAppointmentScheduled: "Appointment Scheduled",
	StatusJEVerified:           "Documents Verified",
	StatusAEPending:            "Pending at Assistant Engineer",
	StatusAESigned:             "Signed by Assistant Engineer",
	StatusEEStage1Pending:      "Pending at Executive Engineer",
	StatusEEStage1Signed:       "Signed by Executive Engineer",
	StatusCEStage1Pending:      "Pending at City Engineer",
	StatusCEStage1Signed:       "Signed by City Engineer",
	StatusPaymentPending:       "Payment Pending",
	StatusPaid:                 "Payment Completed",
	StatusClerkPending:         "Pending at Clerk",
	StatusClerkApproved:        "Approved by Clerk",
	StatusEEStage2Pending:      "Pending Final Signature at Executive Engineer",
	StatusEEStage2Signed:       "Final Signature by Executive Engineer",
	StatusCEStage2Pending:      "Pending Final Signature at City Engineer",
	StatusCEStage2Signed:       "Final Signature by City Engineer",
	StatusApproved:             "Approved",
	StatusRejected:             "Rejected",
}

// String is the single translation point from status code to display name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsTerminal reports whether no further forward transition exists.
func (s Status) IsTerminal() bool {
	return s == StatusApproved
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// autoForward marks statuses the engine passes through without a resting
// human-visible stage. The CE stage-1 signature fork (payment vs clerk) is
// resolved in Advance.
var autoForward = map[Status]bool{
	StatusSubmitted:      true,
	StatusJEVerified:     true,
	StatusAESigned:       true,
	StatusEEStage1Signed: true,
	StatusCEStage1Signed: true,
	StatusPaid:           true,
	StatusClerkApproved:  true,
	StatusEEStage2Signed: true,
	StatusCEStage2Signed: true,
}

// IsAutoForward reports whether s advances without a separate human action.
func (s Status) IsAutoForward() bool {
	return autoForward[s]
}
