package workflow

import (
	"fmt"
	"strings"
	"time"
)

// Generated document types produced as signature side effects. Values mirror
// the model document-type constants.
const (
	DocRecommendationForm = "RECOMMENDATION_FORM"
	DocLicenseCertificate = "LICENSE_CERTIFICATE"
	DocPaymentChallan     = "PAYMENT_CHALLAN"
)

// transitions holds the human-triggered edges of the state machine. Auto
// forward edges live in advanceNext.
var transitions = map[Status]map[Action]Status{
	StatusDraft:    {ActionSubmit: StatusSubmitted},
	StatusRejected: {ActionResubmit: StatusSubmitted},
	StatusJEPending: {
		ActionSchedule: StatusAppointmentScheduled,
		ActionReject:   StatusRejected,
	},
	StatusAppointmentScheduled: {
		ActionReschedule:      StatusAppointmentScheduled,
		ActionVerifyDocuments: StatusJEVerified,
		ActionReject:          StatusRejected,
	},
	StatusAEPending: {
		ActionGenerateOtp: StatusAEPending,
		ActionSign:        StatusAESigned,
		ActionReject:      StatusRejected,
	},
	StatusEEStage1Pending: {
		ActionGenerateOtp: StatusEEStage1Pending,
		ActionSign:        StatusEEStage1Signed,
		ActionReject:      StatusRejected,
	},
	StatusCEStage1Pending: {
		ActionGenerateOtp: StatusCEStage1Pending,
		ActionSign:        StatusCEStage1Signed,
		ActionReject:      StatusRejected,
	},
	StatusPaymentPending: {ActionConfirmPayment: StatusPaid},
	StatusClerkPending: {
		ActionApprove: StatusClerkApproved,
		ActionReject:  StatusRejected,
	},
	StatusEEStage2Pending: {
		ActionGenerateOtp: StatusEEStage2Pending,
		ActionSign:        StatusEEStage2Signed,
		ActionReject:      StatusRejected,
	},
	StatusCEStage2Pending: {
		ActionGenerateOtp: StatusCEStage2Pending,
		ActionSign:        StatusCEStage2Signed,
		ActionReject:      StatusRejected,
	},
}

// advanceNext resolves one auto-forward hop. The CE stage-1 fork depends on
// the fee schedule and on whether payment already completed (payment persists
// across resubmission, so a re-run of the chain skips the gate).
func advanceNext(s Status, position string, paymentDone bool) (Status, bool) {
	switch s {
	case StatusSubmitted:
		return StatusJEPending, true
	case StatusJEVerified:
		return StatusAEPending, true
	case StatusAESigned:
		return StatusEEStage1Pending, true
	case StatusEEStage1Signed:
		return StatusCEStage1Pending, true
	case StatusCEStage1Signed:
		if FeeBearing(position) && !paymentDone {
			return StatusPaymentPending, true
		}
		return StatusClerkPending, true
	case StatusPaid:
		return StatusClerkPending, true
	case StatusClerkApproved:
		return StatusEEStage2Pending, true
	case StatusEEStage2Signed:
		return StatusCEStage2Pending, true
	case StatusCEStage2Signed:
		return StatusApproved, true
	}
	return s, false
}

// Advance follows the auto-forward chain from s until the next resting state
// (pending or terminal), returning the final status and the full path of
// statuses entered after s. It never crosses a resting state, so a single
// transition call applies at most one human-visible pending stage.
func Advance(s Status, position string, paymentDone bool) (Status, []Status) {
	var path []Status
	cur := s
	for cur.IsAutoForward() {
		next, ok := advanceNext(cur, position, paymentDone)
		if !ok || next == cur {
			break
		}
		cur = next
		path = append(path, cur)
	}
	return cur, path
}

// SchedulePayload carries the appointment fields for schedule requests.
type SchedulePayload struct {
	ReviewDate    time.Time
	Place         string
	ContactPerson string
	RoomNumber    string
	Comments      string
}

// ReschedulePayload carries the fields for reschedule requests; all are
// required including the reason.
type ReschedulePayload struct {
	NewReviewDate time.Time
	Reason        string
	Place         string
	ContactPerson string
	RoomNumber    string
}

// RejectPayload carries the mandatory rejection comments.
type RejectPayload struct {
	Comments string
}

// ValidateSchedule enforces the schedule guard: all four required fields
// non-empty after trim and a review date not in the past.
func ValidateSchedule(p SchedulePayload, now time.Time) error {
	fields := map[string]string{}
	requireField(fields, "place", p.Place)
	requireField(fields, "contact_person", p.ContactPerson)
	requireField(fields, "room_number", p.RoomNumber)
	if p.ReviewDate.IsZero() {
		fields["review_date"] = "required"
	} else if p.ReviewDate.Before(now) {
		fields["review_date"] = "must not be in the past"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// ValidateReschedule enforces the reschedule guard; the reason is mandatory.
func ValidateReschedule(p ReschedulePayload, now time.Time) error {
	fields := map[string]string{}
	requireField(fields, "reason", p.Reason)
	requireField(fields, "place", p.Place)
	requireField(fields, "contact_person", p.ContactPerson)
	requireField(fields, "room_number", p.RoomNumber)
	if p.NewReviewDate.IsZero() {
		fields["new_review_date"] = "required"
	} else if p.NewReviewDate.Before(now) {
		fields["new_review_date"] = "must not be in the past"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// ValidateReject enforces non-empty rejection comments.
func ValidateReject(p RejectPayload) error {
	if strings.TrimSpace(p.Comments) == "" {
		return NewValidationError(map[string]string{"comments": "required"})
	}
	return nil
}

func requireField(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "required"
	}
}

// Request is one transition request against an application record.
type Request struct {
	Status      Status
	Position    string
	Action      Action
	Actor       Actor
	PaymentDone bool
	Now         time.Time

	Schedule   *SchedulePayload
	Reschedule *ReschedulePayload
	Reject     *RejectPayload
}

// Intent is the decided outcome of a transition request: the resting status
// the record ends in and every status entered on the way. Services apply it
// atomically and key side effects off the path.
type Intent struct {
	From   Status
	To     Status
	Action Action
	Path   []Status // statuses entered, in order, ending with To (empty when status is unchanged)
}

// Entered reports whether the transition passed through s.
func (i Intent) Entered(s Status) bool {
	for _, st := range i.Path {
		if st == s {
			return true
		}
	}
	return false
}

// Decide validates a transition request and computes the resulting intent.
// Preconditions run in contract order: actor authorization first, then
// action-specific payload validation. Decide never mutates anything — a
// failed decision leaves no trace.
func Decide(req Request) (Intent, error) {
	if !req.Status.Valid() {
		return Intent{}, fmt.Errorf("%w: unknown status %d", ErrConflict, req.Status)
	}
	if err := Authorize(req.Actor, req.Status, req.Position, req.Action); err != nil {
		return Intent{}, err
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch req.Action {
	case ActionSchedule:
		if req.Schedule == nil {
			return Intent{}, NewValidationError(map[string]string{"schedule": "payload required"})
		}
		if err := ValidateSchedule(*req.Schedule, now); err != nil {
			return Intent{}, err
		}
	case ActionReschedule:
		if req.Reschedule == nil {
			return Intent{}, NewValidationError(map[string]string{"reschedule": "payload required"})
		}
		if err := ValidateReschedule(*req.Reschedule, now); err != nil {
			return Intent{}, err
		}
	case ActionReject:
		if req.Reject == nil {
			return Intent{}, NewValidationError(map[string]string{"comments": "required"})
		}
		if err := ValidateReject(*req.Reject); err != nil {
			return Intent{}, err
		}
	}

	target := transitions[req.Status][req.Action]
	intent := Intent{From: req.Status, To: target, Action: req.Action}
	if target == req.Status {
		// GenerateOtp and Reschedule do not move the record.
		return intent, nil
	}

	intent.Path = append(intent.Path, target)
	final, autoPath := Advance(target, req.Position, req.PaymentDone)
	intent.Path = append(intent.Path, autoPath...)
	intent.To = final
	return intent, nil
}

// SignedDocType returns the document type produced by a signature performed
// while the record is in the given pending status. Stage 1 signatures build
// up the recommendation form; stage 2 signatures build the license
// certificate. The disambiguation reads the current status only — the same
// EE/CE role signs different documents at different lifecycle points.
func SignedDocType(pending Status) (string, bool) {
	switch pending {
	case StatusAEPending, StatusEEStage1Pending, StatusCEStage1Pending:
		return DocRecommendationForm, true
	case StatusEEStage2Pending, StatusCEStage2Pending:
		return DocLicenseCertificate, true
	}
	return "", false
}
