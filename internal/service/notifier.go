package service

// Notifier pushes workflow events to connected users. The websocket hub
// satisfies this; a nil-safe wrapper keeps services usable in tests without
// a hub.
type Notifier interface {
	NotifyUser(userID string, event string, data interface{})
}

// Notification event names consumed by the UI.
const (
	EventStatusChanged        = "application.status_changed"
	EventAppointmentScheduled = "appointment.scheduled"
	EventAppointmentUpdated   = "appointment.rescheduled"
	EventApplicationRejected  = "application.rejected"
	EventPaymentConfirmed     = "payment.confirmed"
	EventCertificateIssued    = "certificate.issued"
	EventOtpGenerated         = "otp.generated"
)

type noopNotifier struct{}

func (noopNotifier) NotifyUser(string, string, interface{}) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
