package purchase

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle              State = "idle"
	StateInputValidated    State = "input_validated"
	StatePaymentAuthorized State = "payment_authorized"
	StateTicketsIssued     State = "tickets_issued"
	StateRevenueRecorded   State = "revenue_recorded"
	StateComplete          State = "complete"
	StateFailed            State = "failed"
)

type Reason string

const (
	ReasonInvalidInput    Reason = "invalid_input"
	ReasonInvalidPhone    Reason = "invalid_phone"
	ReasonUnavailable     Reason = "unavailable"
	ReasonCancelled       Reason = "cancelled"
	ReasonPaymentDeclined Reason = "payment_declined"
	ReasonIssuanceFailed  Reason = "issuance_failed"
	ReasonPersistError    Reason = "persist_error"
)

// Error is the Failed(reason) terminal state. From is the last state reached before failing.
type Error struct {
	Reason             Reason
	From               State
	Message            string
	TransactionID      string
	PersistedTicketIDs []string
	Err                error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("purchase failed (%s) after %s: %s", e.Reason, e.From, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PaymentCaptured reports whether money was taken before the failure. Such failures need
// manual reconciliation.
func (e *Error) PaymentCaptured() bool {
	return e.Reason == ReasonIssuanceFailed || e.Reason == ReasonPersistError
}

// ReasonOf extracts the failure reason from err, or "" when err is not a purchase failure.
func ReasonOf(err error) Reason {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}
