// Package purchase drives one ticket purchase from validated input to persisted tickets.
//
// The steps always run in the same order: validate input, take payment, issue and persist
// tickets, record revenue. A ticket is never persisted before its payment is captured. Once
// payment has been submitted the flow no longer follows caller cancellation; it runs to
// completion or to an explicit failure.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventers-ticketing/clock"
	"eventers-ticketing/codec"
	"eventers-ticketing/commission"
	"eventers-ticketing/logger"
	"eventers-ticketing/metrics"
	"eventers-ticketing/model"
	"eventers-ticketing/notify"
	"eventers-ticketing/payment"
	"eventers-ticketing/store"
	"eventers-ticketing/ticketid"

	"github.com/sirupsen/logrus"
)

const DefaultMaxQuantity = 10

const (
	statusAuthorized = "AUTHORIZED"
	statusDeclined   = "DECLINED"
)

// Store is the slice of persistence a purchase needs.
type Store interface {
	Event(ctx context.Context, eventID string) (*model.Event, error)
	AddTicket(ctx context.Context, t *model.Ticket) (string, error)
	AccumulateEventRevenue(ctx context.Context, eventID string, r model.Revenue) error
}

type IDGenerator interface {
	NewNonce() ([]byte, error)
	Generate(in ticketid.Input) (string, error)
}

type Encoder interface {
	Encode(claims codec.Claims) (string, error)
}

type Orchestrator struct {
	store       Store
	payments    payment.Gateway
	ids         IDGenerator
	qr          Encoder
	calc        *commission.Calculator
	notifier    notify.Notifier
	clock       clock.Clock
	maxQuantity int
}

type Option func(*Orchestrator)

func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func WithMaxQuantity(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxQuantity = n
		}
	}
}

func New(s Store, payments payment.Gateway, ids IDGenerator, qr Encoder, calc *commission.Calculator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       s,
		payments:    payments,
		ids:         ids,
		qr:          qr,
		calc:        calc,
		notifier:    notify.Nop(),
		clock:       clock.NewSystem(),
		maxQuantity: DefaultMaxQuantity,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is what a Complete purchase hands back to the caller.
type Result struct {
	State         State
	OrderID       string
	Tickets       []model.Ticket
	TransactionID string
	Payment       model.PurchasePayment
	Split         commission.Split
	Warnings      []string
}

// attempt is the state of one purchase.
type attempt struct {
	ctx        context.Context
	req        model.Purchase
	state      State
	event      *model.Event
	ticketType *model.TicketType
	network    payment.Network
	split      commission.Split
	payment    model.PurchasePayment
	orderID    string
	tickets    []model.Ticket
	warnings   []string
}

func (a *attempt) advance(to State) {
	logger.Debugf(a.ctx, "purchase: %s -> %s for buyer %s", a.state, to, a.req.BuyerID)
	a.state = to
}

func (a *attempt) fail(reason Reason, msg string, err error) *Error {
	return &Error{Reason: reason, From: a.state, Message: msg, TransactionID: a.payment.TransactionID, Err: err}
}

// Purchase runs one purchase attempt. Failures are returned as *Error. Retried attempts are not
// de-duplicated here; the caller must not submit the same purchase twice.
func (o *Orchestrator) Purchase(ctx context.Context, req model.Purchase) (*Result, error) {
	a := &attempt{ctx: ctx, req: req, state: StateIdle}

	res, err := o.run(a)
	if err != nil {
		reason := ReasonOf(err)
		metrics.RecordPurchase(string(StateFailed), string(reason), 0)
		if reason != ReasonInvalidInput && reason != ReasonInvalidPhone {
			logger.Errorf(ctx, "purchase: buyer %s event %s: %+v", req.BuyerID, req.EventID, err)
		}
		return nil, err
	}

	metrics.RecordPurchase(string(StateComplete), "", len(res.Tickets))
	return res, nil
}

func (o *Orchestrator) run(a *attempt) (*Result, error) {
	if err := o.validate(a); err != nil {
		return nil, err
	}
	a.advance(StateInputValidated)

	if err := o.authorize(a); err != nil {
		return nil, err
	}
	a.advance(StatePaymentAuthorized)

	// Payment is captured: caller cancellation must not abandon it.
	a.ctx = context.WithoutCancel(a.ctx)

	if pe := o.issue(a); pe != nil {
		o.escalate(a, pe)
		return nil, pe
	}
	a.advance(StateTicketsIssued)

	o.recordRevenue(a)
	a.advance(StateRevenueRecorded)

	if err := o.notifier.TicketsIssued(a.ctx, a.req.BuyerPhone, a.tickets); err != nil {
		logger.Warnf(a.ctx, "purchase: could not notify buyer %s of transaction %s: %+v", a.req.BuyerID, a.payment.TransactionID, err)
	}
	a.advance(StateComplete)

	return &Result{
		State:         StateComplete,
		OrderID:       a.orderID,
		Tickets:       a.tickets,
		TransactionID: a.payment.TransactionID,
		Payment:       a.payment,
		Split:         a.split,
		Warnings:      a.warnings,
	}, nil
}

func (o *Orchestrator) validate(a *attempt) error {
	req := a.req
	if err := a.ctx.Err(); err != nil {
		return a.fail(ReasonCancelled, "purchase abandoned before payment", err)
	}
	if req.Quantity < 1 || req.Quantity > o.maxQuantity {
		return a.fail(ReasonInvalidInput, fmt.Sprintf("quantity must be between 1 and %d", o.maxQuantity), nil)
	}
	if req.BuyerID == "" || req.EventID == "" {
		return a.fail(ReasonInvalidInput, "buyer and event are required", nil)
	}
	if req.TicketTypeID == "" {
		return a.fail(ReasonInvalidInput, "no ticket type selected", nil)
	}

	event, err := o.store.Event(a.ctx, req.EventID)
	if errors.Is(err, store.ErrEventNotFound) {
		return a.fail(ReasonInvalidInput, fmt.Sprintf("unknown event %s", req.EventID), err)
	}
	if err != nil {
		return a.fail(ReasonUnavailable, "could not load event", err)
	}
	tt, ok := event.TicketType(req.TicketTypeID)
	if !ok {
		return a.fail(ReasonInvalidInput, fmt.Sprintf("ticket type %s is not offered for this event", req.TicketTypeID), nil)
	}
	if !tt.Available {
		return a.fail(ReasonInvalidInput, fmt.Sprintf("ticket type %s is not available", tt.Name), nil)
	}
	a.event, a.ticketType = event, tt

	if req.PaymentMethod != "" {
		n, ok := payment.ParseNetwork(req.PaymentMethod)
		if !ok {
			return a.fail(ReasonInvalidInput, fmt.Sprintf("unknown payment method %s", req.PaymentMethod), nil)
		}
		a.network = n
	} else {
		a.network = payment.DetectNetwork(req.BuyerPhone)
	}
	if err := payment.ValidatePhone(req.BuyerPhone, a.network); err != nil {
		return a.fail(ReasonInvalidPhone, fmt.Sprintf("enter a valid %s number", a.network), err)
	}

	split, err := o.calc.Compute(tt.Price, int64(req.Quantity))
	if err != nil {
		return a.fail(ReasonInvalidInput, "order amount out of range", err)
	}
	a.split = split
	return nil
}

// authorize runs the provider's two step protocol. Any failure leaves no tickets behind.
func (o *Orchestrator) authorize(a *attempt) error {
	a.payment = model.PurchasePayment{
		PhoneNumber: a.req.BuyerPhone,
		Network:     string(a.network),
		Amount:      a.split.Gross,
	}

	intent, err := o.payments.CreateIntent(a.ctx, a.split.Gross, a.req.EventID, a.req.BuyerID)
	if err != nil {
		return o.declined(a, err.Error(), err)
	}
	a.payment.ProviderReference = intent.IntentID

	methods, err := o.payments.ListMethods(a.ctx)
	if err != nil {
		return o.declined(a, err.Error(), err)
	}
	method, ok := payment.MethodFor(methods, a.network)
	if !ok {
		return o.declined(a, fmt.Sprintf("%s payments are not available", a.network), nil)
	}

	if err := a.ctx.Err(); err != nil {
		return a.fail(ReasonCancelled, "purchase abandoned before payment", err)
	}

	// Once submitted the outcome must be observed even if the caller goes away.
	res, err := o.payments.ProcessPayment(context.WithoutCancel(a.ctx), intent.IntentID, method, a.split.Gross, a.req.BuyerPhone)
	if err != nil {
		return o.declined(a, err.Error(), err)
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "payment was not approved"
		}
		return o.declined(a, msg, nil)
	}

	a.payment.Status = statusAuthorized
	a.payment.TransactionID = res.TransactionID
	if a.payment.TransactionID == "" {
		a.payment.TransactionID = intent.IntentID
		a.warnings = append(a.warnings, "provider returned no transaction id, using intent reference")
	}
	return nil
}

func (o *Orchestrator) declined(a *attempt, msg string, err error) error {
	a.payment.Status = statusDeclined
	return a.fail(ReasonPaymentDeclined, msg, err)
}

// issue builds every ticket first and only then persists them, so an id or signing failure
// never leaves a partial order in the store.
func (o *Orchestrator) issue(a *attempt) *Error {
	nonce, err := o.ids.NewNonce()
	if err != nil {
		return a.fail(ReasonIssuanceFailed, "could not generate ticket ids", err)
	}
	shares, err := commission.Allocate(a.split, a.req.Quantity)
	if err != nil {
		return a.fail(ReasonIssuanceFailed, "could not allocate commission", err)
	}

	now := o.clock.Now().UTC().Truncate(time.Millisecond)
	tickets := make([]model.Ticket, 0, a.req.Quantity)
	for i := 0; i < a.req.Quantity; i++ {
		id, err := o.ids.Generate(ticketid.Input{
			BuyerID:     a.req.BuyerID,
			EventID:     a.req.EventID,
			PurchasedAt: now,
			Sequence:    i,
			Nonce:       nonce,
		})
		if err != nil {
			return a.fail(ReasonIssuanceFailed, fmt.Sprintf("could not generate id for ticket %d", i+1), err)
		}
		if i == 0 {
			a.orderID = ticketid.Root(id)
		}

		payload, err := o.qr.Encode(codec.Claims{
			TicketID:     id,
			EventID:      a.req.EventID,
			BuyerID:      a.req.BuyerID,
			TicketTypeID: a.ticketType.TicketTypeID,
		})
		if err != nil {
			return a.fail(ReasonIssuanceFailed, fmt.Sprintf("could not sign ticket %s", id), err)
		}

		tickets = append(tickets, model.Ticket{
			TicketID:             id,
			EventID:              a.req.EventID,
			BuyerID:              a.req.BuyerID,
			BuyerName:            a.req.BuyerName,
			BuyerPhone:           a.req.BuyerPhone,
			TicketTypeID:         a.ticketType.TicketTypeID,
			UnitPrice:            a.ticketType.Price,
			CommissionAmount:     shares[i].Commission,
			PaymentTransactionID: a.payment.TransactionID,
			QRPayload:            payload,
			PurchasedAt:          now,
		})
	}

	var persisted []string
	for i := range tickets {
		if _, err := o.store.AddTicket(a.ctx, &tickets[i]); err != nil {
			pe := a.fail(ReasonPersistError, fmt.Sprintf("stored %d of %d tickets", len(persisted), len(tickets)), err)
			pe.PersistedTicketIDs = persisted
			return pe
		}
		persisted = append(persisted, tickets[i].TicketID)
	}

	a.tickets = tickets
	return nil
}

// escalate flags a captured payment without valid tickets for manual reconciliation. No refund
// is attempted.
func (o *Orchestrator) escalate(a *attempt, pe *Error) {
	logger.WithFields(a.ctx, logrus.Fields{
		"transaction_id":       a.payment.TransactionID,
		"order_id":             a.orderID,
		"buyer_id":             a.req.BuyerID,
		"event_id":             a.req.EventID,
		"amount":               a.split.Gross,
		"quantity":             a.req.Quantity,
		"reason":               pe.Reason,
		"persisted_ticket_ids": pe.PersistedTicketIDs,
	}).Error("purchase: payment captured but tickets not issued, manual reconciliation required")
}

// recordRevenue never fails the purchase; the buyer already holds valid tickets.
func (o *Orchestrator) recordRevenue(a *attempt) {
	r := model.Revenue{Gross: a.split.Gross, Commission: a.split.Commission, Net: a.split.Net}
	if err := o.store.AccumulateEventRevenue(a.ctx, a.req.EventID, r); err != nil {
		logger.WithFields(a.ctx, logrus.Fields{
			"transaction_id": a.payment.TransactionID,
			"event_id":       a.req.EventID,
			"gross":          r.Gross,
			"commission":     r.Commission,
			"net":            r.Net,
		}).Warnf("purchase: revenue not recorded, reconcile manually: %v", err)
		a.warnings = append(a.warnings, "revenue recording failed and was flagged for manual reconciliation")
	}
}
