// Package validation turns a scanned QR payload into an admit or deny decision at the gate.
//
// A ticket is admitted by exactly one scan. The single-use guarantee rests on the store's
// atomic claim; the scan cache only ever short-circuits to a deny.
package validation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventers-ticketing/clock"
	"eventers-ticketing/codec"
	"eventers-ticketing/logger"
	"eventers-ticketing/metrics"
	"eventers-ticketing/model"
	"eventers-ticketing/notify"
	"eventers-ticketing/scancache"
	"eventers-ticketing/store"
)

const DefaultBatchConcurrency = 8

type Outcome string

const (
	Admit Outcome = "admit"
	Deny  Outcome = "deny"
)

type Reason string

const (
	ReasonMalformed     Reason = "malformed"
	ReasonWrongEvent    Reason = "wrong_event"
	ReasonAlreadyUsed   Reason = "already_used"
	ReasonUnknownTicket Reason = "unknown_ticket"
)

// Decision is the result of one scan. Denials are decisions, not errors.
type Decision struct {
	Outcome     Outcome
	Reason      Reason
	TicketID    string
	UsedAt      *time.Time
	PriorUsedAt *time.Time
}

func (d Decision) Admitted() bool {
	return d.Outcome == Admit
}

// Result is the wire form handed to gate devices.
func (d Decision) Result() model.ScanResult {
	return model.ScanResult{
		Outcome:     string(d.Outcome),
		Reason:      string(d.Reason),
		TicketID:    d.TicketID,
		UsedAt:      d.UsedAt,
		PriorUsedAt: d.PriorUsedAt,
	}
}

type Decoder interface {
	Decode(payload string) (codec.Claims, error)
}

// Store is the slice of persistence a scan needs.
type Store interface {
	Ticket(ctx context.Context, ticketID string) (*model.Ticket, error)
	ClaimTicketUse(ctx context.Context, ticketID string, at time.Time) (store.Claim, error)
}

type Engine struct {
	qr          Decoder
	store       Store
	cache       scancache.Cache
	notifier    notify.Notifier
	clock       clock.Clock
	concurrency int
}

type Option func(*Engine)

func WithScanCache(c scancache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithBatchConcurrency caps how many scans of one batch run at once.
func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func New(qr Decoder, s Store, opts ...Option) *Engine {
	e := &Engine{
		qr:          qr,
		store:       s,
		cache:       scancache.Nop(),
		notifier:    notify.Nop(),
		clock:       clock.NewSystem(),
		concurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate decides one scan at the gate for expectedEventID. An error means the decision could
// not be made at all and the scan should be retried.
func (e *Engine) Validate(ctx context.Context, payload, expectedEventID string) (Decision, error) {
	d, err := e.validate(ctx, payload, expectedEventID)
	if err != nil {
		metrics.RecordScan("error", "")
		return Decision{}, err
	}
	metrics.RecordScan(string(d.Outcome), string(d.Reason))
	logger.Debugf(ctx, "validate: ticket %q for event %s: %s %s", d.TicketID, expectedEventID, d.Outcome, d.Reason)
	return d, nil
}

func (e *Engine) validate(ctx context.Context, payload, expectedEventID string) (Decision, error) {
	claims, err := e.qr.Decode(payload)
	if err != nil {
		if errors.Is(err, codec.ErrTagMismatch) {
			logger.Warnf(ctx, "validate: rejected payload with bad signature at event %s", expectedEventID)
		}
		return deny(ReasonMalformed, ""), nil
	}
	if claims.EventID != expectedEventID {
		return deny(ReasonWrongEvent, claims.TicketID), nil
	}

	if prior, err := e.cache.UsedAt(ctx, claims.TicketID); err != nil {
		logger.Warnf(ctx, "validate: scan cache unavailable, using store: %v", err)
	} else if prior != nil {
		d := deny(ReasonAlreadyUsed, claims.TicketID)
		d.PriorUsedAt = prior
		return d, nil
	}

	if err := ctx.Err(); err != nil {
		return Decision{}, fmt.Errorf("validate: %w", err)
	}

	// used_at is stored with millisecond precision; report what a re-scan will read back.
	at := e.clock.Now().UTC().Truncate(time.Millisecond)
	claim, err := e.store.ClaimTicketUse(ctx, claims.TicketID, at)
	if errors.Is(err, store.ErrTicketNotFound) {
		return deny(ReasonUnknownTicket, claims.TicketID), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("validate: unable to claim ticket %s: %w", claims.TicketID, err)
	}

	if !claim.Claimed {
		d := deny(ReasonAlreadyUsed, claims.TicketID)
		d.PriorUsedAt = claim.PriorUsedAt
		if claim.PriorUsedAt != nil {
			e.remember(ctx, claims.TicketID, *claim.PriorUsedAt)
		}
		return d, nil
	}

	// The claim is final; nothing below may turn it into a deny.
	e.remember(ctx, claims.TicketID, at)
	e.announce(ctx, claims.TicketID, at)
	return Decision{Outcome: Admit, TicketID: claims.TicketID, UsedAt: &at}, nil
}

func deny(reason Reason, ticketID string) Decision {
	return Decision{Outcome: Deny, Reason: reason, TicketID: ticketID}
}

func (e *Engine) remember(ctx context.Context, ticketID string, at time.Time) {
	if err := e.cache.MarkUsed(context.WithoutCancel(ctx), ticketID, at); err != nil {
		logger.Warnf(ctx, "validate: %v", err)
	}
}

func (e *Engine) announce(ctx context.Context, ticketID string, at time.Time) {
	ctx = context.WithoutCancel(ctx)
	t, err := e.store.Ticket(ctx, ticketID)
	if err != nil {
		logger.Warnf(ctx, "validate: no admission notice for %s: %v", ticketID, err)
		return
	}
	if err := e.notifier.TicketAdmitted(ctx, *t, at); err != nil {
		logger.Warnf(ctx, "validate: no admission notice for %s: %v", ticketID, err)
	}
}

// BatchItem is the decision for one payload of a batch, or the error that prevented it.
type BatchItem struct {
	Decision Decision
	Err      error
}

// ValidateBatch validates payloads concurrently and returns once all are decided, in input
// order. Each item is claimed independently; a failure on one does not affect the others.
func (e *Engine) ValidateBatch(ctx context.Context, payloads []string, expectedEventID string) []BatchItem {
	items := make([]BatchItem, len(payloads))
	sem := make(chan struct{}, e.concurrency)

	var wg sync.WaitGroup
	for i, p := range payloads {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()

			d, err := e.Validate(ctx, p, expectedEventID)
			items[i] = BatchItem{Decision: d, Err: err}
		}(i, p)
	}
	wg.Wait()

	return items
}
