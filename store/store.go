// Package store persists tickets and revenue for the ticketing core.
package store

import (
	"context"
	"errors"
	"time"

	"eventers-ticketing/model"
)

var (
	ErrTicketNotFound  = errors.New("store: ticket not found")
	ErrEventNotFound   = errors.New("store: event not found")
	ErrDuplicateTicket = errors.New("store: duplicate ticket id")
)

// Claim is the outcome of an attempt to mark a ticket used.
type Claim struct {
	Claimed     bool
	PriorUsedAt *time.Time
}

// Store is the persistence collaborator. ClaimTicketUse must be atomic: of any number of
// concurrent claims for one ticket id exactly one sees Claimed.
type Store interface {
	Event(ctx context.Context, eventID string) (*model.Event, error)
	AddTicket(ctx context.Context, t *model.Ticket) (string, error)
	Ticket(ctx context.Context, ticketID string) (*model.Ticket, error)
	ClaimTicketUse(ctx context.Context, ticketID string, at time.Time) (Claim, error)
	AccumulateEventRevenue(ctx context.Context, eventID string, r model.Revenue) error
	EventRevenue(ctx context.Context, eventID string) (*model.RevenueRecord, error)
}
