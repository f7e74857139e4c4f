package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventers-ticketing/model"
)

// Memory keeps everything in process. Claims are serialized by one mutex, which gives the same
// exactly-once guarantee as the conditional UPDATE in MySQL.
type Memory struct {
	mu      sync.Mutex
	events  map[string]model.Event
	tickets map[string]model.Ticket
	revenue map[string]model.Revenue
}

func NewMemory(events ...model.Event) *Memory {
	m := &Memory{
		events:  make(map[string]model.Event),
		tickets: make(map[string]model.Ticket),
		revenue: make(map[string]model.Revenue),
	}
	for _, e := range events {
		m.events[e.EventID] = e
	}
	return m
}

func (m *Memory) Event(_ context.Context, eventID string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event: %w: %s", ErrEventNotFound, eventID)
	}
	e.TicketTypes = append([]model.TicketType(nil), e.TicketTypes...)
	return &e, nil
}

func (m *Memory) AddTicket(_ context.Context, t *model.Ticket) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tickets[t.TicketID]; ok {
		return "", fmt.Errorf("addTicket: %w: %s", ErrDuplicateTicket, t.TicketID)
	}
	m.tickets[t.TicketID] = *t
	return t.TicketID, nil
}

func (m *Memory) Ticket(_ context.Context, ticketID string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[ticketID]
	if !ok {
		return nil, fmt.Errorf("ticket: %w: %s", ErrTicketNotFound, ticketID)
	}
	return &t, nil
}

// Tickets returns every stored ticket of an event.
func (m *Memory) Tickets(eventID string) []model.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ts []model.Ticket
	for _, t := range m.tickets {
		if t.EventID == eventID {
			ts = append(ts, t)
		}
	}
	return ts
}

func (m *Memory) ClaimTicketUse(_ context.Context, ticketID string, at time.Time) (Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[ticketID]
	if !ok {
		return Claim{}, fmt.Errorf("claimTicketUse: %w: %s", ErrTicketNotFound, ticketID)
	}
	if t.IsUsed {
		c := Claim{}
		if t.UsedAt != nil {
			prior := *t.UsedAt
			c.PriorUsedAt = &prior
		}
		return c, nil
	}

	t.IsUsed = true
	t.UsedAt = &at
	m.tickets[ticketID] = t
	return Claim{Claimed: true}, nil
}

func (m *Memory) AccumulateEventRevenue(_ context.Context, eventID string, r model.Revenue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.revenue[eventID]
	cur.Gross += r.Gross
	cur.Commission += r.Commission
	cur.Net += r.Net
	m.revenue[eventID] = cur
	return nil
}

func (m *Memory) EventRevenue(_ context.Context, eventID string) (*model.RevenueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &model.RevenueRecord{EventID: eventID, Revenue: m.revenue[eventID]}, nil
}
