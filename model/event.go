package model

import (
	"time"
)

// Event is owned by the venue and read-only to the ticketing core.
type Event struct {
	EventID     string       `json:"event_id"`
	Name        string       `json:"name"`
	Location    string       `json:"location"`
	StartsAt    time.Time    `json:"starts_at"`
	TicketTypes []TicketType `json:"ticket_types"`
}

type TicketType struct {
	TicketTypeID string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	Available    bool   `json:"available"`
}

// TicketType returns the offer with the given id, in the event's order.
func (e *Event) TicketType(id string) (*TicketType, bool) {
	for i := range e.TicketTypes {
		if e.TicketTypes[i].TicketTypeID == id {
			return &e.TicketTypes[i], true
		}
	}
	return nil, false
}

// Revenue is one accumulation step for an event's RevenueRecord.
type Revenue struct {
	Gross      int64 `json:"gross_amount"`
	Commission int64 `json:"commission_amount"`
	Net        int64 `json:"net_to_venue"`
}

type RevenueRecord struct {
	EventID string `json:"event_id"`
	Revenue
}
