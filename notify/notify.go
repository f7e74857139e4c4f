// Package notify tells buyers about their tickets.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventers-ticketing/model"
	"eventers-ticketing/twilio"
)

const (
	issuedMessage   = "Your %d ticket(s) for event %s: %s. Show the QR code at the gate."
	admittedMessage = "Ticket %s admitted at %s. Enjoy the event!"
)

// Notifier is injected into the purchase and validation flows. Delivery is best effort; callers
// log failures and carry on.
type Notifier interface {
	TicketsIssued(ctx context.Context, phone string, tickets []model.Ticket) error
	TicketAdmitted(ctx context.Context, ticket model.Ticket, at time.Time) error
}

type sms struct {
	sender twilio.Sender
}

func NewSMS(sender twilio.Sender) Notifier {
	return &sms{sender: sender}
}

func (n *sms) TicketsIssued(ctx context.Context, phone string, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.TicketID
	}
	msg := fmt.Sprintf(issuedMessage, len(tickets), tickets[0].EventID, strings.Join(ids, ", "))
	if _, err := n.sender.Send(ctx, phone, msg); err != nil {
		return fmt.Errorf("ticketsIssued: %w", err)
	}
	return nil
}

func (n *sms) TicketAdmitted(ctx context.Context, ticket model.Ticket, at time.Time) error {
	if ticket.BuyerPhone == "" {
		return nil
	}
	msg := fmt.Sprintf(admittedMessage, ticket.TicketID, at.Format("15:04"))
	if _, err := n.sender.Send(ctx, ticket.BuyerPhone, msg); err != nil {
		return fmt.Errorf("ticketAdmitted: %w", err)
	}
	return nil
}

type nop struct{}

// Nop discards every notification.
func Nop() Notifier {
	return nop{}
}

func (nop) TicketsIssued(context.Context, string, []model.Ticket) error { return nil }

func (nop) TicketAdmitted(context.Context, model.Ticket, time.Time) error { return nil }
