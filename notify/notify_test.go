package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventers-ticketing/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to, message string
	err         error
}

func (f *fakeSender) Send(_ context.Context, to, message string) (string, error) {
	f.to, f.message = to, message
	return "SM1", f.err
}

func TestTicketsIssued(t *testing.T) {
	s := &fakeSender{}
	n := NewSMS(s)

	err := n.TicketsIssued(context.Background(), "0771234567", []model.Ticket{
		{TicketID: "EVT_1_AB", EventID: "e-1"},
		{TicketID: "EVT_1_AB_2", EventID: "e-1"},
	})
	require.Nil(t, err)
	assert.Equal(t, "0771234567", s.to)
	assert.Equal(t, "Your 2 ticket(s) for event e-1: EVT_1_AB, EVT_1_AB_2. Show the QR code at the gate.", s.message)
}

func TestTicketAdmitted(t *testing.T) {
	s := &fakeSender{}
	n := NewSMS(s)

	at := time.Date(2026, 3, 14, 19, 5, 0, 0, time.UTC)
	require.Nil(t, n.TicketAdmitted(context.Background(), model.Ticket{TicketID: "EVT_1_AB", BuyerPhone: "0701234567"}, at))
	assert.Equal(t, "Ticket EVT_1_AB admitted at 19:05. Enjoy the event!", s.message)
}

func TestSenderErrorIsReturned(t *testing.T) {
	n := NewSMS(&fakeSender{err: errors.New("rate limited")})

	err := n.TicketsIssued(context.Background(), "0771234567", []model.Ticket{{TicketID: "t"}})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
