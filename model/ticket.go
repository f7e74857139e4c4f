package model

import (
	"time"
)

// Ticket is one admission right. IsUsed only ever moves from false to true.
type Ticket struct {
	TicketID             string     `json:"ticket_id"`
	EventID              string     `json:"event_id"`
	BuyerID              string     `json:"buyer_id"`
	BuyerName            string     `json:"buyer_name"`
	BuyerPhone           string     `json:"buyer_phone"`
	TicketTypeID         string     `json:"ticket_type_id"`
	UnitPrice            int64      `json:"unit_price"`
	CommissionAmount     int64      `json:"commission_amount"`
	PaymentTransactionID string     `json:"payment_transaction_id"`
	QRPayload            string     `json:"qr_payload"`
	PurchasedAt          time.Time  `json:"purchased_at"`
	IsUsed               bool       `json:"is_used"`
	UsedAt               *time.Time `json:"used_at,omitempty"`
}

// NetAmount is what the venue receives for this ticket.
func (t *Ticket) NetAmount() int64 {
	return t.UnitPrice - t.CommissionAmount
}

// PurchasePayment lives only as long as one purchase attempt.
type PurchasePayment struct {
	ProviderReference string `json:"provider_reference"`
	PhoneNumber       string `json:"phone_number"`
	Network           string `json:"network"`
	Amount            int64  `json:"amount"`
	Status            string `json:"status"`
	TransactionID     string `json:"transaction_id,omitempty"`
}
