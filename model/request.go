package model

import "time"

type PurchaseRequest struct {
	Data struct {
		Purchase *Purchase `json:"purchase,omitempty"`
	} `json:"data"`
}

type Purchase struct {
	EventID       string `json:"event_id"`
	TicketTypeID  string `json:"ticket_type_id"`
	Quantity      int    `json:"quantity"`
	BuyerID       string `json:"buyer_id"`
	BuyerName     string `json:"buyer_name"`
	BuyerPhone    string `json:"buyer_phone"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

type PurchaseResponse struct {
	OrderID       string   `json:"order_id"`
	Tickets       []Ticket `json:"tickets"`
	TransactionID string   `json:"transaction_id"`
	Warnings      []string `json:"warnings,omitempty"`
}

type ValidateRequest struct {
	Data struct {
		Payload  string   `json:"payload,omitempty"`
		Payloads []string `json:"payloads,omitempty"`
	} `json:"data"`
}

type ScanResult struct {
	Outcome     string     `json:"outcome"`
	Reason      string     `json:"reason,omitempty"`
	TicketID    string     `json:"ticket_id,omitempty"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	PriorUsedAt *time.Time `json:"prior_used_at,omitempty"`
}
