// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationConfirmedEvent is published when a registration reaches a
// terminal confirmed state. It carries enough information for
// downstream consumers to log, notify, or feed analytics without
// querying the primary database.
type RegistrationConfirmedEvent struct {
	RegistrationID string  `json:"registration_id"`
	EventID        string  `json:"event_id"`
	EventTitle     string  `json:"event_title"`
	UserID         uint64  `json:"user_id"`
	TicketTypeID   string  `json:"ticket_type_id"`
	TicketName     string  `json:"ticket_name"`
	Quantity       int     `json:"quantity"`
	TotalAmount    float64 `json:"total_amount"`
	PaymentID      string  `json:"payment_id,omitempty"`
	City           string  `json:"city"`
	ConfirmedAt    string  `json:"confirmed_at"`
}
