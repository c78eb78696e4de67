package model

import "time"

// Registration statuses. A registration is created PENDING when the
// chosen ticket type is priced and CONFIRMED directly when it is free.
// Payment success moves PENDING to CONFIRMED; payment failure moves it
// to CANCELLED.
const (
	RegistrationPending   = "pending"
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
	RegistrationRefunded  = "refunded"
	RegistrationCheckedIn = "checked_in"
)

// Registration is a user's claim on some quantity of one ticket type
// for one event. It is a top-level record cross-referenced by id, not
// embedded in the event.
//
// Fields:
//
//	ID           – UUID primary key.
//	EventID      – event being registered for.
//	UserID       – user who registered.
//	TicketTypeID – ticket type within the event.
//	Quantity     – number of tickets (1..5).
//	TotalAmount  – Price × Quantity in rand.
//	Status       – one of the Registration* constants above.
//	PaymentID    – id of the payment record, set once payment completes.
//	AttendeeInfo – one entry per ticket, minimally one (JSON column).
//	CreatedAt    – creation timestamp.
//	CheckedInAt  – when the attendee was checked in (nullable).
type Registration struct {
	ID           string         // registrations.id
	EventID      string         // registrations.event_id
	UserID       uint64         // registrations.user_id
	TicketTypeID string         // registrations.ticket_type_id
	Quantity     int            // registrations.quantity
	TotalAmount  float64        // registrations.total_amount
	Status       string         // registrations.status
	PaymentID    *string        // registrations.payment_id (nullable)
	AttendeeInfo []AttendeeInfo // registrations.attendee_info (JSON column)
	CreatedAt    time.Time      // registrations.created_at
	CheckedInAt  *time.Time     // registrations.checked_in_at (nullable)
}

// AttendeeInfo holds the contact details captured per ticket. Name and
// email are required; phone number is optional and, when present, is
// used for the SMS confirmation.
type AttendeeInfo struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}
