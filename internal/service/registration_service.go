// Package service owns the business rules of the platform. Handlers
// never write registrations, payments or inventory directly: those
// writes all flow through the services here, so the rules cannot be
// bypassed by a client.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kagisomabe/luma-events/internal/integration"
	"github.com/kagisomabe/luma-events/internal/model"
	"github.com/kagisomabe/luma-events/internal/queue"
	"github.com/kagisomabe/luma-events/internal/repository"
)

// Sentinel errors surfaced by the registration workflow. Handlers
// translate these into HTTP status codes.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrValidation      = errors.New("validation failed")
	ErrTicketInactive  = errors.New("ticket type is not on sale")
	ErrPaymentFailed   = errors.New("payment failed")
)

// ErrSoldOut re-exports the repository sentinel so callers depending on
// the service package alone can match it.
var ErrSoldOut = repository.ErrSoldOut

// maxTicketsPerOrder caps how many tickets one registration may claim.
const maxTicketsPerOrder = 5

// EventStore is the slice of event persistence the workflow needs.
type EventStore interface {
	GetByID(ctx context.Context, id string) (model.Event, error)
	ReserveTickets(ctx context.Context, eventID, ticketTypeID string, qty int) error
	ReleaseTickets(ctx context.Context, eventID, ticketTypeID string, qty int) error
	IncrementRegistrationCount(ctx context.Context, id string, by int) error
}

// RegistrationStore persists registrations.
type RegistrationStore interface {
	Create(ctx context.Context, reg *model.Registration) error
	SetStatus(ctx context.Context, id, status string) error
	Confirm(ctx context.Context, id, paymentID string) error
	GetByID(ctx context.Context, id string) (model.Registration, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Registration, error)
}

// PaymentStore persists payments.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByRegistration(ctx context.Context, registrationID string) (model.Payment, error)
}

// ChangeFeed receives a tick after a collection is mutated. The
// subscription manager implements it; a nil feed disables ticks.
type ChangeFeed interface {
	Notify(ctx context.Context, collection string)
}

// ConfirmedPublisher pushes a registration-confirmed event to the
// message broker. Failures are the caller's to ignore.
type ConfirmedPublisher func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error

// RegistrationService orchestrates the registration workflow: ticket
// selection, inventory reservation, payment, persistence and
// notification fan-out.
type RegistrationService struct {
	events    EventStore
	regs      RegistrationStore
	payments  PaymentStore
	providers *integration.Providers
	feed      ChangeFeed         // optional
	publish   ConfirmedPublisher // optional
}

// NewRegistrationService constructs the workflow service. events, regs,
// payments and providers must be non-nil; feed and publish may be nil.
func NewRegistrationService(events EventStore, regs RegistrationStore, payments PaymentStore,
	providers *integration.Providers, feed ChangeFeed, publish ConfirmedPublisher) *RegistrationService {
	if events == nil || regs == nil || payments == nil || providers == nil {
		panic("nil dependency passed to NewRegistrationService")
	}
	return &RegistrationService{
		events:    events,
		regs:      regs,
		payments:  payments,
		providers: providers,
		feed:      feed,
		publish:   publish,
	}
}

// RegisterInput carries one attendee's ticket selection for one event.
type RegisterInput struct {
	UserID       uint64
	EventID      string
	TicketTypeID string
	Quantity     int
	Attendee     model.AttendeeInfo
}

// Register runs the full workflow for one registration and returns the
// finalized record with its terminal status.
//
// Precondition failures (no user, bad quantity, inactive or sold-out
// ticket) are returned before any write. Payment failure is the only
// case with compensating writes: the registration is moved to cancelled
// and the reserved tickets are released. Notification failures are
// logged and never affect the outcome.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (model.Registration, error) {
	if in.UserID == 0 {
		return model.Registration{}, ErrUnauthenticated
	}
	if in.Quantity < 1 || in.Quantity > maxTicketsPerOrder {
		return model.Registration{}, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, maxTicketsPerOrder)
	}
	if strings.TrimSpace(in.Attendee.Name) == "" || strings.TrimSpace(in.Attendee.Email) == "" {
		return model.Registration{}, fmt.Errorf("%w: attendee name and email are required", ErrValidation)
	}

	ev, err := s.events.GetByID(ctx, in.EventID)
	if err != nil {
		return model.Registration{}, err
	}
	if !ev.IsPublished {
		return model.Registration{}, repository.ErrNotFound
	}
	ticket, ok := findTicketType(ev, in.TicketTypeID)
	if !ok {
		return model.Registration{}, fmt.Errorf("%w: ticket type does not belong to event", ErrValidation)
	}
	if !ticket.IsActive {
		return model.Registration{}, ErrTicketInactive
	}
	if in.Quantity > ticket.QuantityAvailable {
		return model.Registration{}, ErrSoldOut
	}

	// Reserve inventory with a guarded decrement; concurrent
	// registrations race here and losers get ErrSoldOut.
	if err := s.events.ReserveTickets(ctx, ev.ID, ticket.ID, in.Quantity); err != nil {
		return model.Registration{}, err
	}

	status := model.RegistrationConfirmed
	if ticket.Price > 0 {
		status = model.RegistrationPending
	}
	reg := model.Registration{
		EventID:      ev.ID,
		UserID:       in.UserID,
		TicketTypeID: ticket.ID,
		Quantity:     in.Quantity,
		TotalAmount:  ticket.Price * float64(in.Quantity),
		Status:       status,
		AttendeeInfo: []model.AttendeeInfo{in.Attendee},
	}
	if err := s.regs.Create(ctx, &reg); err != nil {
		s.compensate(ctx, ev.ID, ticket.ID, in.Quantity)
		return model.Registration{}, err
	}

	var paymentID string
	if ticket.Price > 0 {
		paymentID, err = s.collectPayment(ctx, &reg, in.Attendee)
		if err != nil {
			if stErr := s.regs.SetStatus(ctx, reg.ID, model.RegistrationCancelled); stErr != nil {
				log.Printf("registration: cancel after payment failure failed for %s: %v", reg.ID, stErr)
			}
			s.compensate(ctx, ev.ID, ticket.ID, in.Quantity)
			reg.Status = model.RegistrationCancelled
			s.notifyFeed(ctx, "registrations")
			return reg, err
		}
		reg.Status = model.RegistrationConfirmed
		reg.PaymentID = &paymentID
	}

	if err := s.events.IncrementRegistrationCount(ctx, ev.ID, in.Quantity); err != nil {
		// The registration is already confirmed; the counter is a
		// display aggregate, so log and continue.
		log.Printf("registration: incrementing registration count for %s failed: %v", ev.ID, err)
	}

	s.sendConfirmations(ctx, ev, ticket, reg, in.Attendee)

	if s.publish != nil {
		_ = s.publish(ctx, queue.RegistrationConfirmedEvent{
			RegistrationID: reg.ID,
			EventID:        ev.ID,
			EventTitle:     ev.Title,
			UserID:         reg.UserID,
			TicketTypeID:   ticket.ID,
			TicketName:     ticket.Name,
			Quantity:       reg.Quantity,
			TotalAmount:    reg.TotalAmount,
			PaymentID:      paymentID,
			City:           ev.Venue.City,
			ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}
	s.notifyFeed(ctx, "registrations")
	s.notifyFeed(ctx, "events")

	return reg, nil
}

// GetForUser returns one registration owned by userID, together with
// its payment record when the registration was paid. A registration
// belonging to another user is reported as not found.
func (s *RegistrationService) GetForUser(ctx context.Context, userID uint64, id string) (model.Registration, *model.Payment, error) {
	if userID == 0 {
		return model.Registration{}, nil, ErrUnauthenticated
	}
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return model.Registration{}, nil, err
	}
	if reg.UserID != userID {
		return model.Registration{}, nil, repository.ErrNotFound
	}
	if reg.PaymentID == nil {
		return reg, nil, nil
	}
	p, err := s.payments.GetByRegistration(ctx, reg.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return reg, nil, nil
		}
		return model.Registration{}, nil, err
	}
	return reg, &p, nil
}

// ListForUser returns the registrations created by userID.
func (s *RegistrationService) ListForUser(ctx context.Context, userID uint64) ([]model.Registration, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.regs.ListByUser(ctx, userID)
}

// collectPayment charges the registration total and persists the
// payment record. It returns the payment id on success and
// ErrPaymentFailed (wrapping any provider detail) otherwise.
func (s *RegistrationService) collectPayment(ctx context.Context, reg *model.Registration, attendee model.AttendeeInfo) (string, error) {
	result, err := s.providers.Payments.ProcessPayment(ctx, reg.TotalAmount, reg.ID, attendee.Email, attendee.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if result.Status != model.PaymentCompleted {
		return "", fmt.Errorf("%w: provider returned status %q", ErrPaymentFailed, result.Status)
	}

	now := time.Now().UTC()
	payment := model.Payment{
		RegistrationID:        reg.ID,
		UserID:                reg.UserID,
		Amount:                reg.TotalAmount,
		Currency:              "ZAR",
		Provider:              model.ProviderPayFast,
		Status:                model.PaymentCompleted,
		ProviderTransactionID: result.TransactionID,
		CompletedAt:           &now,
	}
	if err := s.payments.Create(ctx, &payment); err != nil {
		// The charge went through but we cannot record it; treat as a
		// failed registration so inventory and money stay explainable.
		return "", fmt.Errorf("%w: storing payment record: %v", ErrPaymentFailed, err)
	}
	if err := s.regs.Confirm(ctx, reg.ID, payment.ID); err != nil {
		return "", fmt.Errorf("%w: confirming registration: %v", ErrPaymentFailed, err)
	}
	s.notifyFeed(ctx, "payments")
	return payment.ID, nil
}

// sendConfirmations delivers the confirmation email and, when a phone
// number was supplied, the confirmation SMS. Delivery failures are
// logged and swallowed.
func (s *RegistrationService) sendConfirmations(ctx context.Context, ev model.Event, ticket model.TicketType, reg model.Registration, attendee model.AttendeeInfo) {
	subject := "Registration Confirmed: " + ev.Title
	body := confirmationEmailBody(ev, ticket, reg, attendee)
	if res, err := s.providers.Email.SendEmail(ctx, attendee.Email, subject, body); err != nil {
		log.Printf("registration: confirmation email for %s failed: %v", reg.ID, err)
	} else if !res.Success {
		log.Printf("registration: confirmation email for %s not delivered: %s", reg.ID, res.Status)
	}

	if attendee.PhoneNumber == "" {
		return
	}
	msg := fmt.Sprintf("Hi %s! Your registration for %s on %s is confirmed. See you there! - Luma SA",
		attendee.Name, ev.Title, ev.StartDate.Format("2 Jan 2006"))
	if res, err := s.providers.SMS.SendSMS(ctx, attendee.PhoneNumber, msg); err != nil {
		log.Printf("registration: confirmation SMS for %s failed: %v", reg.ID, err)
	} else if !res.Success {
		log.Printf("registration: confirmation SMS for %s not delivered: %s", reg.ID, res.Status)
	}
}

// compensate returns reserved tickets to the pool after a failure.
func (s *RegistrationService) compensate(ctx context.Context, eventID, ticketTypeID string, qty int) {
	if err := s.events.ReleaseTickets(ctx, eventID, ticketTypeID, qty); err != nil {
		log.Printf("registration: releasing %d tickets for %s/%s failed: %v", qty, eventID, ticketTypeID, err)
	}
}

func (s *RegistrationService) notifyFeed(ctx context.Context, collection string) {
	if s.feed != nil {
		s.feed.Notify(ctx, collection)
	}
}

func findTicketType(ev model.Event, id string) (model.TicketType, bool) {
	for _, tt := range ev.TicketTypes {
		if tt.ID == id {
			return tt, true
		}
	}
	return model.TicketType{}, false
}

// confirmationEmailBody renders the confirmation email as simple HTML.
func confirmationEmailBody(ev model.Event, ticket model.TicketType, reg model.Registration, attendee model.AttendeeInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Welcome to %s!</h1>", ev.Title)
	fmt.Fprintf(&b, "<p>Hi %s,</p>", attendee.Name)
	fmt.Fprintf(&b, "<p>Your registration has been confirmed for the event on %s.</p>", ev.StartDate.Format("2 Jan 2006"))
	b.WriteString("<p><strong>Event Details:</strong></p><ul>")
	fmt.Fprintf(&b, "<li>Date: %s</li>", ev.StartDate.Format("2 Jan 2006"))
	fmt.Fprintf(&b, "<li>Time: %s</li>", ev.StartDate.Format("15:04"))
	fmt.Fprintf(&b, "<li>Location: %s, %s</li>", ev.Venue.Name, ev.Venue.City)
	fmt.Fprintf(&b, "<li>Ticket: %s x %d</li>", ticket.Name, reg.Quantity)
	fmt.Fprintf(&b, "<li>Total: R%.2f</li>", reg.TotalAmount)
	b.WriteString("</ul><p>We look forward to seeing you there!</p>")
	return b.String()
}
