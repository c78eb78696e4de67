package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kagisomabe/luma-events/internal/integration"
	"github.com/kagisomabe/luma-events/internal/model"
	"github.com/kagisomabe/luma-events/internal/queue"
	"github.com/kagisomabe/luma-events/internal/repository"
)

// fakeEventStore serves one event and records inventory traffic.
type fakeEventStore struct {
	event      model.Event
	getErr     error
	reserveErr error

	reserved   int
	released   int
	countAdded int
}

func (f *fakeEventStore) GetByID(ctx context.Context, id string) (model.Event, error) {
	if f.getErr != nil {
		return model.Event{}, f.getErr
	}
	if id != f.event.ID {
		return model.Event{}, repository.ErrNotFound
	}
	return f.event, nil
}

func (f *fakeEventStore) ReserveTickets(ctx context.Context, eventID, ticketTypeID string, qty int) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved += qty
	return nil
}

func (f *fakeEventStore) ReleaseTickets(ctx context.Context, eventID, ticketTypeID string, qty int) error {
	f.released += qty
	return nil
}

func (f *fakeEventStore) IncrementRegistrationCount(ctx context.Context, id string, by int) error {
	f.countAdded += by
	return nil
}

// fakeRegStore keeps registrations in memory and assigns sequential ids.
type fakeRegStore struct {
	createErr error
	created   []model.Registration
	statuses  map[string]string
	confirmed map[string]string // registration id -> payment id
}

func newFakeRegStore() *fakeRegStore {
	return &fakeRegStore{statuses: map[string]string{}, confirmed: map[string]string{}}
}

func (f *fakeRegStore) Create(ctx context.Context, reg *model.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	if reg.ID == "" {
		reg.ID = fmt.Sprintf("reg-%d", len(f.created)+1)
	}
	reg.CreatedAt = time.Now()
	f.created = append(f.created, *reg)
	f.statuses[reg.ID] = reg.Status
	return nil
}

func (f *fakeRegStore) SetStatus(ctx context.Context, id, status string) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeRegStore) Confirm(ctx context.Context, id, paymentID string) error {
	f.statuses[id] = model.RegistrationConfirmed
	f.confirmed[id] = paymentID
	return nil
}

func (f *fakeRegStore) GetByID(ctx context.Context, id string) (model.Registration, error) {
	for _, reg := range f.created {
		if reg.ID != id {
			continue
		}
		reg.Status = f.statuses[id]
		if pid, ok := f.confirmed[id]; ok {
			reg.PaymentID = &pid
		}
		return reg, nil
	}
	return model.Registration{}, repository.ErrNotFound
}

func (f *fakeRegStore) ListByUser(ctx context.Context, userID uint64) ([]model.Registration, error) {
	var out []model.Registration
	for _, reg := range f.created {
		if reg.UserID == userID {
			out = append(out, reg)
		}
	}
	return out, nil
}

type fakePaymentStore struct {
	createErr error
	created   []model.Payment
}

func (f *fakePaymentStore) Create(ctx context.Context, p *model.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("pay-%d", len(f.created)+1)
	}
	f.created = append(f.created, *p)
	return nil
}

func (f *fakePaymentStore) GetByRegistration(ctx context.Context, registrationID string) (model.Payment, error) {
	for _, p := range f.created {
		if p.RegistrationID == registrationID {
			return p, nil
		}
	}
	return model.Payment{}, repository.ErrNotFound
}

// fakePayments is a deterministic stand-in for the gateway simulator.
type fakePayments struct {
	fail     bool
	sendErr  error
	attempts int
}

func (f *fakePayments) ProcessPayment(ctx context.Context, amount float64, orderID, customerEmail, customerName string) (integration.PaymentResult, error) {
	f.attempts++
	if f.sendErr != nil {
		return integration.PaymentResult{}, f.sendErr
	}
	if f.fail {
		return integration.PaymentResult{Status: model.PaymentFailed, TransactionID: "PF_test", Reference: "REFtest"}, nil
	}
	return integration.PaymentResult{Status: model.PaymentCompleted, TransactionID: "PF_test", Reference: "REFtest", PaymentURL: "https://pay"}, nil
}

func (f *fakePayments) VerifyPayment(ctx context.Context, transactionID string) (integration.VerifyResult, error) {
	return integration.VerifyResult{Verified: true, Amount: 100}, nil
}

type fakeEmail struct {
	err   error
	sent  int
	calls []string
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, htmlBody string) (integration.EmailResult, error) {
	if f.err != nil {
		return integration.EmailResult{}, f.err
	}
	f.sent++
	f.calls = append(f.calls, to)
	return integration.EmailResult{Success: true, MessageID: "SG_test", Status: "delivered"}, nil
}

func (f *fakeEmail) SendTemplateEmail(ctx context.Context, to, templateID string, data map[string]string) (integration.EmailResult, error) {
	return integration.EmailResult{Success: true, MessageID: "SG_TPL_test", Status: "delivered"}, nil
}

type fakeSMS struct {
	sent  int
	calls []string
}

func (f *fakeSMS) SendSMS(ctx context.Context, phoneNumber, message string) (integration.SMSResult, error) {
	f.sent++
	f.calls = append(f.calls, phoneNumber)
	return integration.SMSResult{Success: true, MessageID: "CLK_test", Cost: 0.15, Status: "delivered"}, nil
}

func (f *fakeSMS) GetDeliveryStatus(ctx context.Context, messageID string) (integration.DeliveryStatus, error) {
	return integration.DeliveryStatus{Status: "delivered", Timestamp: time.Now()}, nil
}

type fakeFeed struct {
	ticks []string
}

func (f *fakeFeed) Notify(ctx context.Context, collection string) {
	f.ticks = append(f.ticks, collection)
}

func (f *fakeFeed) count(collection string) int {
	n := 0
	for _, c := range f.ticks {
		if c == collection {
			n++
		}
	}
	return n
}

// testFixture wires the service around fakes for one scenario.
type testFixture struct {
	events    *fakeEventStore
	regs      *fakeRegStore
	payments  *fakePaymentStore
	gateway   *fakePayments
	email     *fakeEmail
	sms       *fakeSMS
	feed      *fakeFeed
	published []queue.RegistrationConfirmedEvent
	svc       *RegistrationService
}

func newFixture() *testFixture {
	f := &testFixture{
		events: &fakeEventStore{event: model.Event{
			ID:          "jazz-fest-2026",
			Title:       "Joburg Jazz Festival",
			StartDate:   time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2026, 9, 12, 23, 0, 0, 0, time.UTC),
			Venue:       model.Venue{Name: "Market Theatre", City: "Johannesburg"},
			IsPublished: true,
			TicketTypes: []model.TicketType{
				{ID: "general", EventID: "jazz-fest-2026", Name: "General", Price: 150, Quantity: 100, QuantityAvailable: 10, IsActive: true},
				{ID: "free", EventID: "jazz-fest-2026", Name: "Community", Price: 0, Quantity: 50, QuantityAvailable: 50, IsActive: true},
				{ID: "vip", EventID: "jazz-fest-2026", Name: "VIP", Price: 500, Quantity: 20, QuantityAvailable: 5, IsActive: false},
			},
		}},
		regs:     newFakeRegStore(),
		payments: &fakePaymentStore{},
		gateway:  &fakePayments{},
		email:    &fakeEmail{},
		sms:      &fakeSMS{},
		feed:     &fakeFeed{},
	}
	providers := &integration.Providers{
		Payments: f.gateway,
		SMS:      f.sms,
		Email:    f.email,
	}
	publish := func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error {
		f.published = append(f.published, ev)
		return nil
	}
	f.svc = NewRegistrationService(f.events, f.regs, f.payments, providers, f.feed, publish)
	return f
}

func validInput() RegisterInput {
	return RegisterInput{
		UserID:       7,
		EventID:      "jazz-fest-2026",
		TicketTypeID: "general",
		Quantity:     2,
		Attendee: model.AttendeeInfo{
			Name:        "Thabo Nkosi",
			Email:       "thabo@example.com",
			PhoneNumber: "+27821234567",
		},
	}
}

func TestRegisterFreeTicketConfirmsWithoutPayment(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.TicketTypeID = "free"
	in.Quantity = 3

	reg, err := f.svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if reg.Status != model.RegistrationConfirmed {
		t.Errorf("status = %q, want confirmed", reg.Status)
	}
	if reg.PaymentID != nil {
		t.Errorf("free registration has payment id %q", *reg.PaymentID)
	}
	if reg.TotalAmount != 0 {
		t.Errorf("total = %v, want 0", reg.TotalAmount)
	}
	if f.gateway.attempts != 0 {
		t.Errorf("payment gateway called %d times for a free ticket", f.gateway.attempts)
	}
	if len(f.payments.created) != 0 {
		t.Errorf("%d payment records created for a free ticket", len(f.payments.created))
	}
	if f.events.reserved != 3 {
		t.Errorf("reserved %d tickets, want 3", f.events.reserved)
	}
	if f.events.countAdded != 3 {
		t.Errorf("registration count incremented by %d, want 3", f.events.countAdded)
	}
	if f.email.sent != 1 || f.sms.sent != 1 {
		t.Errorf("notifications sent: %d email, %d sms, want 1 each", f.email.sent, f.sms.sent)
	}
	if len(f.published) != 1 {
		t.Fatalf("%d queue events published, want 1", len(f.published))
	}
	if f.published[0].City != "Johannesburg" || f.published[0].Quantity != 3 {
		t.Errorf("published event = %+v", f.published[0])
	}
}

func TestRegisterPricedTicketTakesPayment(t *testing.T) {
	f := newFixture()
	reg, err := f.svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if reg.Status != model.RegistrationConfirmed {
		t.Errorf("status = %q, want confirmed", reg.Status)
	}
	if reg.TotalAmount != 300 {
		t.Errorf("total = %v, want 300", reg.TotalAmount)
	}
	if len(f.payments.created) != 1 {
		t.Fatalf("%d payment records, want 1", len(f.payments.created))
	}
	p := f.payments.created[0]
	if p.Amount != 300 || p.Currency != "ZAR" || p.Status != model.PaymentCompleted {
		t.Errorf("payment = %+v", p)
	}
	if p.RegistrationID != reg.ID {
		t.Errorf("payment registration id = %q, want %q", p.RegistrationID, reg.ID)
	}
	if reg.PaymentID == nil || *reg.PaymentID != p.ID {
		t.Errorf("registration payment id = %v, want %q", reg.PaymentID, p.ID)
	}
	if got := f.regs.confirmed[reg.ID]; got != p.ID {
		t.Errorf("stored confirmation payment id = %q, want %q", got, p.ID)
	}
	if f.feed.count("payments") != 1 {
		t.Errorf("payments feed ticked %d times, want 1", f.feed.count("payments"))
	}
}

func TestRegisterPaymentFailureCancelsAndReleases(t *testing.T) {
	f := newFixture()
	f.gateway.fail = true

	reg, err := f.svc.Register(context.Background(), validInput())
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("Register error = %v, want ErrPaymentFailed", err)
	}
	if reg.Status != model.RegistrationCancelled {
		t.Errorf("returned status = %q, want cancelled", reg.Status)
	}
	if got := f.regs.statuses[reg.ID]; got != model.RegistrationCancelled {
		t.Errorf("stored status = %q, want cancelled", got)
	}
	if f.events.released != 2 {
		t.Errorf("released %d tickets, want 2", f.events.released)
	}
	if f.events.countAdded != 0 {
		t.Errorf("registration count incremented by %d after failed payment", f.events.countAdded)
	}
	if len(f.payments.created) != 0 {
		t.Errorf("%d payment records created for a failed charge", len(f.payments.created))
	}
	if f.email.sent != 0 || f.sms.sent != 0 {
		t.Errorf("notifications sent after failed payment: %d email, %d sms", f.email.sent, f.sms.sent)
	}
	if len(f.published) != 0 {
		t.Errorf("%d queue events published after failed payment", len(f.published))
	}
}

func TestRegisterQuantityBounds(t *testing.T) {
	for _, qty := range []int{0, -1, 6, 50} {
		f := newFixture()
		in := validInput()
		in.Quantity = qty
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Errorf("quantity %d: error = %v, want ErrValidation", qty, err)
		}
		if f.events.reserved != 0 || len(f.regs.created) != 0 {
			t.Errorf("quantity %d caused writes: reserved=%d regs=%d", qty, f.events.reserved, len(f.regs.created))
		}
	}
}

func TestRegisterSoldOut(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.Quantity = 5
	f.events.event.TicketTypes[0].QuantityAvailable = 4

	if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrSoldOut) {
		t.Fatalf("error = %v, want ErrSoldOut", err)
	}
	if f.events.reserved != 0 {
		t.Errorf("reserved %d tickets on a sold-out order", f.events.reserved)
	}
}

func TestRegisterRacingReservationLosesCleanly(t *testing.T) {
	// The precheck passes but the guarded decrement reports sold out, as
	// happens when a concurrent order takes the last tickets.
	f := newFixture()
	f.events.reserveErr = repository.ErrSoldOut

	if _, err := f.svc.Register(context.Background(), validInput()); !errors.Is(err, ErrSoldOut) {
		t.Fatalf("error = %v, want ErrSoldOut", err)
	}
	if len(f.regs.created) != 0 {
		t.Errorf("registration created despite losing the reservation race")
	}
}

func TestRegisterPreconditions(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture()
		in := validInput()
		in.UserID = 0
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})
	t.Run("missing attendee", func(t *testing.T) {
		f := newFixture()
		in := validInput()
		in.Attendee.Email = ""
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})
	t.Run("unknown event", func(t *testing.T) {
		f := newFixture()
		in := validInput()
		in.EventID = "no-such-event"
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})
	t.Run("unpublished event", func(t *testing.T) {
		f := newFixture()
		f.events.event.IsPublished = false
		if _, err := f.svc.Register(context.Background(), validInput()); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})
	t.Run("foreign ticket type", func(t *testing.T) {
		f := newFixture()
		in := validInput()
		in.TicketTypeID = "not-mine"
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})
	t.Run("inactive ticket type", func(t *testing.T) {
		f := newFixture()
		in := validInput()
		in.TicketTypeID = "vip"
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrTicketInactive) {
			t.Fatalf("error = %v, want ErrTicketInactive", err)
		}
	})
}

func TestRegisterToleratesNotificationFailure(t *testing.T) {
	f := newFixture()
	f.email.err = errors.New("smtp relay down")

	reg, err := f.svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if reg.Status != model.RegistrationConfirmed {
		t.Errorf("status = %q, want confirmed despite email failure", reg.Status)
	}
	if len(f.published) != 1 {
		t.Errorf("%d queue events published, want 1", len(f.published))
	}
}

func TestRegisterSkipsSMSWithoutPhone(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.Attendee.PhoneNumber = ""

	if _, err := f.svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if f.sms.sent != 0 {
		t.Errorf("sms sent %d times without a phone number", f.sms.sent)
	}
	if f.email.sent != 1 {
		t.Errorf("email sent %d times, want 1", f.email.sent)
	}
}

func TestRegisterReleasesOnCreateFailure(t *testing.T) {
	f := newFixture()
	f.regs.createErr = errors.New("db gone")

	if _, err := f.svc.Register(context.Background(), validInput()); err == nil {
		t.Fatal("Register returned nil error on store failure")
	}
	if f.events.released != 2 {
		t.Errorf("released %d tickets after create failure, want 2", f.events.released)
	}
}

func TestListForUserRequiresAuth(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.ListForUser(context.Background(), 0); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestGetForUserIncludesPayment(t *testing.T) {
	f := newFixture()
	reg, err := f.svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	got, payment, err := f.svc.GetForUser(context.Background(), 7, reg.ID)
	if err != nil {
		t.Fatalf("GetForUser error: %v", err)
	}
	if got.ID != reg.ID {
		t.Errorf("registration id = %q, want %q", got.ID, reg.ID)
	}
	if payment == nil {
		t.Fatal("paid registration returned without its payment record")
	}
	if payment.RegistrationID != reg.ID || payment.Amount != 300 {
		t.Errorf("payment = %+v", payment)
	}
}

func TestGetForUserFreeTicketHasNoPayment(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.TicketTypeID = "free"
	reg, err := f.svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	got, payment, err := f.svc.GetForUser(context.Background(), 7, reg.ID)
	if err != nil {
		t.Fatalf("GetForUser error: %v", err)
	}
	if got.Status != model.RegistrationConfirmed {
		t.Errorf("status = %q, want confirmed", got.Status)
	}
	if payment != nil {
		t.Errorf("free registration returned payment %+v", payment)
	}
}

func TestGetForUserHidesForeignRegistrations(t *testing.T) {
	f := newFixture()
	reg, err := f.svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, _, err := f.svc.GetForUser(context.Background(), 8, reg.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound for another user's registration", err)
	}
	if _, _, err := f.svc.GetForUser(context.Background(), 0, reg.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}
