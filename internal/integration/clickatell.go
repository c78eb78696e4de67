package integration

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"time"
)

// saMobile matches South African mobile numbers: +27 or 0, then a digit
// in 6-8, then eight more digits.
var saMobile = regexp.MustCompile(`^(\+27|0)[6-8][0-9]{8}$`)

// Per-message cost in rand charged by the simulated gateway.
const smsCostZAR = 0.15

// MockClickatell simulates the Clickatell SMS gateway. Numbers failing
// the South African mobile pattern are rejected without simulating a
// delivery attempt.
type MockClickatell struct {
	delay time.Duration
}

// NewMockClickatell returns a simulator that delays each call by d.
func NewMockClickatell(d time.Duration) *MockClickatell {
	return &MockClickatell{delay: d}
}

// SendSMS validates the destination number and simulates delivery.
func (m *MockClickatell) SendSMS(ctx context.Context, phoneNumber, message string) (SMSResult, error) {
	preview := message
	if len(preview) > 50 {
		preview = preview[:50]
	}
	log.Printf("clickatell-mock: sending SMS to %s: %s...", phoneNumber, preview)

	if !saMobile.MatchString(phoneNumber) {
		return SMSResult{Success: false, Status: "invalid_number"}, nil
	}
	if err := simulate(ctx, m.delay); err != nil {
		return SMSResult{}, err
	}
	return SMSResult{
		Success:   true,
		MessageID: fmt.Sprintf("CLK_%d_%s", time.Now().UnixMilli(), randToken(9)),
		Cost:      smsCostZAR,
		Status:    "delivered",
	}, nil
}

// GetDeliveryStatus reports a random delivery state for messageID. The
// simulator keeps no outbox, so the state is independent of any prior
// SendSMS call.
func (m *MockClickatell) GetDeliveryStatus(ctx context.Context, messageID string) (DeliveryStatus, error) {
	log.Printf("clickatell-mock: checking delivery status for %s", messageID)
	if err := simulate(ctx, m.delay); err != nil {
		return DeliveryStatus{}, err
	}
	statuses := []string{"delivered", "pending", "failed"}
	return DeliveryStatus{
		Status:    statuses[rand.Intn(len(statuses))],
		Timestamp: time.Now(),
	}, nil
}
