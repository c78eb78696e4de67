package integration

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"
)

// emailPattern is the basic address check applied before any delivery
// attempt is simulated.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MockSendGrid simulates the SendGrid email API.
type MockSendGrid struct {
	delay time.Duration
}

// NewMockSendGrid returns a simulator that delays each call by d.
func NewMockSendGrid(d time.Duration) *MockSendGrid {
	return &MockSendGrid{delay: d}
}

// SendEmail validates the recipient address and simulates delivery.
func (m *MockSendGrid) SendEmail(ctx context.Context, to, subject, htmlBody string) (EmailResult, error) {
	log.Printf("sendgrid-mock: sending email to %s, subject: %s", to, subject)

	if !emailPattern.MatchString(to) {
		return EmailResult{Success: false, Status: "invalid_email"}, nil
	}
	if err := simulate(ctx, m.delay); err != nil {
		return EmailResult{}, err
	}
	return EmailResult{
		Success:   true,
		MessageID: fmt.Sprintf("SG_%d_%s", time.Now().UnixMilli(), randToken(9)),
		Status:    "delivered",
	}, nil
}

// SendTemplateEmail always succeeds; no rendering is performed. The
// payload is logged so template wiring can be inspected in development.
func (m *MockSendGrid) SendTemplateEmail(ctx context.Context, to, templateID string, data map[string]string) (EmailResult, error) {
	log.Printf("sendgrid-mock: sending template email %s to %s with %d fields", templateID, to, len(data))
	if err := simulate(ctx, m.delay); err != nil {
		return EmailResult{}, err
	}
	return EmailResult{
		Success:   true,
		MessageID: fmt.Sprintf("SG_TPL_%d", time.Now().UnixMilli()),
		Status:    "delivered",
	}, nil
}
