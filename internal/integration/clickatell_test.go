package integration

import (
	"context"
	"strings"
	"testing"
)

func TestSendSMSAcceptsSouthAfricanMobiles(t *testing.T) {
	m := NewMockClickatell(0)
	for _, num := range []string{
		"+27821234567",
		"+27612345678",
		"+27731234567",
		"0821234567",
		"0612345678",
		"0791234567",
	} {
		res, err := m.SendSMS(context.Background(), num, "hello")
		if err != nil {
			t.Fatalf("SendSMS(%q) error: %v", num, err)
		}
		if !res.Success {
			t.Errorf("SendSMS(%q) rejected, want accepted", num)
		}
		if res.Status != "delivered" {
			t.Errorf("SendSMS(%q) status = %q, want delivered", num, res.Status)
		}
		if !strings.HasPrefix(res.MessageID, "CLK_") {
			t.Errorf("SendSMS(%q) message id = %q, want CLK_ prefix", num, res.MessageID)
		}
		if res.Cost != 0.15 {
			t.Errorf("SendSMS(%q) cost = %v, want 0.15", num, res.Cost)
		}
	}
}

func TestSendSMSRejectsInvalidNumbers(t *testing.T) {
	m := NewMockClickatell(0)
	for _, num := range []string{
		"",
		"not-a-number",
		"0512345678",   // landline range
		"+27912345678", // 9 is not a mobile prefix
		"082123456",    // too short
		"08212345678",  // too long
		"27821234567",  // missing + on country code
		"+27 82 123 4567",
	} {
		res, err := m.SendSMS(context.Background(), num, "hello")
		if err != nil {
			t.Fatalf("SendSMS(%q) error: %v", num, err)
		}
		if res.Success {
			t.Errorf("SendSMS(%q) accepted, want rejected", num)
		}
		if res.Status != "invalid_number" {
			t.Errorf("SendSMS(%q) status = %q, want invalid_number", num, res.Status)
		}
		if res.MessageID != "" {
			t.Errorf("SendSMS(%q) assigned message id %q to a rejected send", num, res.MessageID)
		}
	}
}

func TestGetDeliveryStatusReturnsKnownState(t *testing.T) {
	m := NewMockClickatell(0)
	known := map[string]bool{"delivered": true, "pending": true, "failed": true}
	for i := 0; i < 50; i++ {
		st, err := m.GetDeliveryStatus(context.Background(), "CLK_123_abcdefghi")
		if err != nil {
			t.Fatalf("GetDeliveryStatus error: %v", err)
		}
		if !known[st.Status] {
			t.Fatalf("GetDeliveryStatus status = %q, want one of delivered/pending/failed", st.Status)
		}
		if st.Timestamp.IsZero() {
			t.Fatal("GetDeliveryStatus returned zero timestamp")
		}
	}
}
