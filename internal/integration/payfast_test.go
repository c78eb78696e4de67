package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kagisomabe/luma-events/internal/model"
)

func TestProcessPaymentOutcomeShape(t *testing.T) {
	m := NewMockPayFast(0)
	for i := 0; i < 200; i++ {
		res, err := m.ProcessPayment(context.Background(), 250, "order-1", "thabo@example.com", "Thabo")
		if err != nil {
			t.Fatalf("ProcessPayment error: %v", err)
		}
		if !strings.HasPrefix(res.TransactionID, "PF_") {
			t.Fatalf("transaction id = %q, want PF_ prefix", res.TransactionID)
		}
		if !strings.HasPrefix(res.Reference, "REF") {
			t.Fatalf("reference = %q, want REF prefix", res.Reference)
		}
		switch res.Status {
		case model.PaymentCompleted:
			if res.PaymentURL == "" {
				t.Fatal("completed payment missing payment URL")
			}
		case model.PaymentFailed:
			if res.PaymentURL != "" {
				t.Fatalf("failed payment carries payment URL %q", res.PaymentURL)
			}
		default:
			t.Fatalf("status = %q, want completed or failed", res.Status)
		}
	}
}

func TestProcessPaymentSuccessRate(t *testing.T) {
	m := NewMockPayFast(0)
	const n = 2000
	completed := 0
	for i := 0; i < n; i++ {
		res, err := m.ProcessPayment(context.Background(), 100, "order-rate", "a@b.co", "A")
		if err != nil {
			t.Fatalf("ProcessPayment error: %v", err)
		}
		if res.Status == model.PaymentCompleted {
			completed++
		}
	}
	rate := float64(completed) / n
	if rate < 0.86 || rate > 0.94 {
		t.Fatalf("success rate = %.3f over %d attempts, want about 0.9", rate, n)
	}
}

func TestVerifyPayment(t *testing.T) {
	m := NewMockPayFast(0)
	for i := 0; i < 50; i++ {
		res, err := m.VerifyPayment(context.Background(), "PF_123_abcdefghi")
		if err != nil {
			t.Fatalf("VerifyPayment error: %v", err)
		}
		if !res.Verified {
			t.Fatal("VerifyPayment reported unverified")
		}
		if res.Amount < 100 || res.Amount >= 1100 {
			t.Fatalf("VerifyPayment amount = %v, want in [100,1100)", res.Amount)
		}
	}
}

func TestSimulateHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMockPayFast(time.Hour)
	if _, err := m.ProcessPayment(ctx, 100, "order-ctx", "a@b.co", "A"); err == nil {
		t.Fatal("ProcessPayment with cancelled context returned nil error")
	}
}
