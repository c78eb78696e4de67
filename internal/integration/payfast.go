package integration

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/kagisomabe/luma-events/internal/model"
)

// MockPayFast simulates the PayFast payment gateway. Payments succeed
// with probability 0.9. A transaction id and reference are generated on
// every attempt, success or not. The simulator keeps no ledger:
// verification always reports verified with a synthetic amount.
type MockPayFast struct {
	delay time.Duration
}

// NewMockPayFast returns a simulator that delays each call by d.
func NewMockPayFast(d time.Duration) *MockPayFast {
	return &MockPayFast{delay: d}
}

// ProcessPayment simulates charging amount rand against orderID.
func (m *MockPayFast) ProcessPayment(ctx context.Context, amount float64, orderID, customerEmail, customerName string) (PaymentResult, error) {
	log.Printf("payfast-mock: processing payment R%.2f for order %s", amount, orderID)
	if err := simulate(ctx, m.delay); err != nil {
		return PaymentResult{}, err
	}

	// 90% success rate
	success := rand.Float64() > 0.1
	transactionID := fmt.Sprintf("PF_%d_%s", time.Now().UnixMilli(), randToken(9))
	reference := fmt.Sprintf("REF%d", time.Now().UnixMilli())

	if !success {
		return PaymentResult{
			Status:        model.PaymentFailed,
			TransactionID: transactionID,
			Reference:     reference,
		}, nil
	}
	return PaymentResult{
		Status:        model.PaymentCompleted,
		TransactionID: transactionID,
		Reference:     reference,
		PaymentURL:    fmt.Sprintf("https://mock-payfast.co.za/payment/%s", transactionID),
	}, nil
}

// VerifyPayment always reports verified with a synthetic amount in
// [100,1100). The simulator does not look up prior transactions.
func (m *MockPayFast) VerifyPayment(ctx context.Context, transactionID string) (VerifyResult, error) {
	log.Printf("payfast-mock: verifying payment %s", transactionID)
	if err := simulate(ctx, m.delay); err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Verified: true,
		Amount:   float64(rand.Intn(1000) + 100),
	}, nil
}
