package model

import "time"

// Payment statuses mirror the registration outcome: a confirmed
// registration pairs with a completed payment, a cancelled one with a
// failed payment.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentCancelled  = "cancelled"
	PaymentRefunded   = "refunded"
)

// Known payment providers.
const (
	ProviderPayFast  = "payfast"
	ProviderPaystack = "paystack"
	ProviderManual   = "manual"
)

// Payment links a registration and user to a provider transaction.
type Payment struct {
	ID                    string     // payments.id (UUID)
	RegistrationID        string     // payments.registration_id
	UserID                uint64     // payments.user_id
	Amount                float64    // payments.amount (ZAR)
	Currency              string     // payments.currency
	Provider              string     // payments.provider
	Status                string     // payments.status
	ProviderTransactionID string     // payments.provider_transaction_id
	CreatedAt             time.Time  // payments.created_at
	CompletedAt           *time.Time // payments.completed_at (nullable)
}
