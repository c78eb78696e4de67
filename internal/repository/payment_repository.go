package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/kagisomabe/luma-events/internal/model"
)

// PaymentRepo provides access to the 'payments' table.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = "id,registration_id,user_id,amount,currency,provider,status,provider_transaction_id,created_at,completed_at"

// Create inserts a payment. A UUID is assigned when the id is empty.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO payments
		 (id,registration_id,user_id,amount,currency,provider,status,provider_transaction_id,created_at,completed_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.RegistrationID, p.UserID, p.Amount, p.Currency, p.Provider, p.Status,
		p.ProviderTransactionID, p.CreatedAt, p.CompletedAt)
	return err
}

// GetByRegistration fetches the payment linked to a registration.
func (r *PaymentRepo) GetByRegistration(ctx context.Context, registrationID string) (model.Payment, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE registration_id=? LIMIT 1", registrationID)
	return scanPayment(row)
}

// ListAll returns every payment, newest first. Used by the backoffice.
func (r *PaymentRepo) ListAll(ctx context.Context) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumCompleted returns the total revenue across completed payments.
func (r *PaymentRepo) SumCompleted(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM payments WHERE status=?", model.PaymentCompleted).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func scanPayment(row scannable) (model.Payment, error) {
	var (
		p           model.Payment
		completedAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.RegistrationID, &p.UserID, &p.Amount, &p.Currency, &p.Provider,
		&p.Status, &p.ProviderTransactionID, &p.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return model.Payment{}, ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	return p, nil
}
