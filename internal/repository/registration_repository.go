package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kagisomabe/luma-events/internal/model"
)

// RegistrationRepo provides access to the 'registrations' table.
// Attendee info is stored as a JSON column because attendees have no
// identity outside their registration.
type RegistrationRepo struct{ DB *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{DB: db} }

const registrationColumns = "id,event_id,user_id,ticket_type_id,quantity,total_amount,status,payment_id,attendee_info,created_at,checked_in_at"

// Create inserts a registration. A UUID is assigned when the id is
// empty.
func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	attendees, err := json.Marshal(reg.AttendeeInfo)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO registrations
		 (id,event_id,user_id,ticket_type_id,quantity,total_amount,status,payment_id,attendee_info,created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		reg.ID, reg.EventID, reg.UserID, reg.TicketTypeID, reg.Quantity, reg.TotalAmount,
		reg.Status, reg.PaymentID, attendees, reg.CreatedAt)
	return err
}

// SetStatus moves a registration to the given status.
func (r *RegistrationRepo) SetStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE registrations SET status=? WHERE id=?", status, id)
	return err
}

// Confirm marks a registration confirmed and links the payment record.
func (r *RegistrationRepo) Confirm(ctx context.Context, id, paymentID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE registrations SET status=?, payment_id=? WHERE id=?",
		model.RegistrationConfirmed, paymentID, id)
	return err
}

// CheckIn marks a registration checked in with the current timestamp.
// Only confirmed registrations can be checked in; anything else is
// reported as ErrNotFound.
func (r *RegistrationRepo) CheckIn(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE registrations SET status=?, checked_in_at=NOW() WHERE id=? AND status=?",
		model.RegistrationCheckedIn, id, model.RegistrationConfirmed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a registration by id.
func (r *RegistrationRepo) GetByID(ctx context.Context, id string) (model.Registration, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE id=? LIMIT 1", id)
	return scanRegistration(row)
}

// ListByUser returns a user's registrations, newest first.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Registration, error) {
	return r.list(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE user_id=? ORDER BY created_at DESC", userID)
}

// RegistrationDetail is a registration joined with its event title and
// user identity for the backoffice listing.
type RegistrationDetail struct {
	model.Registration
	EventTitle      string
	UserEmail       string
	UserDisplayName string
	TicketName      string
}

// ListDetailed returns registrations joined with event, user and ticket
// names, newest first, optionally limited to one event.
func (r *RegistrationRepo) ListDetailed(ctx context.Context, eventID string) ([]RegistrationDetail, error) {
	q := `SELECT r.id,r.event_id,r.user_id,r.ticket_type_id,r.quantity,r.total_amount,r.status,
	             r.payment_id,r.attendee_info,r.created_at,r.checked_in_at,
	             e.title,u.email,u.display_name,t.name
	      FROM registrations r
	      JOIN events e ON e.id = r.event_id
	      JOIN users u ON u.id = r.user_id
	      JOIN ticket_types t ON t.event_id = r.event_id AND t.id = r.ticket_type_id`
	var args []any
	if eventID != "" {
		q += " WHERE r.event_id=?"
		args = append(args, eventID)
	}
	q += " ORDER BY r.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegistrationDetail
	for rows.Next() {
		var (
			d         RegistrationDetail
			paymentID sql.NullString
			attendees []byte
			checkedIn sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.EventID, &d.UserID, &d.TicketTypeID, &d.Quantity,
			&d.TotalAmount, &d.Status, &paymentID, &attendees, &d.CreatedAt, &checkedIn,
			&d.EventTitle, &d.UserEmail, &d.UserDisplayName, &d.TicketName); err != nil {
			return nil, err
		}
		if paymentID.Valid {
			d.PaymentID = &paymentID.String
		}
		if checkedIn.Valid {
			t := checkedIn.Time
			d.CheckedInAt = &t
		}
		if len(attendees) > 0 {
			if err := json.Unmarshal(attendees, &d.AttendeeInfo); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Count returns the total number of registrations.
func (r *RegistrationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrations").Scan(&n)
	return n, err
}

// CountByDay returns confirmed-registration counts per day for the last
// n days, oldest first. Dates are formatted YYYY-MM-DD.
func (r *RegistrationRepo) CountByDay(ctx context.Context, n int) ([]DayCount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE(created_at) d, COUNT(*) FROM registrations
		 WHERE status IN (?,?) AND created_at >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		 GROUP BY d ORDER BY d ASC`,
		model.RegistrationConfirmed, model.RegistrationCheckedIn, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var dc DayCount
		var d time.Time
		if err := rows.Scan(&d, &dc.Count); err != nil {
			return nil, err
		}
		dc.Date = d.Format("2006-01-02")
		out = append(out, dc)
	}
	return out, rows.Err()
}

// DayCount is a per-day aggregate used by the analytics summary.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func (r *RegistrationRepo) list(ctx context.Context, q string, args ...any) ([]model.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func scanRegistration(row scannable) (model.Registration, error) {
	var (
		reg       model.Registration
		paymentID sql.NullString
		attendees []byte
		checkedIn sql.NullTime
	)
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.TicketTypeID, &reg.Quantity,
		&reg.TotalAmount, &reg.Status, &paymentID, &attendees, &reg.CreatedAt, &checkedIn)
	if err == sql.ErrNoRows {
		return model.Registration{}, ErrNotFound
	}
	if err != nil {
		return model.Registration{}, err
	}
	if paymentID.Valid {
		reg.PaymentID = &paymentID.String
	}
	if checkedIn.Valid {
		t := checkedIn.Time
		reg.CheckedInAt = &t
	}
	if len(attendees) > 0 {
		if err := json.Unmarshal(attendees, &reg.AttendeeInfo); err != nil {
			return model.Registration{}, err
		}
	}
	return reg, nil
}
