package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kagisomabe/luma-events/internal/model"
)

// EventRepo provides access to the 'events' and 'ticket_types' tables.
// An event owns its ticket types: they are written and loaded together
// with the parent row. Tags and the cached weather/load-shedding
// snapshots live in JSON columns.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

const eventColumns = `id,slug,title,description,short_description,cover_image,host_id,host_name,category,
start_date,end_date,timezone,venue_name,venue_address,venue_city,venue_province,venue_postal_code,
venue_lat,venue_lng,capacity,tags,is_published,is_featured,registration_count,weather,load_shedding,
created_at,updated_at`

// Create inserts an event together with its ticket types in one
// transaction. The caller chooses the event id (slug-like string).
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	tags, err := json.Marshal(ev.Tags)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO events
		(id,slug,title,description,short_description,cover_image,host_id,host_name,category,
		 start_date,end_date,timezone,venue_name,venue_address,venue_city,venue_province,venue_postal_code,
		 venue_lat,venue_lng,capacity,tags,is_published,is_featured,registration_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,0)`,
		ev.ID, ev.Slug, ev.Title, ev.Description, ev.ShortDescription, ev.CoverImage,
		ev.HostID, ev.HostName, ev.Category, ev.StartDate, ev.EndDate, ev.Timezone,
		ev.Venue.Name, ev.Venue.Address, ev.Venue.City, ev.Venue.Province, ev.Venue.PostalCode,
		ev.Venue.Lat, ev.Venue.Lng, ev.Capacity, tags, ev.IsPublished, ev.IsFeatured)
	if err != nil {
		return err
	}
	for _, tt := range ev.TicketTypes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO ticket_types
			(id,event_id,name,description,price,quantity,quantity_available,is_active)
			VALUES (?,?,?,?,?,?,?,?)`,
			tt.ID, ev.ID, tt.Name, tt.Description, tt.Price, tt.Quantity, tt.QuantityAvailable, tt.IsActive); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites the descriptive event columns and upserts ticket
// types. quantity_available is only set when a ticket type is first
// inserted; later edits must not clobber inventory already sold, so
// only name, description, price, quantity and is_active are updated.
func (r *EventRepo) Update(ctx context.Context, ev *model.Event) error {
	tags, err := json.Marshal(ev.Tags)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE events SET
		slug=?, title=?, description=?, short_description=?, cover_image=?, category=?,
		start_date=?, end_date=?, timezone=?, venue_name=?, venue_address=?, venue_city=?,
		venue_province=?, venue_postal_code=?, venue_lat=?, venue_lng=?, capacity=?, tags=?
		WHERE id=?`,
		ev.Slug, ev.Title, ev.Description, ev.ShortDescription, ev.CoverImage, ev.Category,
		ev.StartDate, ev.EndDate, ev.Timezone, ev.Venue.Name, ev.Venue.Address, ev.Venue.City,
		ev.Venue.Province, ev.Venue.PostalCode, ev.Venue.Lat, ev.Venue.Lng, ev.Capacity, tags, ev.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from a no-op update.
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id=?", ev.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	for _, tt := range ev.TicketTypes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO ticket_types
			(id,event_id,name,description,price,quantity,quantity_available,is_active)
			VALUES (?,?,?,?,?,?,?,?)
			ON DUPLICATE KEY UPDATE name=VALUES(name), description=VALUES(description),
			price=VALUES(price), quantity=VALUES(quantity), is_active=VALUES(is_active)`,
			tt.ID, ev.ID, tt.Name, tt.Description, tt.Price, tt.Quantity, tt.QuantityAvailable, tt.IsActive); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads an event and its ticket types.
func (r *EventRepo) GetByID(ctx context.Context, id string) (model.Event, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySlug loads an event and its ticket types by slug.
func (r *EventRepo) GetBySlug(ctx context.Context, slug string) (model.Event, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *EventRepo) getOne(ctx context.Context, col, val string) (model.Event, error) {
	row := r.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM events WHERE %s=? LIMIT 1", eventColumns, col), val)
	ev, err := scanEvent(row)
	if err != nil {
		return model.Event{}, err
	}
	if err := r.loadTicketTypes(ctx, &ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ListPublished returns published events, optionally filtered by
// category and venue city, soonest first.
func (r *EventRepo) ListPublished(ctx context.Context, category, city string) ([]model.Event, error) {
	q := "SELECT " + eventColumns + " FROM events WHERE is_published=1"
	args := []any{}
	if category != "" {
		q += " AND category=?"
		args = append(args, category)
	}
	if city != "" {
		q += " AND venue_city=?"
		args = append(args, city)
	}
	q += " ORDER BY start_date ASC"
	return r.list(ctx, q, args...)
}

// ListFeatured returns published events flagged as featured.
func (r *EventRepo) ListFeatured(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx,
		"SELECT "+eventColumns+" FROM events WHERE is_published=1 AND is_featured=1 ORDER BY start_date ASC")
}

// ListAll returns every event regardless of publication state, newest
// first. Used by the backoffice.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, "SELECT "+eventColumns+" FROM events ORDER BY created_at DESC")
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		if err := r.loadTicketTypes(ctx, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// SetPublished flips the publication flag.
func (r *EventRepo) SetPublished(ctx context.Context, id string, published bool) error {
	return r.setFlag(ctx, id, "is_published", published)
}

// SetFeatured flips the featured flag.
func (r *EventRepo) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.setFlag(ctx, id, "is_featured", featured)
}

func (r *EventRepo) setFlag(ctx context.Context, id, col string, v bool) error {
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE events SET %s=? WHERE id=?", col), v, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// ReserveTickets atomically decrements the available quantity of a
// ticket type, guarded by an availability check so concurrent
// registrations can never oversell. ErrSoldOut is returned when fewer
// than qty tickets remain or the ticket type is inactive.
func (r *EventRepo) ReserveTickets(ctx context.Context, eventID, ticketTypeID string, qty int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE ticket_types SET quantity_available = quantity_available - ?
		 WHERE id=? AND event_id=? AND is_active=1 AND quantity_available >= ?`,
		qty, ticketTypeID, eventID, qty)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSoldOut
	}
	return nil
}

// ReleaseTickets returns qty tickets to the pool, compensating a
// reservation whose payment failed. The quantity ceiling prevents the
// pool from exceeding its original allocation.
func (r *EventRepo) ReleaseTickets(ctx context.Context, eventID, ticketTypeID string, qty int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE ticket_types SET quantity_available = LEAST(quantity, quantity_available + ?)
		 WHERE id=? AND event_id=?`,
		qty, ticketTypeID, eventID)
	return err
}

// IncrementRegistrationCount adds 'by' to the event's monotonically
// increasing registration counter.
func (r *EventRepo) IncrementRegistrationCount(ctx context.Context, id string, by int) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE events SET registration_count = registration_count + ? WHERE id=?", by, id)
	return err
}

// UpdateWeather caches a weather snapshot on the event.
func (r *EventRepo) UpdateWeather(ctx context.Context, id string, w *model.WeatherInfo) error {
	return r.setJSON(ctx, id, "weather", w)
}

// UpdateLoadShedding caches a load-shedding snapshot on the event.
func (r *EventRepo) UpdateLoadShedding(ctx context.Context, id string, ls *model.LoadSheddingInfo) error {
	return r.setJSON(ctx, id, "load_shedding", ls)
}

func (r *EventRepo) setJSON(ctx context.Context, id, col string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE events SET %s=? WHERE id=?", col), data, id)
	return err
}

// Count returns the total number of events.
func (r *EventRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n)
	return n, err
}

// CountByCategory returns per-category event counts, highest first.
func (r *EventRepo) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT category, COUNT(*) FROM events GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		counts[cat] = n
	}
	return counts, rows.Err()
}

func (r *EventRepo) loadTicketTypes(ctx context.Context, ev *model.Event) error {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,event_id,name,description,price,quantity,quantity_available,is_active
		 FROM ticket_types WHERE event_id=? ORDER BY price ASC`, ev.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	ev.TicketTypes = nil
	for rows.Next() {
		var tt model.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Description,
			&tt.Price, &tt.Quantity, &tt.QuantityAvailable, &tt.IsActive); err != nil {
			return err
		}
		ev.TicketTypes = append(ev.TicketTypes, tt)
	}
	return rows.Err()
}

// scannable covers *sql.Row and *sql.Rows.
type scannable interface{ Scan(dest ...any) error }

func scanEvent(row scannable) (model.Event, error) {
	var (
		ev           model.Event
		tags         []byte
		weather      sql.NullString
		loadShedding sql.NullString
	)
	err := row.Scan(&ev.ID, &ev.Slug, &ev.Title, &ev.Description, &ev.ShortDescription, &ev.CoverImage,
		&ev.HostID, &ev.HostName, &ev.Category, &ev.StartDate, &ev.EndDate, &ev.Timezone,
		&ev.Venue.Name, &ev.Venue.Address, &ev.Venue.City, &ev.Venue.Province, &ev.Venue.PostalCode,
		&ev.Venue.Lat, &ev.Venue.Lng, &ev.Capacity, &tags, &ev.IsPublished, &ev.IsFeatured,
		&ev.RegistrationCount, &weather, &loadShedding, &ev.CreatedAt, &ev.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &ev.Tags); err != nil {
			return model.Event{}, err
		}
	}
	if weather.Valid && weather.String != "" {
		var w model.WeatherInfo
		if err := json.Unmarshal([]byte(weather.String), &w); err != nil {
			return model.Event{}, err
		}
		ev.Weather = &w
	}
	if loadShedding.Valid && loadShedding.String != "" {
		var ls model.LoadSheddingInfo
		if err := json.Unmarshal([]byte(loadShedding.String), &ls); err != nil {
			return model.Event{}, err
		}
		ev.LoadShedding = &ls
	}
	return ev, nil
}
