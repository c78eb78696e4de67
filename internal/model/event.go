package model

import "time"

// Event is the central catalogue record. The identifier is a
// caller-chosen slug-like string rather than an auto increment so that
// public URLs stay stable. Ticket types are owned by the event: they
// have no lifecycle of their own and are loaded and saved together with
// their parent row.
//
// RegistrationCount is a monotonically increasing counter of confirmed
// registration quantities. Weather and LoadShedding are point-in-time
// snapshots cached on the event; they carry their own UpdatedAt and are
// not historized.
type Event struct {
	ID                string            // events.id (slug-like, caller chosen)
	Slug              string            // events.slug
	Title             string            // events.title
	Description       string            // events.description
	ShortDescription  string            // events.short_description
	CoverImage        string            // events.cover_image
	HostID            uint64            // events.host_id
	HostName          string            // events.host_name
	Category          string            // events.category
	StartDate         time.Time         // events.start_date
	EndDate           time.Time         // events.end_date
	Timezone          string            // events.timezone (SAST assumed throughout)
	Venue             Venue             // embedded venue columns
	Capacity          int               // events.capacity
	TicketTypes       []TicketType      // ticket_types rows for this event
	Tags              []string          // events.tags (JSON column)
	IsPublished       bool              // events.is_published
	IsFeatured        bool              // events.is_featured
	RegistrationCount int               // events.registration_count
	Weather           *WeatherInfo      // events.weather (JSON column, nullable)
	LoadShedding      *LoadSheddingInfo // events.load_shedding (JSON column, nullable)
	CreatedAt         time.Time         // events.created_at
	UpdatedAt         time.Time         // events.updated_at
}

// Venue describes where an event takes place. It is embedded in the
// events table rather than normalized because venues are never shared
// between events in this system.
type Venue struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	PostalCode string  `json:"postalCode"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// TicketType is a priced inventory pool within an event (e.g. "Early
// Bird", "VIP"). Price is in rand; zero means free. QuantityAvailable
// is decremented on confirmed sale and never goes negative; the
// decrement is guarded by an availability check in the repository.
type TicketType struct {
	ID                string  // ticket_types.id
	EventID           string  // ticket_types.event_id
	Name              string  // ticket_types.name
	Description       string  // ticket_types.description
	Price             float64 // ticket_types.price (ZAR, 0 = free)
	Quantity          int     // ticket_types.quantity (total allocated)
	QuantityAvailable int     // ticket_types.quantity_available (remaining)
	IsActive          bool    // ticket_types.is_active
}
