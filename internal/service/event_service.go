package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kagisomabe/luma-events/internal/integration"
	"github.com/kagisomabe/luma-events/internal/model"
)

// publishedCacheKey holds the cached published-events listing.
const publishedCacheKey = "events:published"

// EventCatalogStore is the event persistence surface used by the
// catalogue service.
type EventCatalogStore interface {
	Create(ctx context.Context, ev *model.Event) error
	Update(ctx context.Context, ev *model.Event) error
	GetByID(ctx context.Context, id string) (model.Event, error)
	GetBySlug(ctx context.Context, slug string) (model.Event, error)
	ListPublished(ctx context.Context, category, city string) ([]model.Event, error)
	ListFeatured(ctx context.Context) ([]model.Event, error)
	ListAll(ctx context.Context) ([]model.Event, error)
	SetPublished(ctx context.Context, id string, published bool) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	UpdateWeather(ctx context.Context, id string, w *model.WeatherInfo) error
	UpdateLoadShedding(ctx context.Context, id string, ls *model.LoadSheddingInfo) error
}

// Cache is the small slice of Redis the service uses. It matches
// *redis.Client so the real client drops in directly.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// EventService owns the event catalogue: creation and editing from the
// backoffice, the public discovery listings with their cache-or-empty
// degrade path, and refreshing the cached weather and load-shedding
// snapshots via the integration providers.
type EventService struct {
	store     EventCatalogStore
	cache     Cache // nil disables caching
	cacheTTL  time.Duration
	providers *integration.Providers
	feed      ChangeFeed // optional
}

// NewEventService constructs the catalogue service. store and providers
// must be non-nil; cache and feed may be nil.
func NewEventService(store EventCatalogStore, cache Cache, cacheTTL time.Duration,
	providers *integration.Providers, feed ChangeFeed) *EventService {
	if store == nil || providers == nil {
		panic("nil dependency passed to NewEventService")
	}
	return &EventService{store: store, cache: cache, cacheTTL: cacheTTL, providers: providers, feed: feed}
}

// Create validates and persists a new event. The event id defaults to
// the slug so public URLs stay stable; ticket pools start full.
func (s *EventService) Create(ctx context.Context, ev model.Event) (model.Event, error) {
	if err := validateEvent(&ev); err != nil {
		return model.Event{}, err
	}
	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if err := s.store.Create(ctx, &ev); err != nil {
		return model.Event{}, err
	}
	s.invalidateListing(ctx)
	s.notify(ctx)
	return ev, nil
}

// Update persists edits to an existing event.
func (s *EventService) Update(ctx context.Context, ev model.Event) (model.Event, error) {
	if err := validateEvent(&ev); err != nil {
		return model.Event{}, err
	}
	ev.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, &ev); err != nil {
		return model.Event{}, err
	}
	s.invalidateListing(ctx)
	s.notify(ctx)
	return s.store.GetByID(ctx, ev.ID)
}

// SetPublished publishes or unpublishes an event.
func (s *EventService) SetPublished(ctx context.Context, id string, published bool) error {
	if err := s.store.SetPublished(ctx, id, published); err != nil {
		return err
	}
	s.invalidateListing(ctx)
	s.notify(ctx)
	return nil
}

// SetFeatured flags or unflags an event as featured.
func (s *EventService) SetFeatured(ctx context.Context, id string, featured bool) error {
	if err := s.store.SetFeatured(ctx, id, featured); err != nil {
		return err
	}
	s.invalidateListing(ctx)
	s.notify(ctx)
	return nil
}

// GetBySlug returns one event for the public detail page.
func (s *EventService) GetBySlug(ctx context.Context, slug string) (model.Event, error) {
	return s.store.GetBySlug(ctx, slug)
}

// GetByID returns one event regardless of publication state.
func (s *EventService) GetByID(ctx context.Context, id string) (model.Event, error) {
	return s.store.GetByID(ctx, id)
}

// ListAll returns every event for the backoffice.
func (s *EventService) ListAll(ctx context.Context) ([]model.Event, error) {
	return s.store.ListAll(ctx)
}

// ListPublished returns published events for discovery. When the
// database is unavailable the unfiltered listing degrades to the last
// cached copy, or to an empty list, instead of failing the page.
func (s *EventService) ListPublished(ctx context.Context, category, city string) ([]model.Event, error) {
	events, err := s.store.ListPublished(ctx, category, city)
	if err != nil {
		log.Printf("events: listing failed, serving degraded result: %v", err)
		if category == "" && city == "" {
			if cached, ok := s.cachedListing(ctx); ok {
				return cached, nil
			}
		}
		return []model.Event{}, nil
	}
	if category == "" && city == "" {
		s.storeListing(ctx, events)
	}
	return events, nil
}

// ListFeatured returns featured events, degrading to empty on error.
func (s *EventService) ListFeatured(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ListFeatured(ctx)
	if err != nil {
		log.Printf("events: featured listing failed, serving empty result: %v", err)
		return []model.Event{}, nil
	}
	return events, nil
}

// RefreshWeather fetches a fresh weather snapshot for the event's city,
// caches it on the event and returns it.
func (s *EventService) RefreshWeather(ctx context.Context, eventID string) (model.WeatherInfo, error) {
	ev, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return model.WeatherInfo{}, err
	}
	w, err := s.providers.Weather.GetWeatherByCity(ctx, ev.Venue.City)
	if err != nil {
		return model.WeatherInfo{}, err
	}
	if err := s.store.UpdateWeather(ctx, ev.ID, &w); err != nil {
		return model.WeatherInfo{}, err
	}
	s.notify(ctx)
	return w, nil
}

// RefreshLoadShedding fetches the load-shedding status for the event's
// city, caches it on the event and returns it.
func (s *EventService) RefreshLoadShedding(ctx context.Context, eventID string) (model.LoadSheddingInfo, error) {
	ev, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return model.LoadSheddingInfo{}, err
	}
	ls, err := s.providers.LoadShedding.GetStatus(ctx, ev.Venue.City)
	if err != nil {
		return model.LoadSheddingInfo{}, err
	}
	if err := s.store.UpdateLoadShedding(ctx, ev.ID, &ls); err != nil {
		return model.LoadSheddingInfo{}, err
	}
	s.notify(ctx)
	return ls, nil
}

// Forecast returns the 5-day forecast for a city.
func (s *EventService) Forecast(ctx context.Context, city string) ([]model.WeatherInfo, error) {
	return s.providers.Weather.Get5DayForecast(ctx, city)
}

// AreaInfo returns load-shedding area metadata for an area name.
func (s *EventService) AreaInfo(ctx context.Context, area string) (integration.AreaInfo, error) {
	return s.providers.LoadShedding.GetAreaInfo(ctx, area)
}

func (s *EventService) cachedListing(ctx context.Context) ([]model.Event, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, publishedCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false
	}
	return events, true
}

func (s *EventService) storeListing(ctx context.Context, events []model.Event) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, publishedCacheKey, data, s.cacheTTL).Err(); err != nil {
		log.Printf("events: caching listing failed: %v", err)
	}
}

func (s *EventService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, publishedCacheKey).Err(); err != nil {
		log.Printf("events: invalidating cached listing failed: %v", err)
	}
}

func (s *EventService) notify(ctx context.Context) {
	if s.feed != nil {
		s.feed.Notify(ctx, "events")
	}
}

// validateEvent enforces the structural invariants of an event record
// and fills derivable defaults (id from slug, full ticket pools).
func validateEvent(ev *model.Event) error {
	ev.Slug = strings.TrimSpace(strings.ToLower(ev.Slug))
	if ev.ID == "" {
		ev.ID = ev.Slug
	}
	if ev.ID == "" || ev.Title == "" {
		return fmt.Errorf("%w: slug and title are required", ErrValidation)
	}
	if ev.Venue.City == "" {
		return fmt.Errorf("%w: venue city is required", ErrValidation)
	}
	if ev.EndDate.Before(ev.StartDate) {
		return fmt.Errorf("%w: event ends before it starts", ErrValidation)
	}
	if len(ev.TicketTypes) == 0 {
		return fmt.Errorf("%w: at least one ticket type is required", ErrValidation)
	}
	for i := range ev.TicketTypes {
		tt := &ev.TicketTypes[i]
		if tt.ID == "" || tt.Name == "" {
			return fmt.Errorf("%w: ticket type id and name are required", ErrValidation)
		}
		if tt.Price < 0 {
			return fmt.Errorf("%w: ticket price cannot be negative", ErrValidation)
		}
		if tt.Quantity < 0 {
			return fmt.Errorf("%w: ticket quantity cannot be negative", ErrValidation)
		}
		if tt.QuantityAvailable == 0 && tt.Quantity > 0 {
			tt.QuantityAvailable = tt.Quantity
		}
		if tt.QuantityAvailable > tt.Quantity {
			return fmt.Errorf("%w: more tickets available than allocated", ErrValidation)
		}
		tt.EventID = ev.ID
	}
	if ev.Timezone == "" {
		ev.Timezone = "Africa/Johannesburg"
	}
	return nil
}
