package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kagisomabe/luma-events/internal/repository"
	"github.com/kagisomabe/luma-events/internal/service"
)

// EventHandler serves the public discovery surface: event listings,
// event detail and the weather and load-shedding information shown on
// event pages.
type EventHandler struct {
	events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List returns published events, optionally filtered by ?category= and
// ?city=. On data-store trouble the service degrades to a cached or
// empty listing, so this endpoint never fails the page.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.events.ListPublished(ctx, c.QueryParam("category"), c.QueryParam("city"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": eventListResponse(events)})
}

// Featured returns the curated featured events for the landing page.
func (h *EventHandler) Featured(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.events.ListFeatured(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": eventListResponse(events)})
}

// Get returns one published event by slug.
func (h *EventHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.events.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ev.IsPublished {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	return c.JSON(http.StatusOK, eventResponse(ev))
}

// Weather refreshes and returns the weather snapshot for an event's
// venue city.
func (h *EventHandler) Weather(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	w, err := h.events.RefreshWeather(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "weather lookup failed"})
	}
	return c.JSON(http.StatusOK, w)
}

// LoadShedding refreshes and returns the load-shedding status for an
// event's venue city.
func (h *EventHandler) LoadShedding(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ls, err := h.events.RefreshLoadShedding(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load-shedding lookup failed"})
	}
	return c.JSON(http.StatusOK, ls)
}

// Forecast returns a 5-day forecast for a city.
func (h *EventHandler) Forecast(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	days, err := h.events.Forecast(ctx, c.Param("city"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "forecast lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"city": c.Param("city"), "forecast": days})
}

// AreaInfo returns load-shedding area metadata for an area name.
func (h *EventHandler) AreaInfo(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	info, err := h.events.AreaInfo(ctx, c.Param("area"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "area lookup failed"})
	}
	return c.JSON(http.StatusOK, info)
}
