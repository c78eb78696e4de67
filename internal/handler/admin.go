package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kagisomabe/luma-events/internal/middleware"
	"github.com/kagisomabe/luma-events/internal/model"
	"github.com/kagisomabe/luma-events/internal/repository"
	"github.com/kagisomabe/luma-events/internal/service"
)

// AdminHandler implements the backoffice: event management, attendee
// check-in, listings of registrations, payments and users, and the
// analytics summary. All routes in this group require the ADMIN role.
type AdminHandler struct {
	events    *service.EventService
	eventRepo *repository.EventRepo
	regs      *repository.RegistrationRepo
	payments  *repository.PaymentRepo
	users     *repository.UserRepo
	feed      service.ChangeFeed // optional
}

func NewAdminHandler(events *service.EventService, eventRepo *repository.EventRepo,
	regs *repository.RegistrationRepo, payments *repository.PaymentRepo,
	users *repository.UserRepo, feed service.ChangeFeed) *AdminHandler {
	return &AdminHandler{events: events, eventRepo: eventRepo, regs: regs, payments: payments, users: users, feed: feed}
}

// eventReq is the backoffice payload for creating or updating an event.
type eventReq struct {
	Slug             string      `json:"slug"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	ShortDescription string      `json:"shortDescription"`
	CoverImage       string      `json:"coverImage"`
	HostName         string      `json:"hostName"`
	Category         string      `json:"category"`
	StartDate        time.Time   `json:"startDate"`
	EndDate          time.Time   `json:"endDate"`
	Timezone         string      `json:"timezone"`
	Venue            model.Venue `json:"venue"`
	Capacity         int         `json:"capacity"`
	Tags             []string    `json:"tags"`
	TicketTypes      []struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Quantity    int     `json:"quantity"`
		IsActive    bool    `json:"isActive"`
	} `json:"ticketTypes"`
}

func (req eventReq) toModel(hostID uint64) model.Event {
	ev := model.Event{
		Slug:             req.Slug,
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		CoverImage:       req.CoverImage,
		HostID:           hostID,
		HostName:         req.HostName,
		Category:         req.Category,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Timezone:         req.Timezone,
		Venue:            req.Venue,
		Capacity:         req.Capacity,
		Tags:             req.Tags,
	}
	for _, tt := range req.TicketTypes {
		ev.TicketTypes = append(ev.TicketTypes, model.TicketType{
			ID:          tt.ID,
			Name:        tt.Name,
			Description: tt.Description,
			Price:       tt.Price,
			Quantity:    tt.Quantity,
			IsActive:    tt.IsActive,
		})
	}
	return ev
}

// CreateEvent creates a new, unpublished event.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.events.Create(ctx, req.toModel(middleware.UserID(c)))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, eventResponse(ev))
}

// UpdateEvent edits an existing event's descriptive fields and ticket
// types. Remaining ticket availability is preserved by the repository.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := req.toModel(middleware.UserID(c))
	ev.ID = c.Param("id")
	updated, err := h.events.Update(ctx, ev)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, eventResponse(updated))
}

// SetPublished publishes or unpublishes an event.
func (h *AdminHandler) SetPublished(c echo.Context) error {
	return h.setFlag(c, h.events.SetPublished)
}

// SetFeatured flags or unflags an event as featured.
func (h *AdminHandler) SetFeatured(c echo.Context) error {
	return h.setFlag(c, h.events.SetFeatured)
}

func (h *AdminHandler) setFlag(c echo.Context, apply func(context.Context, string, bool) error) error {
	var req struct {
		Value bool `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := apply(ctx, c.Param("id"), req.Value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// ListEvents returns every event, published or not.
func (h *AdminHandler) ListEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.events.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": eventListResponse(events)})
}

// ListRegistrations returns registrations joined with event, user and
// ticket names, either for one event (?event=) or across the platform.
func (h *AdminHandler) ListRegistrations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	regs, err := h.regs.ListDetailed(ctx, c.QueryParam("event"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(regs))
	for _, d := range regs {
		out = append(out, registrationDetailResponse(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": out})
}

// CheckIn marks a confirmed registration as checked in at the door.
func (h *AdminHandler) CheckIn(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.regs.CheckIn(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found or not confirmed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
	if h.feed != nil {
		h.feed.Notify(ctx, "registrations")
	}

	reg, err := h.regs.GetByID(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, registrationResponse(reg))
}

// ListPayments returns all payment records, newest first.
func (h *AdminHandler) ListPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, err := h.payments.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}

// ListUsers returns all user accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Analytics returns the dashboard summary: totals, revenue, events per
// category and registrations per day for the last 30 days.
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	totalEvents, err := h.eventRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalUsers, err := h.users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalRegs, err := h.regs.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	revenue, err := h.payments.SumCompleted(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	byCategory, err := h.eventRepo.CountByCategory(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	byDay, err := h.regs.CountByDay(ctx, 30)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalEvents":        totalEvents,
		"totalUsers":         totalUsers,
		"totalRegistrations": totalRegs,
		"totalRevenue":       revenue,
		"eventsByCategory":   byCategory,
		"registrationsByDay": byDay,
	})
}
