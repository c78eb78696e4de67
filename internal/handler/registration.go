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

// RegistrationHandler exposes the registration workflow to the public
// app: registering for an event and listing the caller's registrations.
type RegistrationHandler struct {
	regs *service.RegistrationService
}

func NewRegistrationHandler(regs *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{regs: regs}
}

type registrationReq struct {
	TicketTypeID string `json:"ticketTypeId"`
	Quantity     int    `json:"quantity"`
	Attendee     struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phoneNumber"`
	} `json:"attendee"`
}

// Register runs the registration workflow for the authenticated user
// against the event in the path. The service owns all the rules; this
// handler only translates its sentinel errors into HTTP status codes.
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req registrationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	// Payment simulation plus notification fan-out can take a while.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	reg, err := h.regs.Register(ctx, service.RegisterInput{
		UserID:       middleware.UserID(c),
		EventID:      c.Param("id"),
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
		Attendee: model.AttendeeInfo{
			Name:        req.Attendee.Name,
			Email:       req.Attendee.Email,
			PhoneNumber: req.Attendee.PhoneNumber,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, service.ErrSoldOut):
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough tickets available"})
		case errors.Is(err, service.ErrTicketInactive):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket type is not on sale"})
		case errors.Is(err, service.ErrPaymentFailed):
			return c.JSON(http.StatusPaymentRequired, echo.Map{
				"error":        "payment failed",
				"registration": registrationResponse(reg),
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}
	}
	return c.JSON(http.StatusCreated, registrationResponse(reg))
}

// Get returns one of the caller's registrations, with its payment
// record when the registration was paid.
func (h *RegistrationHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reg, payment, err := h.regs.GetForUser(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	out := registrationResponse(reg)
	if payment != nil {
		out["payment"] = paymentResponse(*payment)
	}
	return c.JSON(http.StatusOK, out)
}

// Mine lists the authenticated user's registrations, newest first.
func (h *RegistrationHandler) Mine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	regs, err := h.regs.ListForUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": registrationListResponse(regs)})
}
