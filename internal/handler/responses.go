package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kagisomabe/luma-events/internal/model"
	"github.com/kagisomabe/luma-events/internal/repository"
)

// The model structs carry no JSON tags; the response shapes for the
// public and backoffice APIs are defined here instead, so the wire
// format is decoupled from the storage layout.

func eventResponse(ev model.Event) echo.Map {
	tickets := make([]echo.Map, 0, len(ev.TicketTypes))
	for _, tt := range ev.TicketTypes {
		tickets = append(tickets, ticketTypeResponse(tt))
	}
	return echo.Map{
		"id":                ev.ID,
		"slug":              ev.Slug,
		"title":             ev.Title,
		"description":       ev.Description,
		"shortDescription":  ev.ShortDescription,
		"coverImage":        ev.CoverImage,
		"hostId":            ev.HostID,
		"hostName":          ev.HostName,
		"category":          ev.Category,
		"startDate":         ev.StartDate,
		"endDate":           ev.EndDate,
		"timezone":          ev.Timezone,
		"venue":             ev.Venue,
		"capacity":          ev.Capacity,
		"ticketTypes":       tickets,
		"tags":              ev.Tags,
		"isPublished":       ev.IsPublished,
		"isFeatured":        ev.IsFeatured,
		"registrationCount": ev.RegistrationCount,
		"weather":           ev.Weather,
		"loadShedding":      ev.LoadShedding,
		"createdAt":         ev.CreatedAt,
		"updatedAt":         ev.UpdatedAt,
	}
}

func eventListResponse(events []model.Event) []echo.Map {
	out := make([]echo.Map, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse(ev))
	}
	return out
}

func ticketTypeResponse(tt model.TicketType) echo.Map {
	return echo.Map{
		"id":                tt.ID,
		"eventId":           tt.EventID,
		"name":              tt.Name,
		"description":       tt.Description,
		"price":             tt.Price,
		"quantity":          tt.Quantity,
		"quantityAvailable": tt.QuantityAvailable,
		"isActive":          tt.IsActive,
	}
}

func registrationResponse(reg model.Registration) echo.Map {
	return echo.Map{
		"id":           reg.ID,
		"eventId":      reg.EventID,
		"userId":       reg.UserID,
		"ticketTypeId": reg.TicketTypeID,
		"quantity":     reg.Quantity,
		"totalAmount":  reg.TotalAmount,
		"status":       reg.Status,
		"paymentId":    reg.PaymentID,
		"attendeeInfo": reg.AttendeeInfo,
		"createdAt":    reg.CreatedAt,
		"checkedInAt":  reg.CheckedInAt,
	}
}

func registrationListResponse(regs []model.Registration) []echo.Map {
	out := make([]echo.Map, 0, len(regs))
	for _, reg := range regs {
		out = append(out, registrationResponse(reg))
	}
	return out
}

func registrationDetailResponse(d repository.RegistrationDetail) echo.Map {
	out := registrationResponse(d.Registration)
	out["eventTitle"] = d.EventTitle
	out["userEmail"] = d.UserEmail
	out["userDisplayName"] = d.UserDisplayName
	out["ticketName"] = d.TicketName
	return out
}

func paymentResponse(p model.Payment) echo.Map {
	return echo.Map{
		"id":                    p.ID,
		"registrationId":        p.RegistrationID,
		"userId":                p.UserID,
		"amount":                p.Amount,
		"currency":              p.Currency,
		"provider":              p.Provider,
		"status":                p.Status,
		"providerTransactionId": p.ProviderTransactionID,
		"createdAt":             p.CreatedAt,
		"completedAt":           p.CompletedAt,
	}
}
