package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kagisomabe/luma-events/internal/subscription"
)

// liveCollections are the change feeds clients may watch.
var liveCollections = map[string]bool{
	"events":        true,
	"registrations": true,
	"payments":      true,
}

// LiveHandler streams collection change ticks to the backoffice over
// Server-Sent Events. A tick tells the client the collection changed;
// the client refetches through the regular endpoints.
type LiveHandler struct {
	subs *subscription.Manager
}

func NewLiveHandler(subs *subscription.Manager) *LiveHandler {
	return &LiveHandler{subs: subs}
}

// Stream subscribes to one collection and forwards its change ticks
// until the client disconnects. The subscription is cancelled on
// return, so abandoned streams do not leak.
func (h *LiveHandler) Stream(c echo.Context) error {
	collection := c.Param("collection")
	if !liveCollections[collection] {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown collection"})
	}

	ctx := c.Request().Context()
	handle := h.subs.Subscribe(ctx, collection)
	defer handle.Cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	// Heartbeats keep proxies from closing an idle stream.
	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": heartbeat\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case change, ok := <-handle.C:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(change)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: change\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
