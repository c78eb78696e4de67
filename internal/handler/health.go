package handler // package handler contains the HTTP endpoint implementations

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports service liveness. It takes no dependencies so it can
// answer even when the database or broker is down.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
