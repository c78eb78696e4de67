package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns middleware that caps each client at limit requests
// per window using a fixed-window counter in Redis. The key is the
// authenticated user id when present, otherwise the client IP. When
// rdb is nil the middleware is a no-op so the service still runs
// without Redis.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			who := c.RealIP()
			if id := UserID(c); id != 0 {
				who = strconv.FormatUint(id, 10)
			}
			bucket := time.Now().Unix() / int64(window/time.Second)
			key := fmt.Sprintf("ratelimit:%s:%d", who, bucket)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis trouble must not take requests down with it.
				return next(c)
			}
			if n == 1 {
				rdb.Expire(ctx, key, window)
			}
			if n > int64(limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window/time.Second)))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
