package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// Logger emits one structured line per request. The staff identity is
// read after the handler chain ran, so requests that cleared the auth
// middleware are attributed to the receptionist, nurse or doctor who
// made them.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			rid, _ := c.Get("request_id").(string)
			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if staffID := auth.UserIDFromContext(req.Context()); staffID != "" {
				evt = evt.
					Str("staff_id", staffID).
					Strs("staff_roles", auth.RolesFromContext(req.Context()))
			}

			evt.Msg("request")
			return err
		}
	}
}
