package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securehealth/record-exchange/internal/session"
)

// Context keys under which the authenticated hospital identity is stored.
// Handlers read these instead of trusting anything client-supplied.
const (
	CtxHospitalID   = "hospital_id"
	CtxHospitalName = "hospital_name"
)

// HospitalAuth returns a middleware that resolves the session cookie
// against the store and injects the hospital identity into the request
// context. Requests without a valid session are rejected with 401; the
// orchestrator downstream only ever sees identities the server resolved
// itself.
func HospitalAuth(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "hospital not authenticated"})
			}
			id, err := store.Get(c.Request().Context(), cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "hospital not authenticated"})
			}
			c.Set(CtxHospitalID, id.HospitalID)
			c.Set(CtxHospitalName, id.HospitalName)
			return next(c)
		}
	}
}
