package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/securehealth/record-exchange/internal/config"
	"github.com/securehealth/record-exchange/internal/middleware"
	"github.com/securehealth/record-exchange/internal/model"
	"github.com/securehealth/record-exchange/internal/repository"
	"github.com/securehealth/record-exchange/internal/search"
	"github.com/securehealth/record-exchange/internal/session"
)

// HospitalDirectory is the slice of hospital persistence the handler
// needs. *repository.HospitalRepo satisfies it.
type HospitalDirectory interface {
	GetByUsername(ctx context.Context, username string) (*model.Hospital, error)
	GetByID(ctx context.Context, id string) (*model.Hospital, error)
}

// HospitalHandler bundles dependencies for hospital-facing endpoints:
// login, session introspection, the access-controlled search, and logout.
type HospitalHandler struct {
	Cfg       config.Config
	Hospitals HospitalDirectory
	Sessions  session.Store
	Search    *search.Orchestrator
}

func NewHospitalHandler(cfg config.Config, h HospitalDirectory, s session.Store, o *search.Orchestrator) *HospitalHandler {
	return &HospitalHandler{Cfg: cfg, Hospitals: h, Sessions: s, Search: o}
}

// ----- DTOs -----

type hospitalLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type hospitalPart struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type searchReq struct {
	Query string `json:"query"`
}

// Login verifies hospital credentials, rotates any existing session and
// issues a fresh session cookie bound to the hospital identity.
func (h *HospitalHandler) Login(c echo.Context) error {
	var req hospitalLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hospital, err := h.Hospitals.GetByUsername(ctx, req.Username)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if bcrypt.CompareHashAndPassword([]byte(hospital.PasswordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Rotate: any session presented with the login request dies here so a
	// pre-login cookie can never be fixated into an authenticated one.
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		_ = h.Sessions.Destroy(ctx, cookie.Value)
	}

	raw, err := h.Sessions.Create(ctx, session.Identity{
		HospitalID:   hospital.ID,
		HospitalName: hospital.Name,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	c.SetCookie(h.sessionCookie(raw, int(h.Cfg.SessionTTL/time.Second)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"hospital": hospitalPart{
			ID:       hospital.ID,
			Name:     hospital.Name,
			Username: hospital.Username,
		},
	})
}

// DoSearch runs the access-controlled search pipeline for the
// authenticated hospital. The identity comes from the session middleware,
// never from the request body.
func (h *HospitalHandler) DoSearch(c echo.Context) error {
	var req searchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	identity := search.HospitalIdentity{
		ID:   c.Get(middleware.CtxHospitalID).(string),
		Name: c.Get(middleware.CtxHospitalName).(string),
	}

	resp, err := h.Search.Search(c.Request().Context(), req.Query, identity)
	if err == search.ErrEmptyQuery {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "search query is required"})
	}
	if err != nil {
		// Storage detail stays in the server log; the caller gets a
		// generic failure.
		c.Logger().Errorf("hospital search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout destroys the current session and expires the cookie.
func (h *HospitalHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.Sessions.Destroy(ctx, cookie.Value); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	}
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Session reports whether the caller holds a valid hospital session.
func (h *HospitalHandler) Session(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Sessions.Get(ctx, cookie.Value)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}

	// A live session cookie is not enough on its own: the account it
	// points at must still exist.
	hospital, err := h.Hospitals.GetByID(ctx, id.HospitalID)
	if err == repository.ErrNotFound {
		_ = h.Sessions.Destroy(ctx, cookie.Value)
		c.SetCookie(h.sessionCookie("", -1))
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session check failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"hospital": hospitalPart{
			ID:       hospital.ID,
			Name:     hospital.Name,
			Username: hospital.Username,
		},
	})
}

func (h *HospitalHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
}
