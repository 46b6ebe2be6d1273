package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/securehealth/record-exchange/internal/config"
	"github.com/securehealth/record-exchange/internal/repository"
)

// BootstrapHandler seeds the demo hospital accounts. It exists for
// development convenience only and refuses to run in production.
type BootstrapHandler struct {
	Cfg       config.Config
	Hospitals *repository.HospitalRepo
}

func NewBootstrapHandler(cfg config.Config, h *repository.HospitalRepo) *BootstrapHandler {
	return &BootstrapHandler{Cfg: cfg, Hospitals: h}
}

// seedHospitals are created by Init when absent. Username doubles as the
// password in development; display name and username are kept identical
// because patient access grants match on the display name.
var seedHospitals = []string{"Hospital1", "Hospital2"}

// Init creates the seed hospitals if they do not exist yet.
func (h *BootstrapHandler) Init(c echo.Context) error {
	if h.Cfg.IsProd() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "hospital initialization not allowed in production"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	for _, name := range seedHospitals {
		if _, err := h.Hospitals.GetByUsername(ctx, name); err == nil {
			continue
		} else if err != repository.ErrNotFound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "initialization failed"})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(name), h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "initialization failed"})
		}
		if _, err := h.Hospitals.Create(ctx, name, name, string(hash)); err != nil && err != repository.ErrNameExists {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "initialization failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hospitals initialized successfully"})
}
