package license

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/license-status", h.LicenseStatus)
	api.POST("/activate-license", h.ActivateLicense)
}

func (h *Handler) LicenseStatus(c echo.Context) error {
	status, err := h.svc.Status(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, status)
}

func (h *Handler) ActivateLicense(c echo.Context) error {
	var req struct {
		Key string `json:"key"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Activate(c.Request().Context(), req.Key); err != nil {
		if errors.Is(err, ErrInvalidKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid license key")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Pro License Activated!",
	})
}
