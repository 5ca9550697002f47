package settings

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler works straight against the repository; there is no policy to put
// in a service layer here.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/settings", h.GetSettings)
	api.POST("/settings", h.SaveSettings)
}

func (h *Handler) GetSettings(c echo.Context) error {
	values, err := h.repo.GetAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, values)
}

// SaveSettings accepts a flat object and stringifies every value, matching
// what the client sends for numeric fields like margins.
func (h *Handler) SaveSettings(c echo.Context) error {
	var body map[string]interface{}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	values := make(map[string]string, len(body))
	for k, v := range body {
		values[k] = fmt.Sprintf("%v", v)
	}
	if err := h.repo.SaveAll(c.Request().Context(), values); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
