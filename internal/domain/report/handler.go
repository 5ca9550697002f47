package report

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/klab/reports/pkg/pagination"
)

const quotaMessage = "Monthly limit reached (30 reports/month). Please upgrade to Pro for unlimited reporting."

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports", h.ListReports)
	api.GET("/reports/:id", h.GetReport)
	api.POST("/reports", h.CreateReport)
	api.PUT("/reports/:id", h.UpdateReport)
	api.DELETE("/reports/:id", h.DeleteReport)
	api.GET("/next-bill-number", h.NextBillNumber)
}

// quotaError is the payload the client keys its upgrade prompt off.
func quotaError(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]interface{}{
		"error":        quotaMessage,
		"limitReached": true,
	})
}

func (h *Handler) ListReports(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []Summary{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateReport(c echo.Context) error {
	var in SaveInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.Create(c.Request().Context(), &in)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return quotaError(c)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":   true,
		"report_id": rep.ID,
	})
}

func (h *Handler) UpdateReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in SaveInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.Update(c.Request().Context(), id, &in)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuotaExceeded):
			return quotaError(c)
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"report_id": rep.ID,
	})
}

func (h *Handler) DeleteReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) NextBillNumber(c echo.Context) error {
	next, err := h.svc.NextBillNumber(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"nextBillNumber": next})
}
