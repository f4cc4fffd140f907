package reporting

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/heartguard/heartguard/internal/platform/auth"
)

type Handler struct {
	reporter *Reporter
}

func NewHandler(reporter *Reporter) *Handler {
	return &Handler{reporter: reporter}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("doctor", "admin"))
	g.GET("/reports/summary", h.Summary)
	g.GET("/reports/daily", h.Daily)
}

func (h *Handler) Summary(c echo.Context) error {
	s, err := h.reporter.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Daily(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	counts, err := h.reporter.Daily(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}
