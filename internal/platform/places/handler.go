package places

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/heartguard/heartguard/internal/platform/auth"
)

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("patient", "doctor", "admin"))
	g.GET("/providers/nearby", h.Nearby)
}

func (h *Handler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lat")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lng")
	}
	radius := 0
	if raw := c.QueryParam("radius"); raw != "" {
		if radius, err = strconv.Atoi(raw); err != nil || radius < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid radius")
		}
	}

	providers, err := h.client.Nearby(c.Request().Context(), lat, lng, radius)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "provider search unavailable")
	}
	if providers == nil {
		providers = []Provider{}
	}
	return c.JSON(http.StatusOK, providers)
}
