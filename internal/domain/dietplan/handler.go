package dietplan

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/heartguard/heartguard/internal/platform/auth"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("patient", "doctor", "admin"))
	g.GET("/diet-plans/:tier", h.GetPlan)
}

// GetPlan returns the reference plan for a tier without running a prediction.
func (h *Handler) GetPlan(c echo.Context) error {
	tier := c.Param("tier")
	switch tier {
	case "low", "moderate", "high":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "tier must be low, moderate or high")
	}
	hasCondition := c.QueryParam("has_condition") == "true"
	return c.JSON(http.StatusOK, Generate(tier, hasCondition))
}
