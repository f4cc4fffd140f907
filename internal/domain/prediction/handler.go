package prediction

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/heartguard/heartguard/internal/domain/dietplan"
	"github.com/heartguard/heartguard/internal/platform/auth"
	"github.com/heartguard/heartguard/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	any := auth.RequireRole("patient", "doctor", "admin")
	clinician := auth.RequireRole("doctor", "admin")

	g := api.Group("", any)
	g.POST("/predictions", h.Predict)
	g.GET("/predictions", h.List)
	g.GET("/predictions/:id", h.Get)
	g.GET("/predictions/:id/annotations", h.ListAnnotations)

	w := api.Group("", clinician)
	w.POST("/predictions/:id/annotations", h.Annotate)
}

// clinicalInputDTO mirrors ClinicalInput with pointer fields so that absent
// JSON keys are distinguishable from legitimate zeroes.
type clinicalInputDTO struct {
	Age      *int     `json:"age"`
	Sex      *int     `json:"sex"`
	CP       *int     `json:"cp"`
	Trestbps *int     `json:"trestbps"`
	Chol     *int     `json:"chol"`
	FBS      *int     `json:"fbs"`
	RestECG  *int     `json:"restecg"`
	Thalach  *int     `json:"thalach"`
	Exang    *int     `json:"exang"`
	Oldpeak  *float64 `json:"oldpeak"`
	Slope    *int     `json:"slope"`
	CA       *int     `json:"ca"`
	Thal     *int     `json:"thal"`
}

func (d clinicalInputDTO) toInput() (ClinicalInput, error) {
	var missing []string
	need := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}
	need("age", d.Age != nil)
	need("sex", d.Sex != nil)
	need("cp", d.CP != nil)
	need("trestbps", d.Trestbps != nil)
	need("chol", d.Chol != nil)
	need("fbs", d.FBS != nil)
	need("restecg", d.RestECG != nil)
	need("thalach", d.Thalach != nil)
	need("exang", d.Exang != nil)
	need("oldpeak", d.Oldpeak != nil)
	need("slope", d.Slope != nil)
	need("ca", d.CA != nil)
	need("thal", d.Thal != nil)
	if len(missing) > 0 {
		return ClinicalInput{}, fmt.Errorf("%w: missing fields: %s",
			ErrInvalidInput, strings.Join(missing, ", "))
	}
	return ClinicalInput{
		Age: *d.Age, Sex: *d.Sex, CP: *d.CP, Trestbps: *d.Trestbps,
		Chol: *d.Chol, FBS: *d.FBS, RestECG: *d.RestECG, Thalach: *d.Thalach,
		Exang: *d.Exang, Oldpeak: *d.Oldpeak, Slope: *d.Slope, CA: *d.CA,
		Thal: *d.Thal,
	}, nil
}

type predictRequest struct {
	Input      clinicalInputDTO `json:"input"`
	SourceFile *SourceFile      `json:"source_file,omitempty"`
}

type predictResponse struct {
	RecordID   uuid.UUID      `json:"record_id"`
	Assessment RiskAssessment `json:"assessment"`
	DietPlan   dietplan.Plan  `json:"diet_plan"`
	Source     string         `json:"source"`
	Message    string         `json:"message"`
}

func (h *Handler) Predict(c echo.Context) error {
	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.Input.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Predict(c.Request().Context(), userID, in, req.SourceFile)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "prediction could not be saved")
	}

	message := "Assessment produced by the machine-learning model."
	if rec.Source == SourceFallback {
		message = "The scoring service was unavailable; this assessment uses the built-in heuristic model."
	}
	return c.JSON(http.StatusCreated, predictResponse{
		RecordID:   rec.ID,
		Assessment: rec.Assessment(),
		DietPlan:   rec.DietPlan,
		Source:     rec.Source,
		Message:    message,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "prediction not found")
	}
	if err := authorizeRecordAccess(c, rec); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := ListFilter{Tier: c.QueryParam("tier")}

	userID, err := callerID(c)
	if err != nil {
		return err
	}
	if clinicianCaller(c) {
		if param := c.QueryParam("user_id"); param != "" {
			uid, err := uuid.Parse(param)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
			}
			filter.UserID = uid
		}
	} else {
		// Patients only ever see their own history.
		filter.UserID = userID
	}

	records, total, err := h.svc.List(c.Request().Context(), filter, pg)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg.Limit, pg.Offset))
}

type annotateRequest struct {
	Body string `json:"body"`
}

func (h *Handler) Annotate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req annotateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	authorID, err := callerID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Annotate(c.Request().Context(), id, authorID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "prediction not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAnnotations(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "prediction not found")
	}
	if err := authorizeRecordAccess(c, rec); err != nil {
		return err
	}
	notes, err := h.svc.Annotations(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if notes == nil {
		notes = []*Annotation{}
	}
	return c.JSON(http.StatusOK, notes)
}

func callerID(c echo.Context) (uuid.UUID, error) {
	raw := auth.UserIDFromContext(c.Request().Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
	}
	return id, nil
}

func clinicianCaller(c echo.Context) bool {
	roles := auth.RolesFromContext(c.Request().Context())
	return auth.HasRole(roles, "doctor") || auth.HasRole(roles, "admin")
}

func authorizeRecordAccess(c echo.Context, rec *Record) error {
	if clinicianCaller(c) {
		return nil
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "not your prediction")
	}
	return nil
}
