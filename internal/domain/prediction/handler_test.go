package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/heartguard/heartguard/internal/platform/auth"
)

func newTestServer(t *testing.T, repo Repository, scorer Scorer) (*echo.Echo, *Handler) {
	t.Helper()
	e := echo.New()
	h := NewHandler(newTestService(scorer, repo))
	return e, h
}

// asUser builds an authenticated request context for the given subject and
// roles, mirroring what the JWT middleware injects.
func asUser(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uuid.UUID, roles ...string) echo.Context {
	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	return e.NewContext(req.WithContext(ctx), rec)
}

func predictBody(in ClinicalInput) string {
	raw, _ := json.Marshal(in)
	return `{"input": ` + string(raw) + `}`
}

func TestHandlerPredictCreated(t *testing.T) {
	e, h := newTestServer(t, newMockRepo(), &countingScorer{p: 0.82})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(predictBody(highRiskInput())))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), "patient")

	if err := h.Predict(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var got predictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Assessment.Tier != TierHigh || got.Source != SourceExternal {
		t.Errorf("tier %s source %s, want high/external", got.Assessment.Tier, got.Source)
	}
	if got.DietPlan.Summary == "" {
		t.Error("response must include the diet plan")
	}
	if got.RecordID == uuid.Nil {
		t.Error("response must reference the stored record")
	}
}

func TestHandlerPredictMissingFields(t *testing.T) {
	e, h := newTestServer(t, newMockRepo(), &countingScorer{p: 0.5})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions",
		strings.NewReader(`{"input": {"age": 50, "sex": 1}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), "patient")

	err := h.Predict(c)
	var httpErr *echo.HTTPError
	if !errorsAs(err, &httpErr) || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("err = %v, want 422", err)
	}
	if msg, ok := httpErr.Message.(string); !ok || !strings.Contains(msg, "chol") {
		t.Errorf("message = %v, want the missing fields named", httpErr.Message)
	}
}

func TestHandlerPredictInvalidInput(t *testing.T) {
	e, h := newTestServer(t, newMockRepo(), &countingScorer{p: 0.5})

	bad := healthyInput()
	bad.Trestbps = 999
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(predictBody(bad)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), "patient")

	err := h.Predict(c)
	var httpErr *echo.HTTPError
	if !errorsAs(err, &httpErr) || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("err = %v, want 422", err)
	}
}

func TestHandlerGetOwnRecordOnly(t *testing.T) {
	repo := newMockRepo()
	e, h := newTestServer(t, repo, &countingScorer{p: 0.4})

	owner := uuid.New()
	svc := newTestService(&countingScorer{p: 0.4}, repo)
	stored, err := svc.Predict(context.Background(), owner, healthyInput(), nil)
	if err != nil {
		t.Fatal(err)
	}

	get := func(caller uuid.UUID, roles ...string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/"+stored.ID.String(), nil)
		rec := httptest.NewRecorder()
		c := asUser(e, req, rec, caller, roles...)
		c.SetParamNames("id")
		c.SetParamValues(stored.ID.String())
		return rec, h.Get(c)
	}

	if rec, err := get(owner, "patient"); err != nil || rec.Code != http.StatusOK {
		t.Errorf("owner read: err=%v code=%d, want 200", err, rec.Code)
	}

	_, err = get(uuid.New(), "patient")
	var httpErr *echo.HTTPError
	if !errorsAs(err, &httpErr) || httpErr.Code != http.StatusForbidden {
		t.Errorf("stranger read: err = %v, want 403", err)
	}

	if rec, err := get(uuid.New(), "doctor"); err != nil || rec.Code != http.StatusOK {
		t.Errorf("doctor read: err=%v code=%d, want 200", err, rec.Code)
	}
}

func TestHandlerListScopesPatientsToOwnRecords(t *testing.T) {
	repo := newMockRepo()
	e, h := newTestServer(t, repo, &countingScorer{p: 0.4})

	alice, bob := uuid.New(), uuid.New()
	svc := newTestService(&countingScorer{p: 0.4}, repo)
	for _, uid := range []uuid.UUID{alice, alice, bob} {
		if _, err := svc.Predict(context.Background(), uid, healthyInput(), nil); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions", nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, alice, "patient")
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Data  []*Record `json:"data"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2 records for alice", resp.Total)
	}
	for _, r := range resp.Data {
		if r.UserID != alice {
			t.Errorf("record %s belongs to %s, leaked into alice's list", r.ID, r.UserID)
		}
	}
}

func TestHandlerListTierFilterForClinician(t *testing.T) {
	repo := newMockRepo()
	e, h := newTestServer(t, repo, &countingScorer{})

	svcHigh := newTestService(&countingScorer{p: 0.9}, repo)
	svcLow := newTestService(&countingScorer{p: 0.1}, repo)
	if _, err := svcHigh.Predict(context.Background(), uuid.New(), highRiskInput(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svcLow.Predict(context.Background(), uuid.New(), healthyInput(), nil); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions?tier=high", nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), "doctor")
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Data []*Record `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Tier != TierHigh {
		t.Errorf("tier filter returned %d records", len(resp.Data))
	}
}

func TestHandlerAnnotateFlow(t *testing.T) {
	repo := newMockRepo()
	e, h := newTestServer(t, repo, &countingScorer{})

	owner := uuid.New()
	svc := newTestService(&countingScorer{p: 0.8}, repo)
	stored, err := svc.Predict(context.Background(), owner, highRiskInput(), nil)
	if err != nil {
		t.Fatal(err)
	}

	doctor := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions/"+stored.ID.String()+"/annotations",
		strings.NewReader(`{"body": "schedule a stress test"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, doctor, "doctor")
	c.SetParamNames("id")
	c.SetParamValues(stored.ID.String())

	if err := h.Annotate(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/predictions/"+stored.ID.String()+"/annotations", nil)
	rec = httptest.NewRecorder()
	c = asUser(e, req, rec, owner, "patient")
	c.SetParamNames("id")
	c.SetParamValues(stored.ID.String())

	if err := h.ListAnnotations(c); err != nil {
		t.Fatal(err)
	}
	var notes []*Annotation
	if err := json.Unmarshal(rec.Body.Bytes(), &notes); err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].AuthorID != doctor {
		t.Errorf("notes = %+v, want one note by the doctor", notes)
	}
}

func errorsAs(err error, target **echo.HTTPError) bool {
	return errors.As(err, target)
}
