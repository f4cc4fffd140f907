package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestObservePrediction_Counts(t *testing.T) {
	m := New()
	m.ObservePrediction("external", 100*time.Millisecond)
	m.ObservePrediction("fallback", time.Millisecond)
	m.ObservePrediction("fallback", time.Millisecond)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() != "heartguard_predictions_total" {
			continue
		}
		found = true
		total := 0.0
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		if total != 3 {
			t.Errorf("expected 3 predictions, got %v", total)
		}
	}
	if !found {
		t.Error("heartguard_predictions_total not registered")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := New()
	m.ObserveScoringFailure("timeout")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := m.Handler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "heartguard_scoring_failures_total") {
		t.Error("expected scoring failure metric in exposition output")
	}
}

func TestMiddleware_RecordsRequest(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "heartguard_http_requests_total" {
			if len(mf.GetMetric()) == 0 {
				t.Error("expected at least one http request metric")
			}
			return
		}
	}
	t.Error("heartguard_http_requests_total not found")
}
