package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientOptions{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Timeout:    time.Second,
		MaxElapsed: 2 * time.Second,
	}, zerolog.Nop())
}

func TestNearbyParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.URL.Query().Get("category"); got != "cardiology" {
			t.Errorf("category = %q", got)
		}
		w.Write([]byte(`{"results": [
			{"name": "City Heart Center", "address": "1 Main St", "latitude": 40.7, "longitude": -74.0, "distance_m": 820},
			{"name": "Riverside Cardiology", "address": "9 River Rd", "latitude": 40.71, "longitude": -74.01, "distance_m": 2400}
		]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Nearby(context.Background(), 40.7, -74.0, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "City Heart Center" {
		t.Errorf("got %+v", got)
	}
}

func TestNearbyRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Nearby(context.Background(), 40.7, -74.0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %+v, want empty result", got)
	}
	if calls.Load() < 3 {
		t.Errorf("calls = %d, want at least 3", calls.Load())
	}
}

func TestNearbyDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Nearby(context.Background(), 40.7, -74.0, 0); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, a 401 must not be retried", calls.Load())
	}
}

func TestNearbyHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := newTestClient(srv.URL).Nearby(ctx, 40.7, -74.0, 0); err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("lookup ran %v past its context", elapsed)
	}
}
