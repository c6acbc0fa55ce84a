package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerrad567/metric-relay/internal/infrastructure/config"
	"github.com/nerrad567/metric-relay/internal/infrastructure/logging"
	"github.com/nerrad567/metric-relay/internal/relay"
)

// fakeStats returns canned route counters.
type fakeStats struct {
	routes []relay.RouteStats
}

func (f *fakeStats) Stats() []relay.RouteStats { return f.routes }

// fakeHealth is a HealthChecker with a fixed result.
type fakeHealth struct {
	err error
}

func (f *fakeHealth) HealthCheck(_ context.Context) error { return f.err }

func newTestServer(t *testing.T, mqtt, writer HealthChecker) *Server {
	t.Helper()
	s, err := New(Deps{
		Config: config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logger: logging.Default(),
		Relay: &fakeStats{routes: []relay.RouteStats{
			{Route: "climate", Topic: "sensors/+/climate", Received: 10, Encoded: 9, EncodeFailed: 1},
		}},
		MQTT:    mqtt,
		Writer:  writer,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.started = time.Now()
	return s
}

// === Construction Tests ===

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Relay: &fakeStats{}}); err == nil {
		t.Error("New() without logger succeeded")
	}
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Error("New() without relay succeeded")
	}
}

// === Health Endpoint Tests ===

func TestHealthAllComponentsOK(t *testing.T) {
	s := newTestServer(t, &fakeHealth{}, &fakeHealth{})
	router := s.buildRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
	if resp.Components["mqtt"] != "ok" || resp.Components["influxdb"] != "ok" {
		t.Errorf("Components = %v, want all ok", resp.Components)
	}
	if resp.Version != "test" {
		t.Errorf("Version = %q, want test", resp.Version)
	}
}

func TestHealthDegraded(t *testing.T) {
	s := newTestServer(t, &fakeHealth{}, &fakeHealth{err: errors.New("server unreachable")})
	router := s.buildRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
}

func TestHealthAbsentComponentNotDegrading(t *testing.T) {
	// Dry-run relay: no writer at all.
	s := newTestServer(t, &fakeHealth{}, nil)
	router := s.buildRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Components["influxdb"] != "absent" {
		t.Errorf("influxdb component = %q, want absent", resp.Components["influxdb"])
	}
}

// === Stats Endpoint Tests ===

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeHealth{}, &fakeHealth{})
	router := s.buildRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Routes) != 1 {
		t.Fatalf("Routes count = %d, want 1", len(resp.Routes))
	}
	route := resp.Routes[0]
	if route.Route != "climate" || route.Received != 10 || route.EncodeFailed != 1 {
		t.Errorf("unexpected route stats: %+v", route)
	}
}

// === Middleware Tests ===

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, &fakeHealth{}, &fakeHealth{})
	router := s.buildRouter()

	// Generated when missing.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	// Echoed when supplied.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want trace-123", got)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	s := newTestServer(t, &fakeHealth{}, &fakeHealth{})
	router := s.buildRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
