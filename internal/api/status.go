package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nerrad567/metric-relay/internal/relay"
)

// componentCheckTimeout bounds each component's health probe.
const componentCheckTimeout = 3 * time.Second

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	UptimeSecs int64             `json:"uptime_secs"`
	Components map[string]string `json:"components"`
}

// StatsResponse is the payload for GET /api/v1/stats.
type StatsResponse struct {
	Routes []relay.RouteStats `json:"routes"`
}

// handleHealth reports overall service health.
//
// Status is "ok" when every present component passes its health check,
// "degraded" otherwise. Components the relay runs without (a disabled
// writer, for example) are reported as "absent" and do not degrade the
// status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]string)
	status := "ok"

	check := func(name string, component HealthChecker) {
		if component == nil {
			components[name] = "absent"
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), componentCheckTimeout)
		defer cancel()
		if err := component.HealthCheck(ctx); err != nil {
			components[name] = err.Error()
			status = "degraded"
			return
		}
		components[name] = "ok"
	}

	check("mqtt", s.mqtt)
	check("influxdb", s.writer)

	httpStatus := http.StatusOK
	if status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:     status,
		Version:    s.version,
		UptimeSecs: int64(time.Since(s.started).Seconds()),
		Components: components,
	})
}

// handleStats reports per-route relay counters.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Routes: s.relay.Stats(),
	})
}
