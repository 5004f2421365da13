package api

import (
	"net/http"

	"github.com/okian/eventmatch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthStatus is the fixed liveness message.
const healthStatus = "ML service is running"

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": healthStatus})
}

// HandleMetrics handles GET /metrics requests with the service's Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.metrics.ServeHTTP(w, r)
}
