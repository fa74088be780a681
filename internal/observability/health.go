package observability

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker tracks process liveness and readiness. Readiness flips on
// only once the portfolio is restored and the operation stream is live, and
// flips off again during shutdown so load balancers drain first.
type HealthChecker struct {
	ready atomic.Bool
	since time.Time
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{since: time.Now()}
}

func (h *HealthChecker) SetReady(ready bool) { h.ready.Store(ready) }

func (h *HealthChecker) IsReady() bool { return h.ready.Load() }

// LivenessHandler answers 200 whenever the process can serve HTTP at all.
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": time.Since(h.since).String(),
	})
}

// ReadinessHandler answers 200 once the venue is serving operations, 503
// before that and during drain.
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeHealth(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeHealth(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeHealth(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
