package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Check probes a dependency and returns an error when it is unreachable.
type Check func(ctx context.Context) error

// HealthHandler reports liveness and, when checks are configured, readiness
// of the backing stores.
type HealthHandler struct {
	Checks map[string]Check
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	res := map[string]string{"status": "ok"}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			log.Printf("health check failed: check=%s err=%v", name, err)
			res[name] = "down"
			res["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		res[name] = "up"
	}

	writeJSON(w, r, status, res)
}
