package api

import (
	"net/http"
	"pdp-route-service/internal/api/handlers"
	"pdp-route-service/internal/metrics"
	"pdp-route-service/internal/ports"
	"pdp-route-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.ParcelRepository, sim *services.Simulator, checks map[string]handlers.Check) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Checks: checks}
	parcelHandler := &handlers.ParcelHandler{Repo: repo}
	simHandler := &handlers.SimulationHandler{Sim: sim}

	mux.Handle("/health", instrument("/health", http.HandlerFunc(healthHandler.Health)))
	mux.Handle("/parcels", instrument("/parcels", http.HandlerFunc(parcelHandler.List)))
	mux.Handle("/simulations", instrument("/simulations", http.HandlerFunc(simHandler.Run)))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
