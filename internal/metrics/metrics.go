package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// PlannerUpdates counts route planner updates by planner kind.
	PlannerUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_updates_total", Help: "Route planner updates by planner kind."},
		[]string{"planner"},
	)
	// SolverCalls counts solver invocations by start mode and outcome.
	SolverCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_calls_total", Help: "Solver invocations by mode (warm, cold) and status."},
		[]string{"mode", "status"},
	)
	// WarmStartFallbacks counts warm starts discarded as infeasible.
	WarmStartFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_warm_start_fallbacks_total", Help: "Warm-start routes discarded in favor of a cold solve."},
	)
	// SolveDuration tracks solver latency in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_duration_seconds", Help: "Solver call duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// MovesGenerated counts relocate moves emitted by the move generator.
	MovesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "localsearch_moves_generated_total", Help: "Relocate moves emitted by the move generator."},
	)
	// MovesAccepted counts relocate moves that improved the solution.
	MovesAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "localsearch_moves_accepted_total", Help: "Relocate moves accepted by the hill climber."},
	)
	// AuctionAwards counts auction outcomes by status (awarded, taken).
	AuctionAwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auction_awards_total", Help: "Parcel auction outcomes."},
		[]string{"status"},
	)
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(PlannerUpdates)
		Registry.MustRegister(SolverCalls)
		Registry.MustRegister(WarmStartFallbacks)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(MovesGenerated)
		Registry.MustRegister(MovesAccepted)
		Registry.MustRegister(AuctionAwards)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
