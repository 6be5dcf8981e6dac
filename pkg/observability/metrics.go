// Package observability exposes Prometheus metrics for the engine. The
// collectors are package-level because there is one engine per process;
// Handler serves the scrape endpoint.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cmdbus "github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loom_commands_total",
		Help: "Graph commands dispatched, by command type and outcome.",
	}, []string{"command", "outcome"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loom_command_duration_seconds",
		Help:    "Command handling latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loom_http_requests_total",
		Help: "HTTP requests served, by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loom_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	workspaceCards = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "loom_workspace_cards",
		Help: "Cards currently in each workspace.",
	}, []string{"workspace"})
)

// Handler serves the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one served request
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetWorkspaceCards updates the per-workspace card gauge
func SetWorkspaceCards(workspaceID string, count int) {
	workspaceCards.WithLabelValues(workspaceID).Set(float64(count))
}

// DropWorkspace removes the gauge series for a deleted workspace
func DropWorkspace(workspaceID string) {
	workspaceCards.DeleteLabelValues(workspaceID)
}

// CommandMetricsMiddleware instruments every dispatched command
func CommandMetricsMiddleware() cmdbus.Middleware {
	return func(next cmdbus.CommandHandler) cmdbus.CommandHandler {
		return cmdbus.CommandHandlerFunc(func(ctx context.Context, cmd cmdbus.Command) error {
			name := fmt.Sprintf("%T", cmd)
			start := time.Now()
			err := next.Handle(ctx, cmd)
			commandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			commandsTotal.WithLabelValues(name, outcome).Inc()
			return err
		})
	}
}
