// Package metrics registers the process-wide Prometheus collectors. It is a
// separate package so both the HTTP platform and the engines can record
// without importing each other.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	ToolRunsTotal   *prometheus.CounterVec
	ToolRunDuration *prometheus.HistogramVec
	RunsRejected    *prometheus.CounterVec

	ConsoleCommandsTotal *prometheus.CounterVec
)

// Init registers all collectors. Call once at start-up, before any engine
// or server starts recording.
func Init() {
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hellorun",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed, labeled by method and route.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hellorun",
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of request durations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ToolRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hellorun",
		Name:      "tool_runs_total",
		Help:      "Completed tool invocations, labeled by tool and terminal status.",
	}, []string{"tool", "status"})

	ToolRunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hellorun",
		Name:      "tool_run_duration_seconds",
		Help:      "Wall-clock duration of tool invocations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	RunsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hellorun",
		Name:      "tool_runs_rejected_total",
		Help:      "Run commands dropped by the per-surface concurrency guard.",
	}, []string{"tool"})

	ConsoleCommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hellorun",
		Name:      "console_commands_total",
		Help:      "Console lines handled, labeled by command word.",
	}, []string{"command"})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPDuration,
		ToolRunsTotal,
		ToolRunDuration,
		RunsRejected,
		ConsoleCommandsTotal,
	)
}

// The engines record through these helpers, which no-op before Init so unit
// tests can exercise handlers without registering collectors.

func CountHTTPRequest(method, route string, status int, d time.Duration) {
	if HTTPRequestsTotal == nil || HTTPDuration == nil {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func ObserveToolRun(tool, status string, seconds float64) {
	if ToolRunsTotal == nil || ToolRunDuration == nil {
		return
	}
	ToolRunsTotal.WithLabelValues(tool, status).Inc()
	ToolRunDuration.WithLabelValues(tool).Observe(seconds)
}

func CountRejected(tool string) {
	if RunsRejected == nil {
		return
	}
	RunsRejected.WithLabelValues(tool).Inc()
}

func CountConsoleCommand(command string) {
	if ConsoleCommandsTotal == nil {
		return
	}
	ConsoleCommandsTotal.WithLabelValues(command).Inc()
}
