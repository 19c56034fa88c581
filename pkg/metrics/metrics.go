package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReleasesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coordinator_releases_total",
			Help: "Total number of releases by state",
		},
		[]string{"state"},
	)

	TasksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coordinator_tasks_total",
			Help: "Total number of tasks by state",
		},
		[]string{"state"},
	)

	TaskServicesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coordinator_task_services_total",
			Help: "Total number of registered task services",
		},
	)

	TaskServicesDown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coordinator_task_services_down",
			Help: "Number of task services currently considered down",
		},
	)

	TaskCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_task_commands_total",
			Help: "Total number of task-service commands sent, by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	TaskCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coordinator_task_command_duration_seconds",
			Help:    "Time taken for a task-service command round trip",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	PollCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coordinator_poll_cycle_duration_seconds",
			Help:    "Time taken for one status-poll cycle across all active releases",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReleasesCanceledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_releases_canceled_total",
			Help: "Total number of releases canceled, by reason",
		},
		[]string{"reason"},
	)

	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coordinator_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		ReleasesTotal,
		TasksTotal,
		TaskServicesTotal,
		TaskServicesDown,
		TaskCommandsTotal,
		TaskCommandDuration,
		PollCycleDuration,
		ReleasesCanceledTotal,
		APIRequestsTotal,
		APIRequestDuration,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer times an operation for later observation into a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time into histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time into a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the Timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
