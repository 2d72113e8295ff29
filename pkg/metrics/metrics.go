package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Task metrics
	TasksRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vnix_tasks_registered_total",
			Help: "Total number of tasks registered with the kernel",
		},
	)

	TasksCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vnix_tasks_completed_total",
			Help: "Total number of tasks that completed normally",
		},
	)

	TasksFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vnix_tasks_failed_total",
			Help: "Total number of tasks that completed with an error",
		},
	)

	TasksKilled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vnix_tasks_killed_total",
			Help: "Total number of tasks removed by a kill signal",
		},
	)

	TasksRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vnix_tasks_running",
			Help: "Number of tasks currently in the running set",
		},
	)

	ResultsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vnix_task_results_pending",
			Help: "Number of task results not yet drained by a reader",
		},
	)

	// Data pool metrics
	PoolUnits = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vnix_pool_units",
			Help: "Number of canonical units interned in the data pool",
		},
	)

	// Scheduler metrics
	SchedulerPasses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vnix_scheduler_passes_total",
			Help: "Total number of scheduler round-robin passes",
		},
	)

	SchedulerPassLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vnix_scheduler_pass_duration_seconds",
			Help:    "Duration of a scheduler pass over the working set",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Dispatch metrics
	MessagesVerified = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vnix_messages_verified_total",
			Help: "Total number of messages that passed verification",
		},
	)

	MessagesRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vnix_messages_rejected_total",
			Help: "Total number of messages rejected at verification",
		},
	)
)

// Register registers all metrics with Prometheus
func Register() error {
	collectors := []prometheus.Collector{
		TasksRegistered,
		TasksCompleted,
		TasksFailed,
		TasksKilled,
		TasksRunning,
		ResultsPending,
		PoolUnits,
		SchedulerPasses,
		SchedulerPassLatency,
		MessagesVerified,
		MessagesRejected,
	}

	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			// Ignore already registered errors
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures a duration and reports it to a histogram.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) ObserveDuration(h prometheus.Histogram) {
	h.Observe(time.Since(t.start).Seconds())
}
