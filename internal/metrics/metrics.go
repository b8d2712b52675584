package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rvtbatch_runs_total",
		Help: "Completed batch runs by command and outcome.",
	}, []string{"command", "outcome"})

	runSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rvtbatch_run_seconds",
		Help:    "Wall-clock duration of the supervision loop.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"command"})
)

// Register installs the collectors in reg (default registry when nil).
// Safe to call more than once.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(runsTotal, runSeconds)
	})
}

// IncRun counts one terminal outcome.
func IncRun(command, outcome string) {
	runsTotal.WithLabelValues(command, outcome).Inc()
}

// ObserveRun records the supervision duration for a command.
func ObserveRun(command string, seconds float64) {
	runSeconds.WithLabelValues(command).Observe(seconds)
}
