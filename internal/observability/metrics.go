package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwcfg",
			Subsystem: "table",
			Name:      "fetch_total",
			Help:      "Config table fetch attempts by outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hwcfg",
			Subsystem: "table",
			Name:      "fetch_duration_seconds",
			Help:      "Config table fetch duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	validateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwcfg",
			Subsystem: "table",
			Name:      "validate_failures_total",
			Help:      "Structural validation failures by reason.",
		},
		[]string{"reason"},
	)
	tableBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hwcfg",
			Subsystem: "table",
			Name:      "bytes",
			Help:      "Size in bytes of the currently held config table.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(fetchTotal, fetchDuration, validateFailures, tableBytes)
	})
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordFetch(outcome string, duration time.Duration) {
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDuration.Observe(duration.Seconds())
}

func RecordValidateFailure(reason string) {
	validateFailures.WithLabelValues(reason).Inc()
}

func SetTableBytes(n uint32) {
	tableBytes.Set(float64(n))
}
