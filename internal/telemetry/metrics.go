package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"podnet/internal/domain"
)

var (
	// Operations counts editor operations by outcome
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "podnet",
			Name:      "operations_total",
			Help:      "Total number of topology edit operations",
		},
		[]string{"op", "result"},
	)

	// Rejections counts rejected operations by reason code
	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "podnet",
			Name:      "rejections_total",
			Help:      "Total number of rejected topology edit operations",
		},
		[]string{"op", "reason"},
	)

	// Entities tracks the current size of the design
	Entities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "podnet",
			Name:      "entities",
			Help:      "Number of hosts, networks and connections in the current design",
		},
		[]string{"kind"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(Operations)
		prometheus.DefaultRegisterer.Register(Rejections)
		prometheus.DefaultRegisterer.Register(Entities)
	})
}

// RecordOperation counts one operation and, on failure, its reason code.
func RecordOperation(op string, err error) {
	if err == nil {
		Operations.WithLabelValues(op, "ok").Inc()
		return
	}
	Operations.WithLabelValues(op, "rejected").Inc()
	Rejections.WithLabelValues(op, domain.ReasonCode(err)).Inc()
}

// SetEntityCounts updates the design size gauges.
func SetEntityCounts(hosts, networks, connections int) {
	Entities.WithLabelValues("hosts").Set(float64(hosts))
	Entities.WithLabelValues("networks").Set(float64(networks))
	Entities.WithLabelValues("connections").Set(float64(connections))
}
