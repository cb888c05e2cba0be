// Package metrics constructs the metrics the application will track.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests",
	}, []string{"method", "status"})

	duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "API request duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method"})

	errorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "errors_total",
		Help:      "Total number of API requests that returned an error",
	})

	panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "panics_total",
		Help:      "Total number of API requests that panicked",
	})

	blocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "blocks_total",
		Help:      "Total number of blocks added to the chain by origin",
	}, []string{"origin"})

	rejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "blocks_rejected_total",
		Help:      "Total number of peer blocks that didn't link to the chain",
	})

	replaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "replaced_total",
		Help:      "Total number of consensus rounds that replaced the chain",
	})
)

// Block origins.
const (
	OriginMined = "mined"
	OriginPeer  = "peer"
)

// AddRequest records a completed request.
func AddRequest(method string, statusCode int, seconds float64) {
	requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	duration.WithLabelValues(method).Observe(seconds)
}

// AddError increments the error count.
func AddError() {
	errorsTotal.Inc()
}

// AddPanic increments the panic count.
func AddPanic() {
	panics.Inc()
}

// AddBlock increments the count of blocks added from the origin.
func AddBlock(origin string) {
	blocks.WithLabelValues(origin).Inc()
}

// AddRejectedBlock increments the count of rejected peer blocks.
func AddRejectedBlock() {
	rejected.Inc()
}

// AddChainReplaced increments the count of chain replacements.
func AddChainReplaced() {
	replaced.Inc()
}

// =============================================================================

// Ledger is the behavior required to report the size of the ledger.
type Ledger interface {
	QueryChainLength() int
	QueryMempoolLength() int
}

// RegisterLedger registers gauges that read the chain and mempool sizes
// whenever metrics are collected. Registering a second time is not an error.
func RegisterLedger(reg prometheus.Registerer, ledger Ledger) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "length",
			Help:      "Number of blocks in the chain",
		}, func() float64 { return float64(ledger.QueryChainLength()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "length",
			Help:      "Number of pending transactions",
		}, func() float64 { return float64(ledger.QueryMempoolLength()) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}

	return nil
}
