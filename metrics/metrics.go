// Package metrics exports normalize/denormalize timings to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	normalizr "github.com/reoring/gonormalizr"
)

// Collector implements normalizr.Observer.
type Collector struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	GateWait          *prometheus.HistogramVec
}

var _ normalizr.Observer = (*Collector)(nil)

// New registers the collector on the default registerer.
func New() *Collector { return NewWithRegistry(prometheus.DefaultRegisterer) }

// NewWithRegistry registers the collector on reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "normalizr",
				Name:      "operations_total",
				Help:      "Total number of normalize and denormalize calls by outcome",
			},
			[]string{"op", "result"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "normalizr",
				Name:      "operation_duration_seconds",
				Help:      "Engine call duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"op"},
		),
		GateWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "normalizr",
				Name:      "gate_wait_seconds",
				Help:      "Time spent waiting for the fingerprint gate",
				Buckets:   []float64{.0001, .001, .01, .1, .5, 1, 5, 30},
			},
			[]string{"op"},
		),
	}
}

// ObserveOperation records one engine call. result is "ok" or the error class.
func (c *Collector) ObserveOperation(op normalizr.Operation, d time.Duration, err error) {
	c.OperationsTotal.WithLabelValues(string(op), result(err)).Inc()
	c.OperationDuration.WithLabelValues(string(op)).Observe(d.Seconds())
}

func (c *Collector) ObserveGateWait(op normalizr.Operation, d time.Duration) {
	c.GateWait.WithLabelValues(string(op)).Observe(d.Seconds())
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if ne, ok := normalizr.AsNormalizationError(err); ok {
		return ne.Class.String()
	}
	if de, ok := normalizr.AsDenormalizationError(err); ok {
		return de.Class.String()
	}
	return normalizr.ClassUnexpected.String()
}
