// Package metrics exports wellness counters to Prometheus.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mikecbrant/glowcycle/internal/wellness"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "glowcycle"

// PrometheusObserver implements wellness.Observer.
type PrometheusObserver struct {
	messages           *prometheus.CounterVec
	skipped            *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	generationErrors   *prometheus.CounterVec
}

var _ wellness.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the wellness metrics on reg; a nil reg uses
// the default registerer.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Support messages returned, by source.",
		}, []string{"source"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Stored records skipped while building a user context, by reason.",
		}, []string{"reason"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of message generator calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		generationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Failed message generator calls.",
		}, []string{"source"}),
	}
	if err := register(reg, &o.messages, &o.skipped, &o.generationErrors); err != nil {
		return nil, err
	}
	if err := reg.Register(o.generationDuration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register wellness metric: %w", err)
		}
		o.generationDuration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return o, nil
}

// register adds each counter, adopting an already registered collector.
func register(reg prometheus.Registerer, vecs ...**prometheus.CounterVec) error {
	for _, v := range vecs {
		if err := reg.Register(*v); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return fmt.Errorf("register wellness metric: %w", err)
			}
			*v = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return nil
}

// RecordSkipped counts one skipped record.
func (o *PrometheusObserver) RecordSkipped(reason string) {
	if o == nil {
		return
	}
	o.skipped.WithLabelValues(reason).Inc()
}

// RecordMessage counts one returned message.
func (o *PrometheusObserver) RecordMessage(source string) {
	if o == nil {
		return
	}
	o.messages.WithLabelValues(source).Inc()
}

// ObserveGeneration tracks generator latency and failures.
func (o *PrometheusObserver) ObserveGeneration(source string, seconds float64, err error) {
	if o == nil {
		return
	}
	o.generationDuration.WithLabelValues(source).Observe(seconds)
	if err != nil {
		o.generationErrors.WithLabelValues(source).Inc()
	}
}
