// Package metrics counts what one generation run produced and skipped.
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "uimeta"

	SkippedPathItem  = "path_item"
	SkippedOperation = "operation"
	SkippedParameter = "parameter"
)

// Metrics is safe to use as a nil pointer, which disables collection.
type Metrics struct {
	Operations prometheus.Counter
	Resources  prometheus.Gauge
	Skipped    *prometheus.CounterVec
}

// New creates the run metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of operations described in the generated metadata",
		}),
		Resources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resources",
			Help:      "Number of resources in the generated metadata",
		}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_nodes_total",
			Help:      "Malformed document nodes left out of the generated metadata",
		}, []string{"kind"}), // kind: path_item, operation
	}

	for _, c := range []prometheus.Collector{m.Operations, m.Resources, m.Skipped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveOperation() {
	if m == nil {
		return
	}
	m.Operations.Inc()
}

func (m *Metrics) ObserveResources(n int) {
	if m == nil {
		return
	}
	m.Resources.Set(float64(n))
}

func (m *Metrics) ObserveSkipped(kind string) {
	if m == nil {
		return
	}
	m.Skipped.WithLabelValues(kind).Inc()
}

// LogSummary logs every sample gathered from g at info level.
func LogSummary(logger *slog.Logger, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	for _, f := range families {
		for _, s := range f.GetMetric() {
			attrs := []any{"metric", f.GetName()}
			for _, l := range s.GetLabel() {
				attrs = append(attrs, l.GetName(), l.GetValue())
			}
			switch {
			case s.GetCounter() != nil:
				attrs = append(attrs, "value", s.GetCounter().GetValue())
			case s.GetGauge() != nil:
				attrs = append(attrs, "value", s.GetGauge().GetValue())
			}
			logger.Info("run summary", attrs...)
		}
	}
	return nil
}
