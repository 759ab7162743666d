package layouts

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors of a Renderer. A nil *metrics
// records nothing.
type metrics struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	passErrors     *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer, namespace string) (*metrics, error) {
	m := &metrics{
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of render calls by outcome and status",
		}, []string{"outcome", "status"}),

		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of render calls in seconds, both passes included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),

		passErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_pass_errors_total",
			Help:      "Total number of failed render passes by pass",
		}, []string{"pass"}),
	}

	for _, c := range []prometheus.Collector{m.rendersTotal, m.renderDuration, m.passErrors} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *metrics) observe(outcome string, err error, d time.Duration) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.rendersTotal.WithLabelValues(outcome, status).Inc()
	m.renderDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *metrics) passFailed(pass string) {
	if m == nil {
		return
	}
	m.passErrors.WithLabelValues(pass).Inc()
}
