package consumer

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// consumerMetrics tracks delivery lifecycle statistics. A nil receiver is
// valid and turns every method into a no-op, so metrics stay optional.
type consumerMetrics struct {
	mu         sync.Mutex
	registerer prometheus.Registerer
	registered bool

	deliveriesTotal  *prometheus.CounterVec
	resolutionsTotal *prometheus.CounterVec
	pendingGauge     prometheus.Gauge
	handlerSeconds   prometheus.Histogram
}

func newConsumerCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func newConsumerMetrics(namespace string, registerer prometheus.Registerer) *consumerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &consumerMetrics{
		registerer:      registerer,
		deliveriesTotal: newConsumerCounterVec(namespace, "deliveries_total", "Total number of dispatched deliveries by outcome", []string{"queue", "outcome"}),
		resolutionsTotal: newConsumerCounterVec(namespace, "resolutions_total", "Total number of resolved deliveries by decision", []string{"queue", "decision"}),
		pendingGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "pending_deliveries",
			Help:      "Number of deliveries dispatched but not yet resolved",
		}),
		handlerSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "handler_duration_seconds",
			Help:      "Time spent executing the delivery handler",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *consumerMetrics) Register() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.deliveriesTotal,
		m.resolutionsTotal,
		m.pendingGauge,
		m.handlerSeconds,
	}
	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

func (m *consumerMetrics) observeOutcome(queue string, o Outcome) {
	if m == nil {
		return
	}
	m.deliveriesTotal.WithLabelValues(queue, outcomeLabel(o)).Inc()
}

func (m *consumerMetrics) observeResolution(queue string, ack, requeue bool) {
	if m == nil {
		return
	}
	decision := "ack"
	if !ack {
		decision = "reject"
		if requeue {
			decision = "requeue"
		}
	}
	m.resolutionsTotal.WithLabelValues(queue, decision).Inc()
}

func (m *consumerMetrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pendingGauge.Set(float64(n))
}

func (m *consumerMetrics) observeHandlerDuration(seconds float64) {
	if m == nil {
		return
	}
	m.handlerSeconds.Observe(seconds)
}
