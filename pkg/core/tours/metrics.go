package tours

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts fetches, change notifications and mutations. A nil *Metrics
// records nothing.
type Metrics struct {
	fetches       *prometheus.CounterVec
	notifications prometheus.Counter
	mutations     *prometheus.CounterVec
}

// NewMetrics creates the tour list counters and registers them on reg when it is non-nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tourdesk",
			Name:      "tour_fetches_total",
			Help:      "Full tour list fetches by result (applied, stale, error).",
		}, []string{"result"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tourdesk",
			Name:      "change_notifications_total",
			Help:      "Change notifications received while subscribed.",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tourdesk",
			Name:      "mutations_total",
			Help:      "Mutation calls by operation and result (success, error, invalid).",
		}, []string{"op", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.fetches, m.notifications, m.mutations)
	}
	return m
}

func (m *Metrics) fetch(result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
}

func (m *Metrics) notification() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

func (m *Metrics) mutation(op, result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, result).Inc()
}
