package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snaketips"

// Metrics holds the collectors shared by every channel.
type Metrics struct {
	reg       prometheus.Registerer
	broadcast *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

// NewMetrics registers the realtime collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reg: reg,
		broadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tips_broadcast_total",
			Help:      "Total number of tip broadcasts.",
		}, []string{"category"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mailbox_dropped_total",
			Help:      "Events discarded from full subscriber mailboxes.",
		}, []string{"stream"}),
	}

	for _, c := range []prometheus.Collector{m.broadcast, m.dropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TipBroadcast counts one periodic tip broadcast.
func (m *Metrics) TipBroadcast(category string) {
	if m == nil {
		return
	}
	m.broadcast.WithLabelValues(category).Inc()
}

func (m *Metrics) dropHook(stream string) func(string) {
	if m == nil {
		return nil
	}
	c := m.dropped.WithLabelValues(stream)
	return func(string) { c.Inc() }
}

func (m *Metrics) trackSubscribers(stream string, count func() int) error {
	if m == nil {
		return nil
	}
	return m.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "active_subscribers",
		Help:        "Number of currently connected realtime subscribers.",
		ConstLabels: prometheus.Labels{"stream": stream},
	}, func() float64 { return float64(count()) }))
}
