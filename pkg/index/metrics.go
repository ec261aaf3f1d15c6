package index

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what an index does.
type Metrics struct {
	// Loads counts listing loads by source: memory, store or driver.
	Loads *prometheus.CounterVec

	// Mutations counts add and forget operations that changed the listing.
	Mutations *prometheus.CounterVec

	Saves prometheus.Counter
}

// NewMetrics produces index metrics and registers them with reg, unless reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetidx_listing_loads_total",
				Help: "Number of container listing loads by source",
			},
			[]string{"container", "source"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetidx_listing_mutations_total",
				Help: "Number of incremental listing updates",
			},
			[]string{"container", "op"},
		),
		Saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assetidx_listing_saves_total",
			Help: "Number of listings written to the backing store",
		}),
	}
	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.Loads, m.Mutations, m.Saves} {
		err := reg.Register(c)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) load(container, source string) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(container, source).Inc()
}

func (m *Metrics) mutation(container, op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(container, op).Inc()
}

func (m *Metrics) save() {
	if m == nil {
		return
	}
	m.Saves.Inc()
}
