package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PositionsCreated  prometheus.Counter
	DeadlinesFired    *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
}

// New registers the position metrics on the given registerer. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PositionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "statutory_positions_created_total",
			Help: "Total number of positions created",
		}),
		DeadlinesFired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statutory_position_deadlines_fired_total",
			Help: "Total number of position boundary deadlines fired",
		}, []string{"kind"}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statutory_position_status_transitions_total",
			Help: "Total number of derived position status transitions",
		}, []string{"to"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.PositionsCreated.Inc()
}

func (m *Metrics) IncrementDeadlineFired(kind string) {
	m.DeadlinesFired.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementStatusTransition(to string) {
	m.StatusTransitions.WithLabelValues(to).Inc()
}
