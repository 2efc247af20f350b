package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ViewRequests      *prometheus.CounterVec
	PermissionDenials *prometheus.CounterVec
}

// New registers the application metrics on the given registerer. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ViewRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statutory_application_view_requests_total",
			Help: "Total number of successfully served application view requests",
		}, []string{"view"}),
		PermissionDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statutory_application_permission_denials_total",
			Help: "Total number of application view requests denied by the permission gateway",
		}, []string{"view"}),
	}
}

func (m *Metrics) IncrementViewRequests(view string) {
	m.ViewRequests.WithLabelValues(view).Inc()
}

func (m *Metrics) IncrementPermissionDenied(view string) {
	m.PermissionDenials.WithLabelValues(view).Inc()
}
