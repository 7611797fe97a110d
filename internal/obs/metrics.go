package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workflowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Total approval-workflow state transitions.",
		},
		[]string{"entity", "action"},
	)

	workflowRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_rejections_total",
			Help: "Workflow transitions refused by precondition checks.",
		},
		[]string{"entity", "action"},
	)

	notificationsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_emitted_total",
			Help: "Notification records created by workflow events.",
		},
	)
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(workflowTransitions, workflowRejections, notificationsEmitted)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordTransition(entity, action string) {
	workflowTransitions.WithLabelValues(entity, action).Inc()
}

func RecordRejectedTransition(entity, action string) {
	workflowRejections.WithLabelValues(entity, action).Inc()
}

func RecordNotification() {
	notificationsEmitted.Inc()
}
