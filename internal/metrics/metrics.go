package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups the counters the order pipeline reports into.
type Registry struct {
	OrdersPlaced    prometheus.Counter
	OrdersCanceled  prometheus.Counter
	WebhookEvents   *prometheus.CounterVec
	CheckoutTasks   *prometheus.CounterVec
	CheckoutSeconds prometheus.Histogram
}

func New() *Registry {
	m := &Registry{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stitchline",
			Name:      "orders_placed_total",
			Help:      "Orders successfully created.",
		}),
		OrdersCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stitchline",
			Name:      "orders_canceled_total",
			Help:      "Orders moved to canceled state.",
		}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stitchline",
			Name:      "payment_webhook_events_total",
			Help:      "Payment webhook deliveries by event and outcome.",
		}, []string{"event", "outcome"}),
		CheckoutTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stitchline",
			Name:      "checkout_tasks_total",
			Help:      "Checkout tasks by terminal state.",
		}, []string{"state"}),
		CheckoutSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stitchline",
			Name:      "checkout_task_duration_seconds",
			Help:      "Checkout task execution time.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
	prometheus.MustRegister(
		m.OrdersPlaced,
		m.OrdersCanceled,
		m.WebhookEvents,
		m.CheckoutTasks,
		m.CheckoutSeconds,
	)
	return m
}

// NewUnregistered builds a Registry without touching the default registerer.
// Tests use it to avoid duplicate-registration panics across cases.
func NewUnregistered() *Registry {
	m := &Registry{
		OrdersPlaced:   prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_placed_total"}),
		OrdersCanceled: prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_canceled_total"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
		}, []string{"event", "outcome"}),
		CheckoutTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_tasks_total",
		}, []string{"state"}),
		CheckoutSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "checkout_task_duration_seconds",
		}),
	}
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
