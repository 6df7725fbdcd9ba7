package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})

	PreferenceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_preference_requests_total",
		Help: "Payment preference creation calls by result.",
	}, []string{"result"})

	WebhooksReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_webhooks_received_total",
		Help: "Payment webhook notifications received.",
	})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_notifications_sent_total",
		Help: "Merchant notifications delivered to the messaging API.",
	})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_notifications_failed_total",
		Help: "Merchant notifications that could not be delivered.",
	})

	PaymentEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_payment_events_published_total",
		Help: "Payment events published to the event stream.",
	})
)
