// Package metrics declares the Prometheus collectors shared by the client
// and the server. Register must be called once per process.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var CacheLookupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notiapp_cache_lookups_total",
		Help: "Cache lookups performed by the network mediator",
	},
	[]string{"strategy", "result"},
)

var FetchFallbacksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notiapp_fetch_fallbacks_total",
		Help: "Requests answered from a fallback (cache or synthesized offline response)",
	},
	[]string{"strategy", "fallback"},
)

var SyncAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notiapp_sync_attempts_total",
		Help: "Note sync attempts by trigger and outcome",
	},
	[]string{"trigger", "outcome"},
)

var NotificationsShownTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "notiapp_notifications_shown_total",
		Help: "Push notifications rendered by the worker",
	},
)

var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notiapp_http_requests_total",
		Help: "HTTP requests received by the API server",
	},
	[]string{"endpoint", "status", "method"},
)

var PushSendsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notiapp_push_sends_total",
		Help: "Web Push deliveries attempted by the server",
	},
	[]string{"status"},
)

// Register registers every collector with the given registerer. Passing nil
// uses the default registerer.
func Register(r prometheus.Registerer) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	r.MustRegister(
		CacheLookupsTotal,
		FetchFallbacksTotal,
		SyncAttemptsTotal,
		NotificationsShownTotal,
		HTTPRequestsTotal,
		PushSendsTotal,
	)
}
