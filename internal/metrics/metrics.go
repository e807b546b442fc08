// Package metrics holds the process's prometheus collectors. The worker
// serves them via promhttp on the debug address when one is configured.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPCOutbound counts performed remote calls by method and outcome.
	RPCOutbound = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_rpc_outbound_total",
		Help: "Outbound remote calls by method and outcome.",
	}, []string{"method", "outcome"})

	// RPCInbound counts received remote calls by method.
	RPCInbound = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_rpc_inbound_total",
		Help: "Inbound remote calls by method.",
	}, []string{"method"})

	// Notifications counts client UI events by method and outcome.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_notifications_total",
		Help: "Client UI notifications by method and outcome.",
	}, []string{"method", "outcome"})
)

func init() {
	prometheus.MustRegister(RPCOutbound, RPCInbound, Notifications)
}

// Handler returns the HTTP handler exposing all registered collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}
