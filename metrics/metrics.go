package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the ticketing collectors.
	Registry = prometheus.NewRegistry()

	purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventers",
			Subsystem: "ticketing",
			Name:      "purchases_total",
			Help:      "Purchase attempts by final state and failure reason.",
		},
		[]string{"state", "reason"},
	)

	ticketsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eventers",
			Subsystem: "ticketing",
			Name:      "tickets_issued_total",
			Help:      "Tickets persisted after a captured payment.",
		},
	)

	scans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventers",
			Subsystem: "ticketing",
			Name:      "scans_total",
			Help:      "Gate scans by outcome and deny reason.",
		},
		[]string{"outcome", "reason"},
	)
)

func init() {
	Registry.MustRegister(purchases, ticketsIssued, scans)
}

func RecordPurchase(state, reason string, tickets int) {
	purchases.WithLabelValues(state, reason).Inc()
	if tickets > 0 {
		ticketsIssued.Add(float64(tickets))
	}
}

func RecordScan(outcome, reason string) {
	scans.WithLabelValues(outcome, reason).Inc()
}

// Handler exposes Registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
