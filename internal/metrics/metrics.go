package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_search_results_total",
		Help: "Report queries answered, labelled by source (oauth, public, none).",
	}, []string{"source"})

	FallbackActivations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redditwatch_fallback_activations_total",
		Help: "Times the public fallback was queried because the authenticated source was empty or failed.",
	})

	ReportItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redditwatch_report_items_last",
		Help: "Raw item count behind the most recent report series.",
	})

	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_poll_cycles_total",
		Help: "Status poll cycles, labelled by outcome (ok, skipped).",
	}, []string{"outcome"})

	StatusTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redditwatch_status_transitions_total",
		Help: "Detected changes of the upstream status description.",
	})

	OpenIncidents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redditwatch_open_incidents",
		Help: "Unresolved incidents in the most recent status snapshot.",
	})

	AlertsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redditwatch_alerts_dispatched_total",
		Help: "Transition alerts handed to the notifier, labelled by status (sent, failed).",
	}, []string{"status"})
)
