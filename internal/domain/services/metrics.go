package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// mutationsTotal counts mutations by target, operation and outcome.
	// Outcomes: "success", "validation", "not_found", "forbidden", "conflict", "error"
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biblio_mutations_total",
		Help: "Total mutations by target, operation and result",
	}, []string{"target", "op", "result"})

	mutationRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biblio_mutation_retries_total",
		Help: "Mutations retried after losing a compare-and-swap",
	}, []string{"target", "op"})

	mutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biblio_mutation_duration_seconds",
		Help:    "Mutation latency including retries",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"target", "op"})

	sideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biblio_side_effect_failures_total",
		Help: "Post-commit side effects that failed (index, cache, events)",
	}, []string{"effect"})

	reindexedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biblio_reindexed_entities_total",
		Help: "Entities pushed to the search index by reindex runs",
	})
)
