package soltree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for selector caching and tree compilation.
var (
	selectorCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltree_selector_cache_hits_total",
		Help: "Total number of selector evaluations served from the per-evaluation cache",
	}, []string{"selector"})

	selectorCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltree_selector_cache_misses_total",
		Help: "Total number of selector evaluations that required invoking the selector",
	}, []string{"selector"})

	conditionEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltree_condition_evaluations_total",
		Help: "Total number of Condition.Match calls, by whether the query matched",
	}, []string{"matched"})

	compileFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soltree_compile_failures_total",
		Help: "Total number of configurations that failed to compile into a solution tree",
	})
)

func recordConditionMatch(matched bool) {
	if matched {
		conditionEvaluations.WithLabelValues("true").Inc()
		return
	}
	conditionEvaluations.WithLabelValues("false").Inc()
}
