package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	graphBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "graph",
		Name:      "batches_total",
		Help:      "UNWIND batches sent to Neo4j, by kind and result.",
	}, []string{"kind", "result"})

	graphRowsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "graph",
		Name:      "rows_loaded_total",
		Help:      "Nodes and relationships merged into Neo4j, by label or type.",
	}, []string{"kind", "name"})

	graphAnalytics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "graph",
		Name:      "analytics_runs_total",
		Help:      "Graph algorithm runs, by algorithm and result.",
	}, []string{"algorithm", "result"})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func recordBatch(kind string, err error) {
	graphBatches.WithLabelValues(kind, result(err)).Inc()
}

func recordLoaded(kind, name string, n int) {
	graphRowsLoaded.WithLabelValues(kind, name).Add(float64(n))
}

func recordAnalytics(algorithm string, err error) {
	graphAnalytics.WithLabelValues(algorithm, result(err)).Inc()
}
