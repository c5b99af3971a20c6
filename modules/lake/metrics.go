package lake

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lakeRowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "lake",
		Name:      "rows_written_total",
		Help:      "Rows written to Parquet, by system.",
	}, []string{"system"})

	lakeTableBuild = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hr",
		Subsystem: "lake",
		Name:      "table_build_seconds",
		Help:      "Duration of one CSV to Parquet conversion.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"system", "result"})

	lakeQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "lake",
		Name:      "queries_total",
		Help:      "Ad-hoc lake queries, by result.",
	}, []string{"result"})

	lakeQualityIssues = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hr",
		Subsystem: "lake",
		Name:      "quality_issues",
		Help:      "Issues found by the last quality run, by severity.",
	}, []string{"severity"})
)

func recordBuild(system, result string, rows int64, d time.Duration) {
	lakeTableBuild.WithLabelValues(system, result).Observe(d.Seconds())
	if rows > 0 {
		lakeRowsWritten.WithLabelValues(system).Add(float64(rows))
	}
}

func recordQuery(err error) {
	if err != nil {
		lakeQueries.WithLabelValues("error").Inc()
		return
	}
	lakeQueries.WithLabelValues("ok").Inc()
}
