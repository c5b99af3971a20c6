package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	synthRowsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "synth",
		Name:      "rows_generated_total",
		Help:      "Total number of rows written to the raw CSVs broken down by system and table.",
	}, []string{"system", "table"})

	synthStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hr",
		Subsystem: "synth",
		Name:      "step_duration_seconds",
		Help:      "Duration of one generator step (generate, validate, save).",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"system", "result"})
)

func recordStep(system string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	synthStepDuration.WithLabelValues(system, result).Observe(seconds)
}

func recordRows(system, table string, rows int) {
	synthRowsGenerated.WithLabelValues(system, table).Add(float64(rows))
}
