package assistant

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "assistant",
		Name:      "tool_calls_total",
		Help:      "Tool executions requested by the model, by tool and result.",
	}, []string{"tool", "result"})

	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hr",
		Subsystem: "assistant",
		Name:      "llm_request_duration_seconds",
		Help:      "Latency of chat completion requests.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"result"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "assistant",
		Name:      "cache_lookups_total",
		Help:      "Chat answer cache lookups, by result.",
	}, []string{"result"})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func recordToolCall(tool string, err error) {
	toolCalls.WithLabelValues(tool, result(err)).Inc()
}

func observeCompletion(d time.Duration, err error) {
	completionDuration.WithLabelValues(result(err)).Observe(d.Seconds())
}

func recordCache(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}
