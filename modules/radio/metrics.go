package radio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "radiomcp"

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "tool_calls_total",
		Help:      "Tool calls by tool and result.",
	}, []string{"tool", "result"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "tool_duration_seconds",
		Help:      "Time spent handling a tool call.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})
)
