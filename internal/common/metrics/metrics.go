// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of provider fetches by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	GenerationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_generation_runs_total",
			Help: "Total number of itinerary orchestration runs by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "itinerary_generation_duration_seconds",
			Help: "Duration of one itinerary orchestration run in seconds",
		},
	)

	ChatPatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_patches_total",
			Help: "Total number of chat-proposed itinerary patches by outcome",
		},
		[]string{"outcome"},
	)

	PreferencesExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preferences_extracted_total",
			Help: "Total number of preferences extracted from chat messages",
		},
	)
)
