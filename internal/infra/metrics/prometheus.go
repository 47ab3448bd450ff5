package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poster_batches_processed_total",
		Help: "Total number of batches processed, by status",
	}, []string{"status"})

	BatchStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poster_batch_stage_duration_seconds",
		Help:    "Duration of batch pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	ItemsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poster_items_processed_total",
		Help: "Total number of batch items processed, by outcome",
	}, []string{"outcome"})

	ImagesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poster_images_extracted_total",
		Help: "Total number of poster images extracted across all batches",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poster_active_workers",
		Help: "Number of currently active workers processing batches",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poster_retry_total",
		Help: "Total number of batch retries",
	}, []string{"attempt"})
)
