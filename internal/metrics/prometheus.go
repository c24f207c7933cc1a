package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DatasetLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesellers_dataset_loads_total",
			Help: "Dataset loads by outcome",
		},
		[]string{"status"},
	)

	RowsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "codesellers_dataset_rows_loaded",
			Help: "Records held by the current dataset",
		},
	)

	RowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesellers_dataset_rows_skipped_total",
			Help: "Rows skipped during normalization",
		},
		[]string{"reason"},
	)

	SubdivisionFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codesellers_subdivision_fallbacks_total",
			Help: "Records whose subdivision code came from the region fallback",
		},
	)

	RankDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codesellers_rank_duration_seconds",
			Help:    "Relevance ranking duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
	)

	RankTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesellers_rank_total",
			Help: "Ranking calls by mode",
		},
		[]string{"mode"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codesellers_query_duration_seconds",
			Help:    "Question answering duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesellers_query_total",
			Help: "Total number of questions processed",
		},
		[]string{"status"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesellers_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesellers_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesellers_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(DatasetLoads)
		prometheus.MustRegister(RowsLoaded)
		prometheus.MustRegister(RowsSkipped)
		prometheus.MustRegister(SubdivisionFallbacks)
		prometheus.MustRegister(RankDuration)
		prometheus.MustRegister(RankTotal)
		prometheus.MustRegister(QueryDuration)
		prometheus.MustRegister(QueryTotal)
		prometheus.MustRegister(LLMTokensUsed)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
