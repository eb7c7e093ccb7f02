package workbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulcheck_workbook_cache_hits_total",
		Help: "Number of workbook loads served from the in-memory cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulcheck_workbook_cache_misses_total",
		Help: "Number of workbook loads that had to read the file from disk.",
	})
)
