package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analysesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "simulcheck_analyses_total",
	Help: "Number of analysis runs completed.",
})
