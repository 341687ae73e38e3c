package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalytics_reports_total",
			Help: "Total number of instructor report computations by outcome",
		},
		[]string{"outcome"},
	)
	reportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evalytics_report_duration_seconds",
			Help:    "Duration of instructor report computations",
			Buckets: prometheus.DefBuckets,
		},
	)
	reportEvaluations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evalytics_report_evaluations",
			Help:    "Number of evaluations analyzed per report",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
