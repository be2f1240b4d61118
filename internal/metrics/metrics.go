package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vicenergy_records_loaded",
			Help: "Records in the loaded dataset",
		},
	)

	FiguresRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicenergy_figures_rendered_total",
			Help: "Chart figures produced, by chart and output format",
		},
		[]string{"chart", "format"},
	)

	ChartErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicenergy_chart_errors_total",
			Help: "Chart productions that fell back to a placeholder",
		},
		[]string{"chart"},
	)

	FigureLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vicenergy_figure_latency_seconds",
			Help:    "Time to produce a chart figure",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chart"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vicenergy_active_sessions",
			Help: "Sessions holding selection state",
		},
	)

	BannerSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicenergy_banner_served_total",
			Help: "Intro banner responses by where the image came from",
		},
		[]string{"source"},
	)
)
