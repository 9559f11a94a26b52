package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/csv2json/internal/core"
)

// Conversion outcomes used as the "outcome" label.
const (
	outcomeSuccess    = "success"
	outcomeInvalid    = "invalid"
	outcomeParseError = "parse_error"
	outcomeTooLarge   = "too_large"
	outcomeBusy       = "busy"
	outcomeError      = "error"
)

type metrics struct {
	conversions *prometheus.CounterVec
	rows        prometheus.Counter
	duration    prometheus.Histogram
	inputBytes  prometheus.Histogram
}

func newMetrics(reg *prometheus.Registry, limiter *core.Limiter) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "csv2json_conversions_in_flight",
		Help: "Number of conversions currently holding a limiter slot",
	}, func() float64 { return float64(limiter.ActiveCount()) })

	return &metrics{
		conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "csv2json_conversions_total",
			Help: "Total number of conversion requests by outcome",
		}, []string{"outcome"}),
		rows: factory.NewCounter(prometheus.CounterOpts{
			Name: "csv2json_rows_converted_total",
			Help: "Total number of rows returned by successful conversions",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "csv2json_conversion_duration_seconds",
			Help:    "Time spent parsing CSV content",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		inputBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "csv2json_input_bytes",
			Help:    "Size of the csv_content field of accepted requests",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

func (m *metrics) observe(outcome string) {
	m.conversions.WithLabelValues(outcome).Inc()
}
