package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	unitAdvice    *prometheus.CounterVec
	unitFailures  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	lastPrice     *prometheus.GaugeVec
	lastScore     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watchpull_runs_total",
				Help: "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		unitAdvice: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watchpull_unit_advice_total",
				Help: "Total number of completed analysis units by advice",
			},
			[]string{"advice"},
		),
		unitFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watchpull_unit_failures_total",
				Help: "Total number of failed analysis units",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watchpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		phaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "watchpull_phase_duration_seconds",
				Help:    "Duration of pipeline phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "watchpull_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "watchpull_last_score",
				Help: "Last analysis score for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordRun records a completed pipeline run.
func (r *Recorder) RecordRun(outcome string) {
	r.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordUnitAdvice records one completed unit by advice class.
func (r *Recorder) RecordUnitAdvice(advice string) {
	r.unitAdvice.WithLabelValues(advice).Inc()
}

// RecordUnitFailure records one failed analysis unit.
func (r *Recorder) RecordUnitFailure(symbol string) {
	r.unitFailures.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPhaseLatency records phase duration in seconds.
func (r *Recorder) RecordPhaseLatency(phase string, seconds float64) {
	r.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLastScore records the last analysis score for a symbol.
func (r *Recorder) RecordLastScore(symbol string, score float64) {
	r.lastScore.WithLabelValues(symbol).Set(score)
}
