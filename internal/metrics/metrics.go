// Package metrics exposes grading and request counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	Calculations    *prometheus.CounterVec
	CalcDuration    prometheus.Histogram
	FinalGrade      prometheus.Histogram
	EvaluationSaves prometheus.Counter
	Logins          *prometheus.CounterVec
}

// New registers all collectors on a private registry so tests can create as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ipa",
			Name:      "calculations_total",
			Help:      "Grade calculations by project method.",
		}, []string{"method"}),
		CalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ipa",
			Name:      "calculation_duration_seconds",
			Help:      "Time spent scoring a full rubric.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		FinalGrade: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ipa",
			Name:      "final_grade",
			Help:      "Distribution of calculated final grades.",
			Buckets:   []float64{1, 2, 3, 4, 4.5, 5, 5.5, 6},
		}),
		EvaluationSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipa",
			Name:      "evaluation_saves_total",
			Help:      "Saved criterion evaluations.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ipa",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		m.Calculations, m.CalcDuration, m.FinalGrade, m.EvaluationSaves, m.Logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCalculation records one scoring run.
func (m *Metrics) ObserveCalculation(method string, started time.Time, final float64) {
	if method == "" {
		method = "none"
	}
	m.Calculations.WithLabelValues(method).Inc()
	m.CalcDuration.Observe(time.Since(started).Seconds())
	m.FinalGrade.Observe(final)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
