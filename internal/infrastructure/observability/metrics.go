// Package observability expone métricas Prometheus de ventas, asesor de IA y HTTP.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/insight"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
)

var (
	_ sales.Recorder          = (*Metrics)(nil)
	_ insight.AttemptRecorder = (*Metrics)(nil)
)

// Metrics colectores de la aplicación sobre un registro propio (no el global),
// así cada test o proceso arma el suyo sin colisiones.
type Metrics struct {
	registry *prometheus.Registry

	salesTotal    *prometheus.CounterVec
	saleDuration  *prometheus.HistogramVec
	saleAmount    prometheus.Counter
	saleLines     prometheus.Histogram
	insightTotal  *prometheus.CounterVec
	insightTiming *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewMetrics registra los colectores bajo el namespace dado (ej. "inventario_pos").
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		salesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sales", Name: "processed_total",
			Help: "Ventas procesadas por resultado.",
		}, []string{"outcome"}),
		saleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sales", Name: "duration_seconds",
			Help:    "Duración de la transacción de venta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		saleAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sales", Name: "amount_total",
			Help: "Monto acumulado de ventas confirmadas.",
		}),
		saleLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sales", Name: "lines",
			Help:    "Líneas por venta confirmada.",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		insightTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "insight", Name: "attempts_total",
			Help: "Intentos contra modelos de IA por proveedor, modelo y resultado.",
		}, []string{"provider", "model", "outcome"}),
		insightTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "insight", Name: "attempt_duration_seconds",
			Help:    "Latencia por intento contra el modelo.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20},
		}, []string{"provider"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Latencia HTTP por método y ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.salesTotal, m.saleDuration, m.saleAmount, m.saleLines,
		m.insightTotal, m.insightTiming,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// ObserveSale implementa sales.Recorder.
func (m *Metrics) ObserveSale(outcome string, elapsed time.Duration, total decimal.Decimal, lines int) {
	m.salesTotal.WithLabelValues(outcome).Inc()
	m.saleDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == sales.OutcomeSuccess {
		f, _ := total.Float64()
		m.saleAmount.Add(f)
		m.saleLines.Observe(float64(lines))
	}
}

// ObserveInsightAttempt implementa insight.AttemptRecorder.
func (m *Metrics) ObserveInsightAttempt(provider, model, outcome string, elapsed time.Duration) {
	m.insightTotal.WithLabelValues(provider, model, outcome).Inc()
	m.insightTiming.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveHTTP registra una petición. route es el patrón (ej. /api/v1/products/:id), no la URL real.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler expone /metrics en formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry acceso al registro (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
