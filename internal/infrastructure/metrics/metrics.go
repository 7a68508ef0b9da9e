// Package metrics expone las métricas Prometheus del servicio: HTTP y de negocio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/leads-api/internal/application/ports"
)

var _ ports.MetricsRecorder = (*Metrics)(nil)

// Metrics contadores e histogramas registrados en un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Negocio
	LeadsCreated        prometheus.Counter
	LeadsConverted      *prometheus.CounterVec
	PlaceholderRevenues *prometheus.CounterVec

	// Caché
	CacheRequests *prometheus.CounterVec
}

// New crea y registra todas las métricas, más las del runtime de Go y del proceso.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latencia de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LeadsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Leads creados",
		}),
		LeadsConverted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_converted_total",
				Help: "Leads que pasaron a Converted, por origen (create, update, bulk)",
			},
			[]string{"source"},
		),
		PlaceholderRevenues: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_placeholder_revenue_total",
				Help: "Conversiones sin valor conocido que recibieron ingreso provisional",
			},
			[]string{"source"},
		),
		CacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_requests_total",
				Help: "Consultas a la caché del tablero por resultado (hit, miss)",
			},
			[]string{"result"},
		),
	}
}

// Registry registro para tests y para el handler de exposición.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler HTTP de exposición (/metrics).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// LeadCreated implementa ports.MetricsRecorder.
func (m *Metrics) LeadCreated() { m.LeadsCreated.Inc() }

// LeadConverted implementa ports.MetricsRecorder.
func (m *Metrics) LeadConverted(source string) { m.LeadsConverted.WithLabelValues(source).Inc() }

// PlaceholderRevenue implementa ports.MetricsRecorder.
func (m *Metrics) PlaceholderRevenue(source string) {
	m.PlaceholderRevenues.WithLabelValues(source).Inc()
}

// DashboardCache implementa ports.MetricsRecorder.
func (m *Metrics) DashboardCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// Middleware registra cada petición con la ruta declarada.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		method := c.Method()

		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
