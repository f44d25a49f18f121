package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	CampaignsCreated       prometheus.Counter
	WeekSchedulesGenerated prometheus.Counter
	LoginAttempts          *prometheus.CounterVec
	GodCredentialRequests  *prometheus.CounterVec
	Uploads                *prometheus.CounterVec
	EmailsSent             *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge
}

// New registers all metrics on the default Prometheus registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		CampaignsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "printfast_campaigns_created_total",
			Help: "Total number of campaigns created",
		}),
		WeekSchedulesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "printfast_week_schedules_generated_total",
			Help: "Total number of week schedules generated or regenerated",
		}),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printfast_login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"}, // success, failed
		),
		GodCredentialRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printfast_god_credential_requests_total",
				Help: "Super admin credential recovery requests",
			},
			[]string{"result"}, // sent, disabled, rate_limited, failed
		),
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printfast_uploads_total",
				Help: "Total number of stored uploads",
			},
			[]string{"folder"},
		),
		EmailsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printfast_emails_sent_total",
				Help: "Total number of emails handed to the mail provider",
			},
			[]string{"kind"},
		),

		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			path := c.Path() // route pattern, e.g. /api/v1/campaigns/:id
			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return nil
		}
	}
}

// RecordCampaignCreated increments the campaigns created counter
func (m *Metrics) RecordCampaignCreated() {
	if m == nil {
		return
	}
	m.CampaignsCreated.Inc()
}

// RecordScheduleGenerated increments the week schedule counter
func (m *Metrics) RecordScheduleGenerated() {
	if m == nil {
		return
	}
	m.WeekSchedulesGenerated.Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	if m == nil {
		return
	}
	result := "failed"
	if success {
		result = "success"
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordGodCredentialRequest counts a recovery request by outcome
func (m *Metrics) RecordGodCredentialRequest(result string) {
	if m == nil {
		return
	}
	m.GodCredentialRequests.WithLabelValues(result).Inc()
}

// RecordUpload counts a stored upload
func (m *Metrics) RecordUpload(folder string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(folder).Inc()
}

// RecordEmailSent counts an email by kind
func (m *Metrics) RecordEmailSent(kind string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(kind).Inc()
}

// UpdateDBConnections updates the open database connections gauge
func (m *Metrics) UpdateDBConnections(count int) {
	if m == nil {
		return
	}
	m.DBConnections.Set(float64(count))
}
