package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// Methods are safe on a nil receiver so usecases can run without metrics.
type Metrics struct {
	IdentitiesRegistered *prometheus.CounterVec
	Logins               *prometheus.CounterVec
	PostsCreated         prometheus.Counter
	CandidateSteps       *prometheus.CounterVec
	CertificateUploads   *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New creates and registers all metrics on reg (prometheus.DefaultRegisterer in main)
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IdentitiesRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_identities_registered_total",
			Help: "Identities created, by path (signup, issued, superuser)",
		}, []string{"path"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		PostsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "intake_posts_created_total",
			Help: "Total number of posts created",
		}),
		CandidateSteps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_candidate_steps_total",
			Help: "Candidate wizard steps saved, by step",
		}, []string{"step"}),
		CertificateUploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_certificate_uploads_total",
			Help: "Certificate uploads by result",
		}, []string{"result"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncIdentityRegistered(path string) {
	if m == nil {
		return
	}
	m.IdentitiesRegistered.WithLabelValues(path).Inc()
}

// IncLogin records a login attempt; result is success, failure or blocked
func (m *Metrics) IncLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPostCreated() {
	if m == nil {
		return
	}
	m.PostsCreated.Inc()
}

func (m *Metrics) IncCandidateStep(step string) {
	if m == nil {
		return
	}
	m.CandidateSteps.WithLabelValues(step).Inc()
}

func (m *Metrics) IncCertificateUpload(result string) {
	if m == nil {
		return
	}
	m.CertificateUploads.WithLabelValues(result).Inc()
}

// GinMiddleware observes request latency labelled by the matched route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
