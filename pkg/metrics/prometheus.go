package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes used as the "outcome" label.
const (
	OutcomeComplete  = "complete"   // stored and e-mailed
	OutcomeSavedOnly = "saved_only" // stored, e-mail not sent
	OutcomeEmailOnly = "email_only" // store failed, e-mail sent anyway
	OutcomeFailed    = "failed"
	OutcomeDuplicate = "duplicate"
)

// Competency scores live on the 5-point scale.
var scoreBuckets = []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5}

// Manager manages all Prometheus metrics for the check-in service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Assessment flow
	sessionsStarted   prometheus.Counter
	sessionsAbandoned prometheus.Counter
	sessionsActive    prometheus.Gauge
	responsesRecorded prometheus.Counter
	submissions       *prometheus.CounterVec
	competencyScore   *prometheus.HistogramVec
	scoringLatency    prometheus.Histogram

	// Collaborators
	storeLatency   *prometheus.HistogramVec
	publishLatency prometheus.Histogram
	emailsSent     prometheus.Counter
	emailsFailed   prometheus.Counter

	// Mail worker pool
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "checkin",
		subsystem:        "assessment",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sessionsStarted = auto.NewCounter(m.counter("sessions_started_total", "Total number of assessment sessions started"))
	m.sessionsAbandoned = auto.NewCounter(m.counter("sessions_abandoned_total", "Total number of sessions abandoned before submission"))
	m.sessionsActive = auto.NewGauge(m.gauge("sessions_active", "Sessions currently held by the session store"))
	m.responsesRecorded = auto.NewCounter(m.counter("responses_recorded_total", "Total number of question responses recorded"))
	m.submissions = auto.NewCounterVec(m.counter("submissions_total", "Submissions by outcome"), []string{"outcome"})
	m.competencyScore = auto.NewHistogramVec(
		m.histogram("competency_score", "Distribution of submitted competency averages", scoreBuckets),
		[]string{"competency"},
	)
	m.scoringLatency = auto.NewHistogram(m.histogram("scoring_latency_milliseconds", "Time to compute averages, comparison and radar layout", m.histogramBuckets))

	m.storeLatency = auto.NewHistogramVec(
		m.histogram("store_latency_milliseconds", "Assessment store latency by operation", m.histogramBuckets),
		[]string{"operation"},
	)
	m.publishLatency = auto.NewHistogram(m.histogram("publish_latency_milliseconds", "Latency of publishing the submitted event", m.histogramBuckets))
	m.emailsSent = auto.NewCounter(m.counter("emails_sent_total", "Report e-mails handed to the mailer"))
	m.emailsFailed = auto.NewCounter(m.counter("emails_failed_total", "Report e-mails the mailer rejected"))

	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Number of running mail workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Mail worker processing latency", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counter("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
}

// RecordSessionStarted increments the started sessions counter.
func RecordSessionStarted() { globalManager.sessionsStarted.Inc() }

// RecordSessionAbandoned increments the abandoned sessions counter.
func RecordSessionAbandoned() { globalManager.sessionsAbandoned.Inc() }

// UpdateSessionsActive sets the number of live sessions.
func UpdateSessionsActive(n int) { globalManager.sessionsActive.Set(float64(n)) }

// RecordResponses adds n recorded responses.
func RecordResponses(n int) { globalManager.responsesRecorded.Add(float64(n)) }

// RecordSubmission counts a submission outcome.
func RecordSubmission(outcome string) { globalManager.submissions.WithLabelValues(outcome).Inc() }

// RecordCompetencyScore observes a submitted competency average.
func RecordCompetencyScore(competency string, score float64) {
	globalManager.competencyScore.WithLabelValues(competency).Observe(score)
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// RecordStoreLatency records assessment store latency for an operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordPublishLatency records event publish latency.
func RecordPublishLatency(latencyMs float64) { globalManager.publishLatency.Observe(latencyMs) }

// RecordEmailSent increments the sent e-mails counter.
func RecordEmailSent() { globalManager.emailsSent.Inc() }

// RecordEmailFailed increments the failed e-mails counter.
func RecordEmailFailed() { globalManager.emailsFailed.Inc() }

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
