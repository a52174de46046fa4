package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Event names counted by pabot_events_total.
const (
	ListingFetched     = "listing_fetched"
	ListingFailed      = "listing_failed"
	ArticleFetched     = "article_fetched"
	ArticleFailed      = "article_failed"
	ArticleStale       = "article_stale"
	DigestBuilt        = "digest_built"
	DigestEmpty        = "digest_empty"
	GenerationFailed   = "generation_failed"
	TelegramSent       = "telegram_message_sent"
	TelegramFailed     = "telegram_message_failed"
	MailNotification   = "mail_notification"
	SheetsNotification = "sheets_notification"
)

type Metrics struct {
	mu sync.RWMutex

	events   *prometheus.CounterVec
	duration prometheus.Histogram

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

// Global is registered with the default Prometheus registry and served on /metrics.
var Global = New(prometheus.DefaultRegisterer)

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pabot_events_total",
			Help: "Pipeline and delivery events by type.",
		}, []string{"event"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pabot_digest_duration_seconds",
			Help:    "Wall time of one category digest run.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		}),
		IsHealthy: true,
	}
	if reg != nil {
		reg.MustRegister(m.events, m.duration)
	}
	return m
}

func (m *Metrics) Inc(event string) {
	m.events.WithLabelValues(event).Inc()
}

// Counter exposes the collector for one event, mostly for tests.
func (m *Metrics) Counter(event string) prometheus.Counter {
	return m.events.WithLabelValues(event)
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.duration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"digest_runs":                m.ProcessingCount,
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
