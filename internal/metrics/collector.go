package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the photo service.
type Metrics struct {
	uploadOutcomes   *prometheus.CounterVec
	rollbackFailures prometheus.Counter
	signedURLs       *prometheus.CounterVec
	signLatency      prometheus.Histogram
	feedPhotos       *prometheus.CounterVec
	exifExtractions  *prometheus.CounterVec
	httpRequests     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		uploadOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photomap_upload_outcomes_total",
				Help: "Upload attempts by final state",
			},
			[]string{"state"},
		),
		rollbackFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "photomap_upload_rollback_failures_total",
				Help: "Uploaded objects that could not be removed after a failed insert",
			},
		),
		signedURLs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photomap_signed_urls_total",
				Help: "Signed URL resolutions by result (cached, signed, failed)",
			},
			[]string{"result"},
		),
		signLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "photomap_sign_latency_ms",
				Help:    "Latency of presigning requests to object storage in milliseconds",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		feedPhotos: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photomap_feed_photos_total",
				Help: "Photos considered by the feed assembler by outcome (included, omitted, empty_url)",
			},
			[]string{"outcome"},
		),
		exifExtractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photomap_exif_gps_total",
				Help: "EXIF GPS extraction attempts by result (found, absent)",
			},
			[]string{"result"},
		),
		httpRequests: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "photomap_http_request_duration_ms",
				Help:    "HTTP request latency in milliseconds",
				Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) RecordUploadOutcome(state string) {
	m.uploadOutcomes.WithLabelValues(state).Inc()
}

func (m *Metrics) IncrementRollbackFailures() {
	m.rollbackFailures.Inc()
}

func (m *Metrics) RecordSignedURL(result string) {
	m.signedURLs.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordSignLatency(milliseconds float64) {
	m.signLatency.Observe(milliseconds)
}

func (m *Metrics) RecordFeedPhoto(outcome string) {
	m.feedPhotos.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordExifExtraction(found bool) {
	result := "absent"
	if found {
		result = "found"
	}
	m.exifExtractions.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, milliseconds float64) {
	m.httpRequests.WithLabelValues(method, route, status).Observe(milliseconds)
}

// UploadOutcomes exposes the counter vector for tests and diagnostics.
func (m *Metrics) UploadOutcomes() *prometheus.CounterVec { return m.uploadOutcomes }

func (m *Metrics) RollbackFailures() prometheus.Counter { return m.rollbackFailures }

func (m *Metrics) SignedURLs() *prometheus.CounterVec { return m.signedURLs }

func (m *Metrics) FeedPhotos() *prometheus.CounterVec { return m.feedPhotos }

func (m *Metrics) ExifExtractions() *prometheus.CounterVec { return m.exifExtractions }
