// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voice_archive"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Transcription metrics
	TranscriptionsTotal   *prometheus.CounterVec
	TranscriptionErrors   *prometheus.CounterVec
	TranscriptionDuration *prometheus.HistogramVec
	AudioBytesReceived    prometheus.Counter

	// Segmentation metrics
	SegmentsProduced prometheus.Counter
	FallbackSegments prometheus.Counter
	EmptyTranscripts prometheus.Counter

	// Indexing metrics
	SegmentsRedacted prometheus.Counter
	VectorsUpserted  prometheus.Counter
	UpsertErrors     prometheus.Counter
	EmbedDuration    *prometheus.HistogramVec
	EmbedErrors      *prometheus.CounterVec

	// Retrieval metrics
	QueriesTotal    prometheus.Counter
	QueryDuration   prometheus.Histogram
	MatchesReturned prometheus.Histogram
	MatchesFiltered prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TranscriptionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of transcription requests",
		}, []string{"provider"}),
		TranscriptionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_errors_total",
			Help:      "Total number of transcription failures",
		}, []string{"provider"}),
		TranscriptionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Transcription latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"provider"}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received for transcription",
		}),

		SegmentsProduced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_produced_total",
			Help:      "Total number of segments produced by the segmenter",
		}),
		FallbackSegments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_segments_total",
			Help:      "Total number of whole-transcript fallback segments (no word timing)",
		}),
		EmptyTranscripts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_transcripts_total",
			Help:      "Total number of transcriptions that returned no text",
		}),

		SegmentsRedacted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_redacted_total",
			Help:      "Total number of segments passed through the redactor",
		}),
		VectorsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vectors_upserted_total",
			Help:      "Total number of vectors upserted into the store",
		}),
		UpsertErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upsert_errors_total",
			Help:      "Total number of vector store upsert failures",
		}),
		EmbedDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embed_duration_seconds",
			Help:      "Embedding request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"provider"}),
		EmbedErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_errors_total",
			Help:      "Total number of embedding failures",
		}, []string{"provider"}),

		QueriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of retrieval queries",
		}),
		QueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end retrieval latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		MatchesReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matches_returned",
			Help:      "Matches returned by the vector store per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		MatchesFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_filtered_total",
			Help:      "Matches dropped by the similarity threshold filter",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "path"}),
	}
}

// RecordTranscription records a transcription attempt.
func (m *Metrics) RecordTranscription(provider string, err error, durationSeconds float64) {
	m.TranscriptionsTotal.WithLabelValues(provider).Inc()
	m.TranscriptionDuration.WithLabelValues(provider).Observe(durationSeconds)
	if err != nil {
		m.TranscriptionErrors.WithLabelValues(provider).Inc()
	}
}

// RecordSegments records segmenter output.
func (m *Metrics) RecordSegments(count int) {
	m.SegmentsProduced.Add(float64(count))
}

// RecordEmbed records an embedding request.
func (m *Metrics) RecordEmbed(provider string, err error, durationSeconds float64) {
	m.EmbedDuration.WithLabelValues(provider).Observe(durationSeconds)
	if err != nil {
		m.EmbedErrors.WithLabelValues(provider).Inc()
	}
}

// RecordQuery records a retrieval query.
func (m *Metrics) RecordQuery(returned, kept int, durationSeconds float64) {
	m.QueriesTotal.Inc()
	m.QueryDuration.Observe(durationSeconds)
	m.MatchesReturned.Observe(float64(returned))
	if dropped := returned - kept; dropped > 0 {
		m.MatchesFiltered.Add(float64(dropped))
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
