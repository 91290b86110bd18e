// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the full service configuration, grouped by concern.
type Config struct {
	Service       ServiceConfig
	STT           STTConfig
	Segmenter     SegmenterConfig
	Redact        RedactConfig
	Embedding     EmbeddingConfig
	VectorStore   VectorStoreConfig
	Pipeline      PipelineConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies the service and its HTTP listener.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
}

// STTConfig selects and configures the transcription provider.
type STTConfig struct {
	Provider        string // mock, deepgram, google
	LanguageCode    string
	DeepgramAPIKey  string
	DeepgramBaseURL string
	DeepgramModel   string
	GoogleModel     string
	MinSpeakerCount int
	MaxSpeakerCount int
}

// SegmenterConfig holds the greedy segmentation thresholds, in seconds.
type SegmenterConfig struct {
	MaxGap      float64
	MaxDuration float64
}

// RedactConfig controls PII masking.
type RedactConfig struct {
	Enabled bool
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string // cohere, openai
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

// VectorStoreConfig selects and configures the vector index.
type VectorStoreConfig struct {
	Provider  string // pinecone, memory
	Host      string
	APIKey    string
	Namespace string
}

// PipelineConfig bounds batch ingestion concurrency.
type PipelineConfig struct {
	Workers int
}

// KafkaConfig configures event publishing.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicIndexed  string
	TopicSearched string
}

// ObservabilityConfig configures logging and the metrics listener.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsPort string
}

// Load reads configuration from environment variables, applying defaults
// for everything unset. Provider credentials have no defaults; adapters
// fail fast at construction when a selected provider is missing its key.
func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Principal: envOrDefault("SERVICE_PRINCIPAL", "svc-voice-archive"),
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
		},
		STT: STTConfig{
			Provider:        envOrDefault("STT_PROVIDER", "mock"),
			LanguageCode:    envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			DeepgramAPIKey:  os.Getenv("DEEPGRAM_API_KEY"),
			DeepgramBaseURL: os.Getenv("DEEPGRAM_BASE_URL"),
			DeepgramModel:   envOrDefault("DEEPGRAM_MODEL", "nova-3"),
			GoogleModel:     os.Getenv("GOOGLE_STT_MODEL"),
			MinSpeakerCount: envInt("STT_MIN_SPEAKERS", 1),
			MaxSpeakerCount: envInt("STT_MAX_SPEAKERS", 6),
		},
		Segmenter: SegmenterConfig{
			MaxGap:      envFloat("SEGMENT_MAX_GAP_SECONDS", 1.0),
			MaxDuration: envFloat("SEGMENT_MAX_DURATION_SECONDS", 20.0),
		},
		Redact: RedactConfig{
			Enabled: envBool("REDACT_PII", true),
		},
		Embedding: EmbeddingConfig{
			Provider:  envOrDefault("EMBEDDING_PROVIDER", "cohere"),
			APIKey:    os.Getenv("EMBEDDING_API_KEY"),
			BaseURL:   os.Getenv("EMBEDDING_BASE_URL"),
			Model:     os.Getenv("EMBEDDING_MODEL"),
			Dimension: envInt("EMBEDDING_DIMENSION", 1024),
		},
		VectorStore: VectorStoreConfig{
			Provider:  envOrDefault("VECTOR_PROVIDER", "memory"),
			Host:      os.Getenv("PINECONE_INDEX_HOST"),
			APIKey:    os.Getenv("PINECONE_API_KEY"),
			Namespace: envOrDefault("VECTOR_NAMESPACE", "voice-archives"),
		},
		Pipeline: PipelineConfig{
			Workers: envInt("PIPELINE_WORKERS", 5),
		},
		Kafka: KafkaConfig{
			Enabled:       envBool("KAFKA_ENABLED", false),
			Brokers:       envList("KAFKA_BROKERS"),
			TopicIndexed:  envOrDefault("KAFKA_TOPIC_INDEXED", "archive.segments.indexed"),
			TopicSearched: envOrDefault("KAFKA_TOPIC_SEARCHED", "archive.search.performed"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
