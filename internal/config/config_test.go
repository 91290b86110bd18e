package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear relevant env vars
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "LOG_LEVEL", "LOG_FORMAT", "METRICS_PORT",
		"STT_PROVIDER", "STT_LANGUAGE_CODE", "STT_MIN_SPEAKERS", "STT_MAX_SPEAKERS",
		"SEGMENT_MAX_GAP_SECONDS", "SEGMENT_MAX_DURATION_SECONDS",
		"REDACT_PII", "EMBEDDING_PROVIDER", "EMBEDDING_DIMENSION",
		"VECTOR_PROVIDER", "VECTOR_NAMESPACE", "PIPELINE_WORKERS",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_INDEXED", "KAFKA_TOPIC_SEARCHED",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	// Service defaults
	if cfg.Service.Principal != "svc-voice-archive" {
		t.Errorf("expected default principal 'svc-voice-archive', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}

	// STT defaults
	if cfg.STT.Provider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.STT.Provider)
	}
	if cfg.STT.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.STT.LanguageCode)
	}
	if cfg.STT.MinSpeakerCount != 1 || cfg.STT.MaxSpeakerCount != 6 {
		t.Errorf("unexpected speaker bounds %d..%d", cfg.STT.MinSpeakerCount, cfg.STT.MaxSpeakerCount)
	}

	// Segmenter defaults
	if cfg.Segmenter.MaxGap != 1.0 {
		t.Errorf("expected default max gap 1.0, got %v", cfg.Segmenter.MaxGap)
	}
	if cfg.Segmenter.MaxDuration != 20.0 {
		t.Errorf("expected default max duration 20.0, got %v", cfg.Segmenter.MaxDuration)
	}

	// Redaction is on by default
	if !cfg.Redact.Enabled {
		t.Error("expected redaction enabled by default")
	}

	// Embedding defaults
	if cfg.Embedding.Provider != "cohere" {
		t.Errorf("expected default embedding provider 'cohere', got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimension != 1024 {
		t.Errorf("expected default dimension 1024, got %d", cfg.Embedding.Dimension)
	}

	// Vector store defaults
	if cfg.VectorStore.Provider != "memory" {
		t.Errorf("expected default vector provider 'memory', got %s", cfg.VectorStore.Provider)
	}
	if cfg.VectorStore.Namespace != "voice-archives" {
		t.Errorf("expected default namespace 'voice-archives', got %s", cfg.VectorStore.Namespace)
	}

	// Pipeline defaults
	if cfg.Pipeline.Workers != 5 {
		t.Errorf("expected default workers 5, got %d", cfg.Pipeline.Workers)
	}

	// Kafka is opt-in
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicIndexed != "archive.segments.indexed" {
		t.Errorf("unexpected indexed topic %s", cfg.Kafka.TopicIndexed)
	}

	// Observability defaults
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsPort != "9090" {
		t.Errorf("expected default metrics port '9090', got %s", cfg.Observability.MetricsPort)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("STT_PROVIDER", "deepgram")
	os.Setenv("STT_LANGUAGE_CODE", "es-ES")
	os.Setenv("SEGMENT_MAX_GAP_SECONDS", "0.5")
	os.Setenv("SEGMENT_MAX_DURATION_SECONDS", "30")
	os.Setenv("REDACT_PII", "false")
	os.Setenv("EMBEDDING_PROVIDER", "openai")
	os.Setenv("EMBEDDING_DIMENSION", "1536")
	os.Setenv("VECTOR_PROVIDER", "pinecone")
	os.Setenv("VECTOR_NAMESPACE", "custom-ns")
	os.Setenv("PIPELINE_WORKERS", "2")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	defer func() {
		for _, v := range []string{
			"SERVICE_PRINCIPAL", "HTTP_PORT", "STT_PROVIDER", "STT_LANGUAGE_CODE",
			"SEGMENT_MAX_GAP_SECONDS", "SEGMENT_MAX_DURATION_SECONDS", "REDACT_PII",
			"EMBEDDING_PROVIDER", "EMBEDDING_DIMENSION", "VECTOR_PROVIDER",
			"VECTOR_NAMESPACE", "PIPELINE_WORKERS", "KAFKA_ENABLED", "KAFKA_BROKERS",
		} {
			os.Unsetenv(v)
		}
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.STT.Provider != "deepgram" {
		t.Errorf("expected provider 'deepgram', got %s", cfg.STT.Provider)
	}
	if cfg.Segmenter.MaxGap != 0.5 {
		t.Errorf("expected max gap 0.5, got %v", cfg.Segmenter.MaxGap)
	}
	if cfg.Segmenter.MaxDuration != 30 {
		t.Errorf("expected max duration 30, got %v", cfg.Segmenter.MaxDuration)
	}
	if cfg.Redact.Enabled {
		t.Error("expected redaction disabled")
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.Dimension != 1536 {
		t.Errorf("unexpected embedding config %+v", cfg.Embedding)
	}
	if cfg.VectorStore.Provider != "pinecone" || cfg.VectorStore.Namespace != "custom-ns" {
		t.Errorf("unexpected vector store config %+v", cfg.VectorStore)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Pipeline.Workers)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("broker list not parsed and trimmed: %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	os.Setenv("SEGMENT_MAX_GAP_SECONDS", "not-a-number")
	os.Setenv("PIPELINE_WORKERS", "many")
	os.Setenv("REDACT_PII", "yes-please")
	defer func() {
		os.Unsetenv("SEGMENT_MAX_GAP_SECONDS")
		os.Unsetenv("PIPELINE_WORKERS")
		os.Unsetenv("REDACT_PII")
	}()

	cfg := Load()

	if cfg.Segmenter.MaxGap != 1.0 {
		t.Errorf("expected fallback 1.0 for bad float, got %v", cfg.Segmenter.MaxGap)
	}
	if cfg.Pipeline.Workers != 5 {
		t.Errorf("expected fallback 5 for bad int, got %d", cfg.Pipeline.Workers)
	}
	if !cfg.Redact.Enabled {
		t.Error("expected fallback true for bad bool")
	}
}
