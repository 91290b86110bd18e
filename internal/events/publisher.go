// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"voice-archive-search/internal/observability/metrics"
)

// Publisher publishes archive events to separate Kafka topics.
type Publisher struct {
	writerIndexed  *kafka.Writer
	writerSearched *kafka.Writer
	principal      string
	topicIndexed   string
	topicSearched  string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicIndexed  string
	TopicSearched string
	Principal     string
	Enabled       bool
}

// New creates a Kafka event publisher with separate topics for indexing
// and search events. With Kafka disabled it degrades to log-only mode.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicIndexed:  cfg.TopicIndexed,
			topicSearched: cfg.TopicSearched,
			enabled:       false,
			metrics:       m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerIndexed := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicIndexed,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerSearched := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicSearched,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicIndexed", cfg.TopicIndexed).
		Str("topicSearched", cfg.TopicSearched).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerIndexed:  writerIndexed,
		writerSearched: writerSearched,
		principal:      cfg.Principal,
		topicIndexed:   cfg.TopicIndexed,
		topicSearched:  cfg.TopicSearched,
		enabled:        true,
		metrics:        m,
	}
}

// PublishIndexed publishes a segments-indexed event. The key should be
// the session ID so one session's events stay on one partition.
func (p *Publisher) PublishIndexed(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerIndexed, p.topicIndexed, "indexed", key, event)
}

// PublishSearched publishes a search-performed event.
func (p *Publisher) PublishSearched(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerSearched, p.topicSearched, "searched", key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerIndexed != nil {
		if e := p.writerIndexed.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing indexed writer")
			err = e
		}
	}
	if p.writerSearched != nil {
		if e := p.writerSearched.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing searched writer")
			err = e
		}
	}
	return err
}
