// Package pipeline coordinates the per-file ingestion flow: transcribe,
// segment, redact, embed, upsert, publish.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"voice-archive-search/internal/events"
	"voice-archive-search/internal/models"
	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/observability/metrics"
	"voice-archive-search/internal/service/embedding"
	"voice-archive-search/internal/service/redact"
	"voice-archive-search/internal/service/vectorstore"
)

// RecordID composes the deterministic vector ID for a segment. ordinal is
// the zero-based position within the batch being upserted. The format is
// a cross-system contract; do not change it.
func RecordID(session, file string, ordinal int) string {
	return fmt.Sprintf("%s:%s:%d", session, file, ordinal)
}

// Indexer redacts, embeds and upserts segments with metadata.
type Indexer struct {
	redactor  *redact.Redactor
	embedder  embedding.Embedder
	store     vectorstore.Store
	namespace string
	publisher *events.Publisher
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewIndexer creates an indexing pipeline. publisher may be nil.
func NewIndexer(redactor *redact.Redactor, embedder embedding.Embedder, store vectorstore.Store, namespace string, publisher *events.Publisher) *Indexer {
	return &Indexer{
		redactor:  redactor,
		embedder:  embedder,
		store:     store,
		namespace: namespace,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithComponent("indexer"),
	}
}

// Namespace returns the vector store namespace written to.
func (ix *Indexer) Namespace() string { return ix.namespace }

// IndexSegments redacts the segments, embeds the non-empty texts and
// upserts one record per surviving segment. Redaction always runs before
// the texts leave the process. Returns the number of vectors upserted.
func (ix *Indexer) IndexSegments(ctx context.Context, segments []models.Segment) (int, error) {
	if len(segments) == 0 {
		ix.log.Warn().Msg("No segments to upsert")
		return 0, nil
	}

	segments = ix.redactor.RedactSegments(segments)
	ix.metrics.SegmentsRedacted.Add(float64(len(segments)))

	kept := make([]models.Segment, 0, len(segments))
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text == "" {
			continue
		}
		kept = append(kept, s)
		texts = append(texts, s.Text)
	}
	if len(texts) == 0 {
		ix.log.Warn().Msg("All segment texts empty after redaction")
		return 0, nil
	}

	start := time.Now()
	vectors, err := ix.embedder.Embed(ctx, texts, embedding.InputDocument)
	ix.metrics.RecordEmbed(ix.embedder.Name(), err, time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("embed segments: %w", err)
	}
	if len(vectors) != len(kept) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(kept))
	}

	records := make([]models.IndexRecord, len(kept))
	for i, s := range kept {
		records[i] = models.IndexRecord{
			ID:       RecordID(s.Session, s.File, i),
			Vector:   vectors[i],
			Metadata: s.Metadata(),
		}
	}

	if err := ix.store.Upsert(ctx, ix.namespace, records); err != nil {
		ix.metrics.UpsertErrors.Inc()
		return 0, fmt.Errorf("upsert vectors: %w", err)
	}
	ix.metrics.VectorsUpserted.Add(float64(len(records)))

	session, file := kept[0].Session, kept[0].File
	flog := logging.WithFile(session, file)
	flog.Info().
		Int("segments", len(segments)).
		Int("indexed", len(records)).
		Str("namespace", ix.namespace).
		Msg("Segments indexed")

	if ix.publisher != nil {
		ev := models.SegmentsIndexed{
			EventType: "archive.segments.indexed",
			Session:   session,
			File:      file,
			Namespace: ix.namespace,
			Segments:  len(segments),
			Indexed:   len(records),
			Timestamp: time.Now().UnixMilli(),
		}
		if perr := ix.publisher.PublishIndexed(ctx, session, ev); perr != nil {
			ix.log.Warn().Err(perr).Msg("Failed to publish indexed event")
		}
	}

	return len(records), nil
}
