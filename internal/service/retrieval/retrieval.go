// Package retrieval embeds query text, runs nearest-neighbor search and
// applies the user-facing similarity threshold filter.
package retrieval

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
	"voice-archive-search/internal/service/vectorstore"
)

// FilterByScore keeps matches whose score is at or above threshold,
// preserving the store's ranking order. The comparison is inclusive: a
// score exactly equal to the threshold passes. An empty result is the
// valid no-matches state, not an error.
func FilterByScore(matches []models.Match, threshold float64) []models.Match {
	kept := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= threshold {
			kept = append(kept, m)
		}
	}
	return kept
}

// Request describes one search.
type Request struct {
	Query     string
	TopK      int
	Threshold float64
	// Session, when set, scopes retrieval to one ingestion batch as a
	// query-time predicate.
	Session string
}

// Searcher runs the retrieval pipeline against an embedder and a store.
type Searcher struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	namespace string
	publisher *events.Publisher
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewSearcher creates a retrieval pipeline. publisher may be nil.
func NewSearcher(embedder embedding.Embedder, store vectorstore.Store, namespace string, publisher *events.Publisher) *Searcher {
	return &Searcher{
		embedder:  embedder,
		store:     store,
		namespace: namespace,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithComponent("retrieval"),
	}
}

// Search embeds the query, retrieves ranked neighbors and filters them by
// the similarity threshold. Provider and store failures propagate so the
// caller can distinguish them from the empty-result state.
func (s *Searcher) Search(ctx context.Context, req Request) ([]models.Match, error) {
	if req.TopK <= 0 {
		req.TopK = 5
	}

	start := time.Now()
	vectors, err := s.embedder.Embed(ctx, []string{req.Query}, embedding.InputQuery)
	s.metrics.RecordEmbed(s.embedder.Name(), err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	var filter vectorstore.Filter
	if req.Session != "" {
		filter = vectorstore.Filter{"session": req.Session}
	}

	matches, err := s.store.Query(ctx, s.namespace, vectors[0], req.TopK, filter)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	kept := FilterByScore(matches, req.Threshold)
	s.metrics.RecordQuery(len(matches), len(kept), time.Since(start).Seconds())

	s.log.Info().
		Str("query", req.Query).
		Int("topK", req.TopK).
		Float64("threshold", req.Threshold).
		Int("returned", len(matches)).
		Int("kept", len(kept)).
		Msg("Search completed")

	if s.publisher != nil {
		ev := models.SearchPerformed{
			EventType: "archive.search.performed",
			Query:     req.Query,
			Namespace: s.namespace,
			Session:   req.Session,
			TopK:      req.TopK,
			Threshold: req.Threshold,
			Returned:  len(matches),
			Kept:      len(kept),
			Timestamp: time.Now().UnixMilli(),
		}
		if perr := s.publisher.PublishSearched(ctx, req.Query, ev); perr != nil {
			s.log.Warn().Err(perr).Msg("Failed to publish search event")
		}
	}

	return kept, nil
}
