package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/service/stt"
	"voice-archive-search/internal/service/transcription"
)

// DefaultWorkers bounds concurrent transcriptions in a batch run.
const DefaultWorkers = 5

// FileResult is the per-file outcome of a batch run.
type FileResult struct {
	File     string `json:"file"`
	Segments int    `json:"segments"`
	Indexed  int    `json:"indexed"`
	Err      string `json:"error,omitempty"`
}

// BatchResult aggregates a batch ingestion run.
type BatchResult struct {
	Session string       `json:"session"`
	Files   []FileResult `json:"files"`
	Indexed int          `json:"indexed"`
}

// Batch runs transcription and indexing over many audio files with a
// bounded worker pool. Files fail independently; one bad file never
// aborts the rest of the batch.
type Batch struct {
	transcriber *transcription.Service
	indexer     *Indexer
	workers     int
}

// NewBatch creates a batch processor. workers <= 0 uses DefaultWorkers.
func NewBatch(transcriber *transcription.Service, indexer *Indexer, workers int) *Batch {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Batch{
		transcriber: transcriber,
		indexer:     indexer,
		workers:     workers,
	}
}

// ProcessFiles transcribes and indexes each path under the given session.
// Results come back sorted by file name so runs are reproducible.
func (b *Batch) ProcessFiles(ctx context.Context, paths []string, session string) BatchResult {
	log := logging.WithSession(session)
	log.Info().Int("files", len(paths)).Int("workers", b.workers).Msg("Starting batch ingestion")

	var (
		mu      sync.Mutex
		results = make([]FileResult, 0, len(paths))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			res := b.processOne(gctx, path, session)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures are carried per file.
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	out := BatchResult{Session: session, Files: results}
	for _, r := range results {
		out.Indexed += r.Indexed
	}
	log.Info().Int("indexed", out.Indexed).Msg("Batch ingestion finished")
	return out
}

func (b *Batch) processOne(ctx context.Context, path, session string) FileResult {
	file := filepath.Base(path)
	res := FileResult{File: file}

	flog := logging.WithFile(session, file)

	audio, err := os.ReadFile(path)
	if err != nil {
		flog.Error().Err(err).Msg("Failed to read audio file")
		res.Err = err.Error()
		return res
	}

	segments, err := b.transcriber.TranscribeBuffer(ctx, audio, stt.GuessMimeType(path), file, session)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Segments = len(segments)
	if len(segments) == 0 {
		return res
	}

	indexed, err := b.indexer.IndexSegments(ctx, segments)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Indexed = indexed
	return res
}
