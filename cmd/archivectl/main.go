// archivectl ingests audio files into the voice archive and runs a
// search against the result, end to end, using the same configuration
// as the service. Useful for local pipeline runs without the HTTP API.
//
// Usage:
//
//	archivectl -session demo -query "cancel subscription" call1.wav call2.wav
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"voice-archive-search/internal/app"
	"voice-archive-search/internal/config"
	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/service/retrieval"
)

func main() {
	sessionID := flag.String("session", "archive-"+time.Now().Format("20060102-150405"), "Session ID grouping this batch")
	query := flag.String("query", "", "Search query to run after ingestion (optional)")
	topK := flag.Int("top-k", 5, "Number of results to retrieve")
	threshold := flag.Float64("threshold", 0.0, "Minimum similarity score")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 && *query == "" {
		log.Fatal("nothing to do: pass audio files to ingest and/or -query to search")
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	defer application.Shutdown()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if len(files) > 0 {
		result := application.Batch.ProcessFiles(ctx, files, *sessionID)
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encode batch result: %v", err)
		}
		if result.Indexed == 0 {
			log.Fatal("no segments indexed")
		}
	}

	if *query != "" {
		matches, err := application.Searcher.Search(ctx, retrieval.Request{
			Query:     *query,
			TopK:      *topK,
			Threshold: *threshold,
			Session:   sessionScope(files, *sessionID),
		})
		if err != nil {
			log.Fatalf("search failed: %v", err)
		}
		if err := enc.Encode(matches); err != nil {
			log.Fatalf("encode matches: %v", err)
		}
	}
}

// sessionScope limits the search to the freshly ingested batch; a pure
// query run (no files) searches the whole archive.
func sessionScope(files []string, sessionID string) string {
	if len(files) == 0 {
		return ""
	}
	return sessionID
}
