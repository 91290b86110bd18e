// Package pinecone is a minimal REST client for a Pinecone serverless index.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/service/vectorstore"
)

// Store implements vectorstore.Store against a Pinecone index host.
type Store struct {
	host   string
	apiKey string
	client *http.Client
}

// Config contains connection details for the index.
type Config struct {
	// Host is the serverless index host, with or without scheme.
	Host    string
	APIKey  string
	Timeout time.Duration
}

// New creates a Pinecone store client.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("pinecone: missing index host")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: missing API key")
	}
	host := cfg.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		host:   strings.TrimRight(host, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider identifier.
func (s *Store) Name() string { return "pinecone" }

type upsertVector struct {
	ID       string                 `json:"id"`
	Values   []float64              `json:"values"`
	Metadata models.SegmentMetadata `json:"metadata"`
}

// Upsert writes records into the namespace; same IDs overwrite.
func (s *Store) Upsert(ctx context.Context, namespace string, records []models.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	vectors := make([]upsertVector, len(records))
	for i, r := range records {
		vectors[i] = upsertVector{ID: r.ID, Values: r.Vector, Metadata: r.Metadata}
	}
	body := map[string]any{
		"vectors":   vectors,
		"namespace": namespace,
	}
	return s.postJSON(ctx, "/vectors/upsert", body, nil)
}

type queryResponse struct {
	Matches []struct {
		ID       string                 `json:"id"`
		Score    float64                `json:"score"`
		Metadata models.SegmentMetadata `json:"metadata"`
	} `json:"matches"`
}

// Query returns the topK nearest neighbors in the namespace, best-first.
// A non-empty filter becomes a Pinecone metadata equality predicate.
func (s *Store) Query(ctx context.Context, namespace string, vector []float64, topK int, filter vectorstore.Filter) ([]models.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":          vector,
		"namespace":       namespace,
		"topK":            topK,
		"includeMetadata": true,
	}
	if len(filter) > 0 {
		pred := make(map[string]any, len(filter))
		for k, v := range filter {
			pred[k] = map[string]any{"$eq": v}
		}
		body["filter"] = pred
	}

	var resp queryResponse
	if err := s.postJSON(ctx, "/query", body, &resp); err != nil {
		return nil, err
	}

	matches := make([]models.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, models.Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

func (s *Store) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("pinecone POST %s failed: %s: %s", path, resp.Status, string(detail))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
