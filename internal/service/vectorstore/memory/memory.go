// Package memory is an in-process vector store using brute-force cosine
// similarity. It backs tests and credential-free local development.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/service/vectorstore"
)

// Store implements vectorstore.Store with per-namespace maps.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]models.IndexRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{namespaces: make(map[string]map[string]models.IndexRecord)}
}

// Name returns the provider identifier.
func (s *Store) Name() string { return "memory" }

// Upsert inserts or overwrites records by ID within the namespace.
func (s *Store) Upsert(_ context.Context, namespace string, records []models.IndexRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.namespaces[namespace]
	if ns == nil {
		ns = make(map[string]models.IndexRecord)
		s.namespaces[namespace] = ns
	}
	for _, r := range records {
		if r.ID == "" {
			return errors.New("record with empty id")
		}
		ns[r.ID] = r
	}
	return nil
}

// Query ranks all candidate records by cosine similarity, best-first.
// The metadata filter constrains candidates before ranking.
func (s *Store) Query(_ context.Context, namespace string, vector []float64, topK int, filter vectorstore.Filter) ([]models.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Match
	for _, r := range s.namespaces[namespace] {
		if !matchesFilter(r.Metadata, filter) {
			continue
		}
		matches = append(matches, models.Match{
			ID:       r.ID,
			Score:    cosine(vector, r.Vector),
			Metadata: r.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of records in a namespace.
func (s *Store) Count(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace])
}

func matchesFilter(md models.SegmentMetadata, filter vectorstore.Filter) bool {
	for k, want := range filter {
		var got string
		switch k {
		case "session":
			got = md.Session
		case "file":
			got = md.File
		case "speaker":
			got = md.Speaker
		default:
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
