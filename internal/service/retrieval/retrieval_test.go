package retrieval

import (
	"context"
	"errors"
	"testing"

	"voice-archive-search/internal/events"
	"voice-archive-search/internal/models"
	"voice-archive-search/internal/service/embedding"
	"voice-archive-search/internal/service/vectorstore"
	"voice-archive-search/internal/service/vectorstore/memory"
)

func TestFilterByScore_Inclusive(t *testing.T) {
	matches := []models.Match{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.5}, // exactly at threshold: must be kept
		{ID: "c", Score: 0.49},
	}

	kept := FilterByScore(matches, 0.5)

	if len(kept) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(kept))
	}
	if kept[0].ID != "a" || kept[1].ID != "b" {
		t.Errorf("order not preserved or boundary dropped: %+v", kept)
	}
}

func TestFilterByScore_Empty(t *testing.T) {
	kept := FilterByScore([]models.Match{{ID: "a", Score: 0.1}}, 0.9)
	if len(kept) != 0 {
		t.Errorf("expected empty result, got %+v", kept)
	}
	if kept == nil {
		t.Error("empty result should be a non-nil empty slice")
	}
}

type stubEmbedder struct {
	vec []float64
	err error
}

func (s *stubEmbedder) Name() string { return "stub" }

func (s *stubEmbedder) Embed(_ context.Context, texts []string, _ embedding.InputType) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	err := store.Upsert(context.Background(), "ns", []models.IndexRecord{
		{ID: "s1:f:0", Vector: []float64{1, 0}, Metadata: models.SegmentMetadata{Session: "s1", Text: "close"}},
		{ID: "s1:f:1", Vector: []float64{0.7, 0.7}, Metadata: models.SegmentMetadata{Session: "s1", Text: "mid"}},
		{ID: "s2:g:0", Vector: []float64{0.99, 0.1}, Metadata: models.SegmentMetadata{Session: "s2", Text: "other session"}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestSearch_RankedAndFiltered(t *testing.T) {
	s := NewSearcher(&stubEmbedder{vec: []float64{1, 0}}, seedStore(t), "ns", events.New(nil))

	matches, err := s.Search(context.Background(), Request{Query: "q", TopK: 10, Threshold: 0.9})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches above 0.9, got %d", len(matches))
	}
	if matches[0].Score < matches[1].Score {
		t.Error("ranking order not preserved")
	}
}

func TestSearch_SessionScoped(t *testing.T) {
	s := NewSearcher(&stubEmbedder{vec: []float64{1, 0}}, seedStore(t), "ns", nil)

	matches, err := s.Search(context.Background(), Request{Query: "q", TopK: 10, Session: "s2"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "s2:g:0" {
		t.Errorf("session scope not applied: %+v", matches)
	}
}

func TestSearch_NoMatchesAboveThreshold(t *testing.T) {
	s := NewSearcher(&stubEmbedder{vec: []float64{1, 0}}, seedStore(t), "ns", nil)

	matches, err := s.Search(context.Background(), Request{Query: "q", TopK: 10, Threshold: 2.0})
	if err != nil {
		t.Fatalf("no matches above threshold must not be an error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty result, got %+v", matches)
	}
}

func TestSearch_EmbedderFailure(t *testing.T) {
	s := NewSearcher(&stubEmbedder{err: errors.New("quota")}, seedStore(t), "ns", nil)

	if _, err := s.Search(context.Background(), Request{Query: "q"}); err == nil {
		t.Error("expected embedder failure to propagate")
	}
}

type failingStore struct{}

func (failingStore) Name() string { return "failing" }

func (failingStore) Upsert(context.Context, string, []models.IndexRecord) error {
	return errors.New("down")
}

func (failingStore) Query(context.Context, string, []float64, int, vectorstore.Filter) ([]models.Match, error) {
	return nil, errors.New("down")
}

func TestSearch_StoreFailureDistinguishable(t *testing.T) {
	s := NewSearcher(&stubEmbedder{vec: []float64{1}}, failingStore{}, "ns", nil)

	matches, err := s.Search(context.Background(), Request{Query: "q"})
	if err == nil {
		t.Error("store failure must propagate as an error, not an empty result")
	}
	if matches != nil {
		t.Errorf("expected nil matches on failure, got %+v", matches)
	}
}
