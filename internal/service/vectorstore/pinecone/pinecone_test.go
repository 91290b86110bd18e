package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/service/vectorstore"
)

func TestUpsert(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/upsert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.Header.Get("Api-Key"); key != "pk" {
			t.Errorf("unexpected api key %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Write([]byte(`{"upsertedCount":1}`))
	}))
	defer srv.Close()

	s, err := New(Config{Host: srv.URL, APIKey: "pk"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records := []models.IndexRecord{{
		ID:     "s1:f.wav:0",
		Vector: []float64{0.1, 0.2},
		Metadata: models.SegmentMetadata{
			Text: "hello", Speaker: "0", Start: 0, End: 1.2, File: "f.wav", Session: "s1",
		},
	}}
	if err := s.Upsert(context.Background(), "voice-archives", records); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if got["namespace"] != "voice-archives" {
		t.Errorf("namespace not sent: %v", got["namespace"])
	}
	vectors := got["vectors"].([]any)
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vectors))
	}
	v := vectors[0].(map[string]any)
	if v["id"] != "s1:f.wav:0" {
		t.Errorf("unexpected id %v", v["id"])
	}
}

func TestQuery(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "s1:f:0", "score": 0.91, "metadata": map[string]any{"text": "hi", "session": "s1"}},
				{"id": "s1:f:3", "score": 0.55, "metadata": map[string]any{"text": "later", "session": "s1"}},
			},
		})
	}))
	defer srv.Close()

	s, _ := New(Config{Host: srv.URL, APIKey: "pk"})
	matches, err := s.Query(context.Background(), "ns", []float64{1, 0}, 5, vectorstore.Filter{"session": "s1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if got["includeMetadata"] != true {
		t.Error("includeMetadata must be requested")
	}
	if got["topK"].(float64) != 5 {
		t.Errorf("unexpected topK %v", got["topK"])
	}
	filter := got["filter"].(map[string]any)["session"].(map[string]any)
	if filter["$eq"] != "s1" {
		t.Errorf("session filter not encoded as $eq: %v", filter)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "s1:f:0" || matches[0].Score != 0.91 {
		t.Errorf("unexpected first match: %+v", matches[0])
	}
	if matches[0].Metadata.Text != "hi" {
		t.Errorf("metadata not decoded: %+v", matches[0].Metadata)
	}
}

func TestQuery_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := New(Config{Host: srv.URL, APIKey: "pk"})
	if _, err := s.Query(context.Background(), "ns", []float64{1}, 5, nil); err == nil {
		t.Error("expected error on 500")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{APIKey: "pk"}); err == nil {
		t.Error("expected error for missing host")
	}
	if _, err := New(Config{Host: "h"}); err == nil {
		t.Error("expected error for missing api key")
	}
	s, err := New(Config{Host: "my-index.svc.pinecone.io", APIKey: "pk"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.host != "https://my-index.svc.pinecone.io" {
		t.Errorf("scheme not defaulted: %q", s.host)
	}
}
