package transcription

import (
	"context"
	"errors"
	"testing"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/service/segmenter"
	"voice-archive-search/internal/service/stt"
)

type stubAdapter struct {
	result *stt.Result
	err    error
}

func (s *stubAdapter) Name() string { return "stub" }

func (s *stubAdapter) Transcribe(context.Context, []byte, string) (*stt.Result, error) {
	return s.result, s.err
}

func TestTranscribeBuffer_Words(t *testing.T) {
	adapter := &stubAdapter{result: &stt.Result{
		Words: []models.Word{
			{Text: "hello", Start: 0, End: 0.5, Speaker: "0"},
			{Text: "world", Start: 0.6, End: 1.0, Speaker: "0"},
		},
		Transcript: "hello world",
	}}
	svc := New(adapter, segmenter.DefaultParams())

	segs, err := svc.TranscribeBuffer(context.Background(), []byte{1}, "audio/wav", "f.wav", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Text != "hello world" || segs[0].File != "f.wav" || segs[0].Session != "s1" {
		t.Errorf("unexpected segment: %+v", segs[0])
	}
}

func TestTranscribeBuffer_FallbackSegment(t *testing.T) {
	adapter := &stubAdapter{result: &stt.Result{Transcript: "just text, no timing"}}
	svc := New(adapter, segmenter.DefaultParams())

	segs, err := svc.TranscribeBuffer(context.Background(), []byte{1}, "", "f.wav", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected single fallback segment, got %d", len(segs))
	}
	s := segs[0]
	if s.Start != 0.0 || s.End != 0.0 {
		t.Errorf("fallback segment must be zero-timestamped, got [%v,%v]", s.Start, s.End)
	}
	if s.Speaker != "" {
		t.Errorf("fallback segment must have no speaker, got %q", s.Speaker)
	}
	if s.Text != "just text, no timing" {
		t.Errorf("unexpected text: %q", s.Text)
	}
}

func TestTranscribeBuffer_EmptyTranscript(t *testing.T) {
	adapter := &stubAdapter{result: &stt.Result{}}
	svc := New(adapter, segmenter.DefaultParams())

	segs, err := svc.TranscribeBuffer(context.Background(), []byte{1}, "", "f.wav", "s1")
	if err != nil {
		t.Fatalf("empty transcript is not an error, got: %v", err)
	}
	if len(segs) != 0 {
		t.Errorf("expected no segments, got %d", len(segs))
	}
}

func TestTranscribeBuffer_EmptyAudio(t *testing.T) {
	svc := New(&stubAdapter{}, segmenter.DefaultParams())

	_, err := svc.TranscribeBuffer(context.Background(), nil, "", "f.wav", "s1")
	if !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestTranscribeBuffer_ProviderError(t *testing.T) {
	provErr := errors.New("upstream down")
	svc := New(&stubAdapter{err: provErr}, segmenter.DefaultParams())

	segs, err := svc.TranscribeBuffer(context.Background(), []byte{1}, "", "f.wav", "s1")
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
	if !errors.Is(err, provErr) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
	if segs != nil {
		t.Errorf("expected no segments on failure")
	}
}
