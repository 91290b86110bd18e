// Package mock provides a deterministic STT adapter for testing and local
// development without provider credentials. It fabricates word timings and
// alternating speaker labels from a canned script, so the downstream
// segmentation, redaction and indexing paths behave exactly as they would
// with a real provider.
package mock

import (
	"context"
	"strings"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/service/stt"
)

// DefaultScript is the transcript simulated when none is configured.
const DefaultScript = "Hello and thanks for calling support. I want to cancel my subscription please. " +
	"Sure I can help with that today. Can you confirm the account email for me."

// Adapter implements stt.Adapter with fabricated timing and diarization.
type Adapter struct {
	script      string
	wordSeconds float64 // fabricated span per word
	turnEvery   int     // speaker flips every N words
}

// New creates a mock adapter using the default script.
func New() *Adapter {
	return NewWithScript(DefaultScript)
}

// NewWithScript creates a mock adapter that transcribes every input to
// the given text.
func NewWithScript(script string) *Adapter {
	return &Adapter{script: script, wordSeconds: 0.4, turnEvery: 8}
}

// Name identifies the provider.
func (a *Adapter) Name() string { return "mock" }

// Transcribe ignores the audio bytes and returns the scripted words with
// monotonically increasing timings and a speaker turn every few words.
func (a *Adapter) Transcribe(_ context.Context, audio []byte, _ string) (*stt.Result, error) {
	if len(audio) == 0 {
		return &stt.Result{}, nil
	}

	fields := strings.Fields(a.script)
	words := make([]models.Word, 0, len(fields))
	for i, f := range fields {
		start := float64(i) * a.wordSeconds
		speaker := "0"
		if a.turnEvery > 0 && (i/a.turnEvery)%2 == 1 {
			speaker = "1"
		}
		words = append(words, models.Word{
			Text:    f,
			Start:   start,
			End:     start + a.wordSeconds,
			Speaker: speaker,
		})
	}

	return &stt.Result{Words: words, Transcript: a.script}, nil
}
