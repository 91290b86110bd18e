// Package stt defines the interface for batch speech-to-text adapters.
package stt

import (
	"context"

	"voice-archive-search/internal/models"
)

// Result is the provider-neutral transcription output. Words carries
// word-level timing and speaker labels when the provider returns them;
// Transcript is always the full plain text.
type Result struct {
	Words      []models.Word
	Transcript string
}

// Adapter defines the contract for STT providers (Deepgram, Google, mock).
type Adapter interface {
	// Name identifies the provider for logging and metrics.
	Name() string

	// Transcribe sends an audio buffer for prerecorded transcription.
	// mimeType is best-effort; providers may ignore it.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error)
}
