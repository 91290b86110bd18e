// Package transcription normalizes STT provider output into indexable
// segments. It owns the whole-transcript fallback when word timing is
// unavailable and the explicit empty-result path when nothing was said.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/observability/metrics"
	"voice-archive-search/internal/service/segmenter"
	"voice-archive-search/internal/service/stt"
)

// ErrEmptyAudio is returned before any provider call when the audio
// buffer is empty or unreadable. It is an input error, not a provider
// failure.
var ErrEmptyAudio = errors.New("audio is empty or unreadable")

// Service turns audio buffers into segments via an STT adapter.
type Service struct {
	adapter stt.Adapter
	params  segmenter.Params
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New creates a transcription service on top of the given adapter.
func New(adapter stt.Adapter, params segmenter.Params) *Service {
	return &Service{
		adapter: adapter,
		params:  params,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithComponent("transcription"),
	}
}

// Provider returns the underlying STT provider name.
func (s *Service) Provider() string {
	return s.adapter.Name()
}

// TranscribeBuffer transcribes an audio buffer and returns segments
// stamped with file and session.
//
// Result variants:
//   - word timing available: segments from the greedy segmenter
//   - transcript only: one synthetic zero-timestamp segment
//   - no text at all: empty slice, nil error
//
// A nil error with no segments means "nothing to transcribe", which is a
// valid terminal state, not a failure.
func (s *Service) TranscribeBuffer(ctx context.Context, audio []byte, mimeType, file, session string) ([]models.Segment, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	mimeType = stt.NormalizeMimeType(mimeType)
	flog := logging.WithFile(session, file)
	flog.Info().
		Str("provider", s.adapter.Name()).
		Int("bytes", len(audio)).
		Str("mimetype", mimeType).
		Msg("Transcribing audio")

	s.metrics.AudioBytesReceived.Add(float64(len(audio)))

	start := time.Now()
	result, err := s.adapter.Transcribe(ctx, audio, mimeType)
	s.metrics.RecordTranscription(s.adapter.Name(), err, time.Since(start).Seconds())
	if err != nil {
		flog.Error().Err(err).Str("provider", s.adapter.Name()).Msg("Transcription failed")
		return nil, fmt.Errorf("transcribe %s: %w", file, err)
	}

	if len(result.Words) > 0 {
		segs := segmenter.Group(result.Words, file, session, s.params)
		s.metrics.RecordSegments(len(segs))
		flog.Info().Int("words", len(result.Words)).Int("segments", len(segs)).Msg("Segments produced")
		return segs, nil
	}

	if result.Transcript != "" {
		flog.Warn().Msg("No word timings; using single fallback segment")
		s.metrics.FallbackSegments.Inc()
		return []models.Segment{{
			Start:   0.0,
			End:     0.0,
			Text:    result.Transcript,
			File:    file,
			Session: session,
		}}, nil
	}

	flog.Info().Msg("No transcript text returned")
	s.metrics.EmptyTranscripts.Inc()
	return nil, nil
}
