// Package segmenter groups a chronological word stream into speaker-aware,
// duration-bounded segments suitable for independent retrieval and playback.
package segmenter

import (
	"strings"

	"voice-archive-search/internal/models"
)

// Params controls where segment boundaries are placed.
type Params struct {
	// MaxGap is the maximum silence (seconds) allowed between two
	// consecutive words inside one segment.
	MaxGap float64
	// MaxDuration is the maximum segment span in seconds. A segment may
	// exceed it by the span of the final word, since the check runs on
	// the word being considered for inclusion and never trims
	// retroactively.
	MaxDuration float64
}

// DefaultParams returns the standard boundary parameters.
func DefaultParams() Params {
	return Params{MaxGap: 1.0, MaxDuration: 20.0}
}

// Group partitions words into segments with a single greedy forward pass.
// A new segment starts whenever the silence gap exceeds MaxGap, the
// running duration exceeds MaxDuration, or the speaker label changes.
// Word order is preserved and every word lands in exactly one segment.
//
// Word timing is not validated; malformed input (End < Start) flows
// through as-is. An empty word list yields an empty result - the caller
// owns the whole-transcript fallback.
func Group(words []models.Word, file, session string, p Params) []models.Segment {
	if len(words) == 0 {
		return nil
	}

	var segments []models.Segment
	var buf []models.Word
	var segStart float64
	var segSpeaker string

	flush := func() {
		texts := make([]string, len(buf))
		for i, w := range buf {
			texts[i] = w.Text
		}
		segments = append(segments, models.Segment{
			Speaker: segSpeaker,
			Start:   segStart,
			End:     buf[len(buf)-1].End,
			Text:    strings.Join(texts, " "),
			File:    file,
			Session: session,
		})
	}

	for _, w := range words {
		if len(buf) == 0 {
			buf = []models.Word{w}
			segStart = w.Start
			segSpeaker = w.Speaker
			continue
		}

		gap := w.Start - buf[len(buf)-1].End
		duration := w.End - segStart

		if gap > p.MaxGap || duration > p.MaxDuration || w.Speaker != segSpeaker {
			flush()
			buf = []models.Word{w}
			segStart = w.Start
			segSpeaker = w.Speaker
		} else {
			buf = append(buf, w)
		}
	}

	flush()
	return segments
}
