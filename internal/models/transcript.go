// Package models defines the data structures flowing through the archive pipeline.
package models

// SpeakerUnknown is the metadata placeholder for segments without a speaker label.
const SpeakerUnknown = "unknown"

// Word is a single transcribed token with timing and an optional speaker label.
// Words come from an STT provider via the transcription adapter; they are
// never constructed from provider SDK types outside that adapter.
type Word struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`             // seconds, inclusive
	End     float64 `json:"end"`               // seconds, >= Start
	Speaker string  `json:"speaker,omitempty"` // empty means unknown
}

// Segment is the unit of indexing, retrieval and playback: a speaker- and
// time-bounded chunk of transcript text.
type Segment struct {
	Speaker string  `json:"speaker,omitempty"` // carried from the first constituent word
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	File    string  `json:"file"`
	Session string  `json:"session"`
}

// SegmentMetadata is the metadata stored alongside each vector.
type SegmentMetadata struct {
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	File    string  `json:"file"`
	Session string  `json:"session"`
}

// Metadata converts a segment into its vector-store metadata form.
// An absent speaker label becomes the "unknown" placeholder.
func (s Segment) Metadata() SegmentMetadata {
	speaker := s.Speaker
	if speaker == "" {
		speaker = SpeakerUnknown
	}
	return SegmentMetadata{
		Text:    s.Text,
		Speaker: speaker,
		Start:   s.Start,
		End:     s.End,
		File:    s.File,
		Session: s.Session,
	}
}

// IndexRecord is one upsert payload: a deterministic ID, the embedding
// vector and the segment metadata. Upserting the same ID overwrites.
type IndexRecord struct {
	ID       string          `json:"id"`
	Vector   []float64       `json:"vector"`
	Metadata SegmentMetadata `json:"metadata"`
}

// Match is a ranked retrieval result. Score is a similarity, higher is better.
type Match struct {
	ID       string          `json:"id"`
	Score    float64         `json:"score"`
	Metadata SegmentMetadata `json:"metadata"`
}
