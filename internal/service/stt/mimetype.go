package stt

import (
	"mime"
	"path/filepath"
	"strings"
)

// MimeWAV and MimeMPEG are the canonical audio types sent to providers.
const (
	MimeWAV    = "audio/wav"
	MimeMPEG   = "audio/mpeg"
	MimeBinary = "application/octet-stream"
)

var (
	wavAliases = map[string]bool{
		"audio/wav": true, "audio/x-wav": true, "audio/wave": true,
		"audio/x-pn-wav": true, "audio/vnd.wave": true,
	}
	mp3Aliases = map[string]bool{
		"audio/mpeg": true, "audio/mp3": true, "audio/mpeg3": true,
		"audio/x-mp3": true, "audio/x-mpeg": true,
	}
	wavExts = map[string]bool{".wav": true, ".wave": true, ".wav64": true, ".bwav": true}
)

// NormalizeMimeType collapses the many WAV and MP3 aliases onto one
// canonical type each. Other types pass through lowercased; empty input
// stays empty.
func NormalizeMimeType(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	// Strip parameters like "; charset=..."
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case wavAliases[mt]:
		return MimeWAV
	case mp3Aliases[mt]:
		return MimeMPEG
	default:
		return mt
	}
}

// GuessMimeType detects the content type of an audio file from its name,
// normalizing aliases and falling back to extension checks, then to a
// generic binary type.
func GuessMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt := mime.TypeByExtension(ext); mt != "" {
		return NormalizeMimeType(mt)
	}
	if wavExts[ext] {
		return MimeWAV
	}
	if ext == ".mp3" {
		return MimeMPEG
	}
	return MimeBinary
}
