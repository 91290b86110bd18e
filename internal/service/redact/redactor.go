// Package redact masks common PII token shapes in transcript text before
// anything is embedded or indexed. Redaction is lexical and best-effort:
// fixed regular expressions, fixed placeholders, no semantic detection.
package redact

import (
	"regexp"

	"voice-archive-search/internal/models"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rule order matters: later patterns see the already-substituted string,
// so card detection must run before the looser phone pattern. A 13+ digit
// run that could read as either is always tagged [CARD].
var rules = []rule{
	// Card numbers: 13-16 digits, spaces or hyphens allowed between them.
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`), "[CARD]"},
	// US SSN shape NNN-NN-NNNN.
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	// Email-shaped tokens.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL]"},
	// Phone numbers, loose: optional +, digits mixed with separators.
	// RE2 cannot express a not-preceded-by-digit lookbehind here; the
	// card rule running first already tags 13+ digit runs, so this
	// looser match never swallows part of a card number.
	{regexp.MustCompile(`(\+?\d[\d\s\-().]{8,}\d)`), "[PHONE]"},
	// Dotted-quad IPv4 shapes.
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "[IP]"},
}

// Redactor applies the fixed rule list to text. It holds no mutable state
// and is safe for concurrent use.
type Redactor struct {
	enabled bool
}

// New returns a redactor. When disabled, text passes through unchanged.
func New(enabled bool) *Redactor {
	return &Redactor{enabled: enabled}
}

// Enabled reports whether redaction is active.
func (r *Redactor) Enabled() bool {
	return r.enabled
}

// Redact masks every non-overlapping PII match in text.
func (r *Redactor) Redact(text string) string {
	if !r.enabled {
		return text
	}
	redacted := text
	for _, ru := range rules {
		redacted = ru.pattern.ReplaceAllString(redacted, ru.replacement)
	}
	return redacted
}

// RedactSegments returns new segment values with redacted text. Speaker,
// timing, file and session are copied unchanged.
func (r *Redactor) RedactSegments(segments []models.Segment) []models.Segment {
	if !r.enabled {
		return segments
	}
	out := make([]models.Segment, len(segments))
	for i, s := range segments {
		s.Text = r.Redact(s.Text)
		out[i] = s
	}
	return out
}
