package segmenter

import (
	"reflect"
	"strings"
	"testing"

	"voice-archive-search/internal/models"
)

func word(text string, start, end float64, speaker string) models.Word {
	return models.Word{Text: text, Start: start, End: end, Speaker: speaker}
}

func TestGroup_Empty(t *testing.T) {
	segs := Group(nil, "f.wav", "sess", DefaultParams())
	if len(segs) != 0 {
		t.Errorf("expected no segments for empty input, got %d", len(segs))
	}
}

func TestGroup_SingleSegment(t *testing.T) {
	words := []models.Word{
		word("hello", 0, 0.4, "0"),
		word("there", 0.5, 0.9, "0"),
		word("friend", 1.0, 1.4, "0"),
	}

	segs := Group(words, "call.wav", "sess-1", DefaultParams())

	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	s := segs[0]
	if s.Text != "hello there friend" {
		t.Errorf("expected joined text, got %q", s.Text)
	}
	if s.Start != 0 || s.End != 1.4 {
		t.Errorf("expected span [0,1.4], got [%v,%v]", s.Start, s.End)
	}
	if s.Speaker != "0" {
		t.Errorf("expected speaker '0', got %q", s.Speaker)
	}
	if s.File != "call.wav" || s.Session != "sess-1" {
		t.Errorf("file/session not stamped: %+v", s)
	}
}

func TestGroup_GapSplit(t *testing.T) {
	words := []models.Word{
		word("one", 0, 0.2, "A"),
		word("two", 0.5, 0.7, "A"),
		word("three", 5.0, 5.2, "A"), // 4.3s gap forces a split
	}

	segs := Group(words, "f", "s", Params{MaxGap: 1.0, MaxDuration: 20.0})

	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Text != "one two" {
		t.Errorf("expected first segment 'one two', got %q", segs[0].Text)
	}
	if segs[0].End != 0.7 {
		t.Errorf("expected first segment to end at last buffered word, got %v", segs[0].End)
	}
	if segs[1].Text != "three" || segs[1].Start != 5.0 {
		t.Errorf("unexpected second segment: %+v", segs[1])
	}
}

func TestGroup_SpeakerTurnSplit(t *testing.T) {
	words := []models.Word{
		word("hi", 0, 1.0, "A"),
		word("hello", 1.1, 2.0, "B"),
	}

	// Generous gap/duration limits: the split must come from the speaker change.
	segs := Group(words, "f", "s", Params{MaxGap: 100, MaxDuration: 100})

	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Speaker != "A" || segs[1].Speaker != "B" {
		t.Errorf("speakers not carried: %q, %q", segs[0].Speaker, segs[1].Speaker)
	}
}

func TestGroup_DurationSplit(t *testing.T) {
	var words []models.Word
	for i := 0; i < 30; i++ {
		t0 := float64(i)
		words = append(words, word("w", t0, t0+0.9, "A"))
	}

	segs := Group(words, "f", "s", Params{MaxGap: 1.0, MaxDuration: 20.0})

	if len(segs) < 2 {
		t.Fatalf("expected duration cap to split, got %d segments", len(segs))
	}
	// The first word past the cap still joins the next segment untouched.
	for _, s := range segs {
		if s.End-s.Start > 20.0+1.0 {
			t.Errorf("segment span %v exceeds cap by more than one word", s.End-s.Start)
		}
	}
}

// A segment may overshoot MaxDuration by the span of its final word; the
// algorithm never trims retroactively.
func TestGroup_DurationOvershootPreserved(t *testing.T) {
	words := []models.Word{
		word("a", 0, 9.0, "A"),
		word("b", 9.1, 21.0, "A"), // duration 21.0 > 20.0 checked on the NEXT word
	}

	segs := Group(words, "f", "s", Params{MaxGap: 1.0, MaxDuration: 25.0})
	if len(segs) != 1 {
		t.Fatalf("expected single segment, got %d", len(segs))
	}

	// Now with the cap at 20: "b" itself triggers the flush, so "a" closes
	// alone and "b" opens the next segment.
	segs = Group(words, "f", "s", Params{MaxGap: 1.0, MaxDuration: 20.0})
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Text != "a" || segs[1].Text != "b" {
		t.Errorf("unexpected split: %q / %q", segs[0].Text, segs[1].Text)
	}
}

func TestGroup_Deterministic(t *testing.T) {
	words := []models.Word{
		word("a", 0, 0.3, "A"),
		word("b", 0.4, 0.8, "A"),
		word("c", 3.0, 3.4, "B"),
		word("d", 3.5, 3.9, "B"),
	}

	first := Group(words, "f", "s", DefaultParams())
	second := Group(words, "f", "s", DefaultParams())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two invocations differ:\n%+v\n%+v", first, second)
	}
}

// Concatenating all emitted segment texts reconstructs the input words
// exactly: nothing dropped, nothing duplicated.
func TestGroup_Coverage(t *testing.T) {
	words := []models.Word{
		word("the", 0, 0.2, "A"),
		word("quick", 0.3, 0.5, "A"),
		word("fox", 2.5, 2.7, "B"),
		word("jumps", 2.8, 3.0, "B"),
		word("over", 9.0, 9.2, "A"),
	}

	segs := Group(words, "f", "s", DefaultParams())

	var got []string
	for _, s := range segs {
		got = append(got, strings.Fields(s.Text)...)
	}
	want := []string{"the", "quick", "fox", "jumps", "over"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("coverage broken: got %v want %v", got, want)
	}
}

func TestGroup_UnknownSpeaker(t *testing.T) {
	words := []models.Word{
		word("x", 0, 0.2, ""),
		word("y", 0.3, 0.5, ""),
	}

	segs := Group(words, "f", "s", DefaultParams())

	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Speaker != "" {
		t.Errorf("expected empty speaker, got %q", segs[0].Speaker)
	}
	if segs[0].Metadata().Speaker != models.SpeakerUnknown {
		t.Errorf("expected 'unknown' placeholder in metadata")
	}
}
