package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRenderBar(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{0, "[....]"},
		{0.5, "[##..]"},
		{1, "[####]"},
		{2, "[####]"},
		{-1, "[....]"},
	}
	for _, c := range cases {
		if got := renderBar(c.pct, 4); got != c.want {
			t.Errorf("renderBar(%v) = %q, want %q", c.pct, got, c.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(75 * time.Second); got != "1:15" {
		t.Fatalf("got %q", got)
	}
}

func TestPlainRendererSummary(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false, 80)

	r.Handle(Event{Stage: StageSynthesis, Message: "Synthesizing line 1/2 (Priya)"})
	r.Handle(Event{
		Stage:       StageComplete,
		Message:     "done",
		LineTotal:   2,
		Failed:      1,
		OutputFile:  "out/combined_podcast.mp3",
		SizeMB:      1.25,
		DurationSec: 80,
	})
	r.Finish()

	out := buf.String()
	for _, want := range []string{
		"Synthesizing line 1/2 (Priya)",
		"Podcast saved to out/combined_podcast.mp3 (1.25 MB, ~1:20)",
		"1 synthesized, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
