package assembly

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apresai/podcast-studio/internal/progress"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/storage"
	"github.com/apresai/podcast-studio/internal/tts"
)

// fakeProvider wraps each text in an ID3v2 header and an ID3v1 trailer so
// tests can check both stripping and ordering on the combined file.
type fakeProvider struct {
	mu     sync.Mutex
	fail   map[string]bool
	block  bool
	format tts.AudioFormat
	calls  []tts.Voice
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Synthesize(ctx context.Context, text string, voice tts.Voice) (tts.AudioResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, voice)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return tts.AudioResult{}, ctx.Err()
	}
	if f.fail[text] {
		return tts.AudioResult{}, errors.New("provider rejected text")
	}
	format := f.format
	if format == "" {
		format = tts.FormatMP3
	}
	return tts.AudioResult{Data: tagged(marker(text)), Format: format}, nil
}

func (f *fakeProvider) Voices() []tts.VoiceInfo { return nil }
func (f *fakeProvider) Close() error            { return nil }

func marker(text string) []byte { return []byte("<" + text + ">") }

func tagged(body []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 6})
	b.WriteString("pad123")
	b.Write(body)
	trailer := make([]byte, 128)
	copy(trailer, "TAG")
	b.Write(trailer)
	return b.Bytes()
}

var testVoices = tts.NewVoiceTable([]tts.VoiceInfo{
	{ID: "en-IN-NeerjaNeural", Gender: script.GenderFemale, Language: "English"},
	{ID: "en-IN-PrabhatNeural", Gender: script.GenderMale, Language: "English"},
})

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAssembler(t *testing.T, p tts.Provider, opts ...Option) (*Assembler, *storage.Workspace) {
	t.Helper()
	out, err := storage.NewOutput(t.TempDir(), "/audio", true)
	if err != nil {
		t.Fatal(err)
	}
	ws, err := out.NewWorkspace()
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewAssembler(NewSynthesizer(p, 0), testVoices, opts...), ws
}

func lines(texts ...string) []script.Line {
	out := make([]script.Line, len(texts))
	for i, text := range texts {
		out[i] = script.Line{Text: text}
	}
	return script.Alternate(out)
}

func readCombined(t *testing.T, res *Result) []byte {
	t.Helper()
	if res.Combined == nil {
		t.Fatal("no combined artifact")
	}
	data, err := os.ReadFile(res.Combined.Path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestAssemblePreservesOrder(t *testing.T) {
	a, ws := newTestAssembler(t, &fakeProvider{})
	texts := []string{"one", "two", "three", "four", "five"}

	res, err := a.Assemble(context.Background(), Request{Script: lines(texts...), Workspace: ws})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Segments) != len(texts) {
		t.Fatalf("segments = %d, want %d", len(res.Segments), len(texts))
	}

	var want []byte
	for i, text := range texts {
		want = append(want, marker(text)...)
		if res.Segments[i].Text != text || res.Segments[i].Filename != SegmentFilename(i, res.Segments[i].Name) {
			t.Fatalf("segment %d = %+v", i, res.Segments[i])
		}
	}
	if got := readCombined(t, res); !bytes.Equal(got, want) {
		t.Fatalf("combined = %q, want %q", got, want)
	}
	if res.Combined.Size != int64(len(want)) {
		t.Fatalf("size = %d", res.Combined.Size)
	}
}

func TestAssembleSkipsFailedLine(t *testing.T) {
	p := &fakeProvider{fail: map[string]bool{"two": true}}
	a, ws := newTestAssembler(t, p)

	res, err := a.Assemble(context.Background(), Request{Script: lines("one", "two", "three"), Workspace: ws})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Segments) != 2 || res.Failed() != 1 {
		t.Fatalf("segments = %d failed = %d", len(res.Segments), res.Failed())
	}

	var synthErr *SynthesisError
	if !errors.As(res.Lines[1].Err, &synthErr) || synthErr.Index != 1 {
		t.Fatalf("line 1 err = %v", res.Lines[1].Err)
	}
	want := append(marker("one"), marker("three")...)
	if got := readCombined(t, res); !bytes.Equal(got, want) {
		t.Fatalf("combined = %q, want %q", got, want)
	}
	// Index follows the script position, so the failed slot is a gap.
	if res.Segments[1].Filename != "audio_2_Priya.mp3" {
		t.Fatalf("filename = %s", res.Segments[1].Filename)
	}
}

func TestAssembleZeroSuccessClearsStaleCombined(t *testing.T) {
	p := &fakeProvider{fail: map[string]bool{"one": true, "two": true}}
	a, ws := newTestAssembler(t, p)
	if err := ws.WriteFile(DefaultCombinedName, []byte("old run")); err != nil {
		t.Fatal(err)
	}

	res, err := a.Assemble(context.Background(), Request{Script: lines("one", "two"), Workspace: ws})
	if err != nil {
		t.Fatalf("zero success should not error: %v", err)
	}
	if len(res.Segments) != 0 || res.Combined != nil {
		t.Fatalf("result = %+v", res)
	}
	if _, err := os.Stat(ws.Path(DefaultCombinedName)); !os.IsNotExist(err) {
		t.Fatalf("stale combined file still present: %v", err)
	}
}

func TestAssembleCombineFailureKeepsSegments(t *testing.T) {
	a, ws := newTestAssembler(t, &fakeProvider{})
	if err := os.Mkdir(ws.Path(DefaultCombinedName), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := a.Assemble(context.Background(), Request{Script: lines("one", "two"), Workspace: ws})
	if err != nil {
		t.Fatalf("combine failure must not fail the request: %v", err)
	}
	if res.Combined != nil {
		t.Fatalf("combined = %+v", res.Combined)
	}
	var ce *CombineError
	if !errors.As(res.CombineErr, &ce) {
		t.Fatalf("CombineErr = %v", res.CombineErr)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segments = %d", len(res.Segments))
	}
	for _, seg := range res.Segments {
		if _, err := os.Stat(ws.Path(seg.Filename)); err != nil {
			t.Fatalf("segment %s: %v", seg.Filename, err)
		}
	}
}

func TestAssembleSkipsBlankLines(t *testing.T) {
	p := &fakeProvider{}
	a, ws := newTestAssembler(t, p)

	res, err := a.Assemble(context.Background(), Request{Script: lines("one", "  ", "three"), Workspace: ws})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 2 || len(res.Lines) != 2 {
		t.Fatalf("calls = %d lines = %d", len(p.calls), len(res.Lines))
	}
	if res.Lines[1].Index != 2 {
		t.Fatalf("index = %d", res.Lines[1].Index)
	}
}

func TestAssembleVoiceOverride(t *testing.T) {
	p := &fakeProvider{}
	a, ws := newTestAssembler(t, p)

	_, err := a.Assemble(context.Background(), Request{
		Script:         lines("a", "b", "c", "d"),
		FirstHostVoice: "hi-IN-SwaraNeural",
		Workspace:      ws,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range p.calls {
		want := "en-IN-PrabhatNeural"
		if i%2 == 0 {
			want = "hi-IN-SwaraNeural"
		}
		if v.ID != want {
			t.Fatalf("call %d voice = %s, want %s", i, v.ID, want)
		}
	}
}

func TestAssembleTwoLineScenario(t *testing.T) {
	a, ws := newTestAssembler(t, &fakeProvider{})
	req := Request{
		Script: []script.Line{
			{Speaker: script.FirstHost, Text: "Hello there"},
			{Speaker: script.SecondHost, Text: "Indeed, hello"},
		},
		Workspace: ws,
	}

	res, err := a.Assemble(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segments = %d", len(res.Segments))
	}
	if res.Segments[0].Speaker != script.FirstHost || res.Segments[1].Speaker != script.SecondHost {
		t.Fatalf("speakers = %s, %s", res.Segments[0].Speaker, res.Segments[1].Speaker)
	}
	if res.Segments[0].Voice != "en-IN-NeerjaNeural" || res.Segments[1].Voice != "en-IN-PrabhatNeural" {
		t.Fatalf("voices = %s, %s", res.Segments[0].Voice, res.Segments[1].Voice)
	}
	if res.Combined == nil || res.Combined.Size <= 0 {
		t.Fatalf("combined = %+v", res.Combined)
	}
	if !strings.HasPrefix(res.Combined.URL, "/audio/"+ws.ID+"/") {
		t.Fatalf("url = %s", res.Combined.URL)
	}
}

func TestAssembleCancelled(t *testing.T) {
	a, ws := newTestAssembler(t, &fakeProvider{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Assemble(ctx, Request{Script: lines("one"), Workspace: ws}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestAssembleReportsProgress(t *testing.T) {
	var stages []progress.Stage
	a, ws := newTestAssembler(t, &fakeProvider{}, WithProgress(func(ev progress.Event) {
		stages = append(stages, ev.Stage)
	}))

	if _, err := a.Assemble(context.Background(), Request{Script: lines("one", "two"), Workspace: ws}); err != nil {
		t.Fatal(err)
	}
	want := []progress.Stage{progress.StageSynthesis, progress.StageSynthesis, progress.StageCombine, progress.StageComplete}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v", stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stages = %v", stages)
		}
	}
}

func TestSynthesizerTimeout(t *testing.T) {
	out, err := storage.NewOutput(t.TempDir(), "/audio", false)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSynthesizer(&fakeProvider{block: true}, 20*time.Millisecond)
	sel := tts.Resolve(script.FirstHost, "", testVoices)

	_, err = s.Synthesize(context.Background(), out.Shared(), "hi", 0, sel)
	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestSynthesizerRejectsNonMP3(t *testing.T) {
	out, err := storage.NewOutput(t.TempDir(), "/audio", false)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSynthesizer(&fakeProvider{format: tts.FormatPCM}, 0)
	sel := tts.Resolve(script.SecondHost, "", testVoices)

	if _, err := s.Synthesize(context.Background(), out.Shared(), "hi", 0, sel); err == nil {
		t.Fatal("expected error for pcm audio")
	}
}

func TestEstimates(t *testing.T) {
	if got := EstimateDuration(32 * 1024); got != 2 {
		t.Fatalf("duration = %v", got)
	}
	if got := SizeMB(1572864); got != 1.5 {
		t.Fatalf("size = %v", got)
	}
}
