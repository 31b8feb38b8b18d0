package script

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apresai/podcast-studio/internal/llm"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	last  llm.Request
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"":           FirstHost,
		"P1":         FirstHost,
		" priya ":    FirstHost,
		"First Host": FirstHost,
		"P2":         SecondHost,
		"Arjun":      SecondHost,
		"narrator":   SecondHost,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLineSpeakerDecoding(t *testing.T) {
	var lines []Line
	body := `[{"speaker":"Priya","text":"a"},{"speaker":"someone","text":"b"},{"text":"c"}]`
	if err := json.Unmarshal([]byte(body), &lines); err != nil {
		t.Fatal(err)
	}
	want := []Role{FirstHost, SecondHost, FirstHost}
	for i, l := range lines {
		if l.Speaker != want[i] {
			t.Fatalf("line %d speaker = %s", i, l.Speaker)
		}
	}
	if HostFor(lines[2].Speaker).Name != "Priya" {
		t.Fatalf("missing speaker should be the first host")
	}
}

func TestAlternateIgnoresModelSpeakers(t *testing.T) {
	in := []Line{
		{Speaker: SecondHost, Text: "a"},
		{Speaker: SecondHost, Text: "b"},
		{Speaker: FirstHost, Text: "c"},
	}
	out := Alternate(in)
	want := []Role{FirstHost, SecondHost, FirstHost}
	for i := range out {
		if out[i].Speaker != want[i] || out[i].Text != in[i].Text {
			t.Fatalf("line %d = %+v", i, out[i])
		}
	}
}

func TestParseResponseEnvelopes(t *testing.T) {
	cases := map[string]string{
		"script":       `{"script":[{"speaker":"P1","text":"hi"},{"speaker":"P2","text":"yo"}]}`,
		"array":        `[{"speaker":"P1","text":"hi"},{"speaker":"P2","text":"yo"}]`,
		"conversation": `{"conversation":[{"text":"hi"},{"text":"yo"}]}`,
		"dialog":       `{"dialog":[{"text":"hi"},{"text":"yo"}]}`,
		"fenced":       "Here you go:\n```json\n{\"script\":[{\"text\":\"hi\"},{\"text\":\"yo\"}]}\n```",
		"prose":        "Sure! {\"script\":[{\"text\":\"hi\"},{\"text\":\"yo\"}]} Enjoy.",
	}
	for name, body := range cases {
		lines, err := ParseResponse(body)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(lines) != 2 || lines[0].Text != "hi" || lines[1].Text != "yo" {
			t.Fatalf("%s: lines = %+v", name, lines)
		}
	}
}

func TestParseResponseToleratesLooseLines(t *testing.T) {
	body := `{"script":[{"speaker":null,"text":"hi"},{"speaker":2},{"speaker":"P2","text":null},{"text":"yo"}]}`
	lines, err := ParseResponse(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 4 || lines[0].Text != "hi" || !lines[1].Blank() || !lines[2].Blank() || lines[3].Text != "yo" {
		t.Fatalf("lines = %+v", lines)
	}
	if lines[0].Speaker != FirstHost || lines[1].Speaker != FirstHost {
		t.Fatalf("speakers = %s, %s", lines[0].Speaker, lines[1].Speaker)
	}
}

func TestParseResponseRejects(t *testing.T) {
	for _, body := range []string{
		"",
		"no json here",
		`{"script":"not a list"}`,
		`{"other":[]}`,
		`[]`,
	} {
		if _, err := ParseResponse(body); err == nil {
			t.Errorf("ParseResponse(%q) should fail", body)
		}
	}
}

func TestGenerateAlternates(t *testing.T) {
	fake := &fakeCompleter{reply: `{"script":[{"speaker":"P2","text":"one"},{"speaker":"P2","text":"two"}]}`}
	lines, err := NewGenerator(fake).Generate(context.Background(), strings.Repeat("x", 5000))
	if err != nil {
		t.Fatal(err)
	}
	if lines[0].Speaker != FirstHost || lines[1].Speaker != SecondHost {
		t.Fatalf("lines = %+v", lines)
	}
	if !fake.last.JSON || fake.last.Temperature != 0.7 {
		t.Fatalf("request = %+v", fake.last)
	}
	if strings.Count(fake.last.Prompt, "x") != maxScriptSource {
		t.Fatalf("content not capped at %d chars", maxScriptSource)
	}
}

func TestGenerateWrapsCompleterError(t *testing.T) {
	boom := errors.New("rate limited")
	_, err := NewGenerator(&fakeCompleter{err: boom}).Generate(context.Background(), "topic")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.json")
	in := &Script{Lines: []Line{{Speaker: FirstHost, Text: "hello"}, {Speaker: SecondHost, Text: "hi"}}}
	if err := SaveScript(in, path); err != nil {
		t.Fatal(err)
	}
	out, err := LoadScript(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Lines) != 2 || out.Lines[1].Speaker != SecondHost {
		t.Fatalf("loaded = %+v", out)
	}

	if err := SaveScript(&Script{}, path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScript(path); err == nil {
		t.Fatal("empty script should fail to load")
	}
}
