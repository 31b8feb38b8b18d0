package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/apresai/podcast-studio/internal/episodes"
	"github.com/apresai/podcast-studio/internal/pipeline"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/tts"
)

type fakeAudio struct {
	got     pipeline.AudioRequest
	preview error
}

func (f *fakeAudio) GenerateAudio(_ context.Context, req pipeline.AudioRequest) (*pipeline.AudioResponse, error) {
	f.got = req
	url := "/audio/01J/combined_podcast.mp3"
	return &pipeline.AudioResponse{RequestID: "01J", CombinedAudioURL: &url, Message: "ok"}, nil
}

func (f *fakeAudio) Preview(_ context.Context, voiceID, text string) (*pipeline.PreviewResponse, error) {
	if f.preview != nil {
		return nil, f.preview
	}
	return &pipeline.PreviewResponse{AudioURL: "/audio/p.mp3", Voice: voiceID, Text: text}, nil
}

func (f *fakeAudio) Voices() tts.VoiceTable {
	return tts.VoiceTable{"English": {script.GenderFemale: "en-IN-NeerjaNeural"}}
}

type fakeEpisodes struct {
	items []episodes.Episode
}

func (f *fakeEpisodes) Get(_ context.Context, id string) (*episodes.Episode, error) {
	for i := range f.items {
		if f.items[i].RequestID == id {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

func (f *fakeEpisodes) List(_ context.Context, limit int, _ string) ([]episodes.Episode, string, error) {
	if limit < len(f.items) {
		return f.items[:limit], "next", nil
	}
	return f.items, "", nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return ""
}

func newHandlers(audio *fakeAudio, eps *fakeEpisodes) *Handlers {
	return NewHandlers(audio, eps, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerateAudioTool(t *testing.T) {
	audio := &fakeAudio{}
	h := newHandlers(audio, nil)

	res, err := h.HandleGenerateAudio(context.Background(), callRequest(map[string]any{
		"script": []any{
			map[string]any{"speaker": "P1", "text": "Hi"},
			map[string]any{"text": "no speaker"},
			map[string]any{"speaker": "P2", "text": "Hello"},
		},
		"second_host_voice": "ta-IN-ValluvarNeural",
	}))
	if err != nil || res.IsError {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
	if len(audio.got.Script) != 3 || audio.got.Script[1].Speaker != script.FirstHost || audio.got.Script[2].Speaker != script.SecondHost {
		t.Fatalf("script = %+v", audio.got.Script)
	}
	if audio.got.SecondHostVoice != "ta-IN-ValluvarNeural" {
		t.Fatalf("voice = %q", audio.got.SecondHostVoice)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out["request_id"] != "01J" || out["combined_audio_url"] != "/audio/01J/combined_podcast.mp3" {
		t.Fatalf("out = %v", out)
	}
}

func TestGenerateAudioToolRejectsBadScript(t *testing.T) {
	h := newHandlers(&fakeAudio{}, nil)

	for _, args := range []map[string]any{
		{},
		{"script": "not a list"},
	} {
		res, err := h.HandleGenerateAudio(context.Background(), callRequest(args))
		if err != nil || !res.IsError {
			t.Fatalf("args %v: res = %+v, err = %v", args, res, err)
		}
	}
}

func TestPreviewAndVoicesTools(t *testing.T) {
	audio := &fakeAudio{}
	h := newHandlers(audio, nil)

	res, _ := h.HandlePreviewVoice(context.Background(), callRequest(map[string]any{"voice_id": "en-IN-NeerjaNeural"}))
	if res.IsError {
		t.Fatalf("preview = %s", resultText(t, res))
	}

	audio.preview = errors.New("no such voice")
	res, _ = h.HandlePreviewVoice(context.Background(), callRequest(map[string]any{"voice_id": "x"}))
	if !res.IsError {
		t.Fatal("expected tool error")
	}

	res, _ = h.HandleListVoices(context.Background(), callRequest(nil))
	var out struct {
		Voices tts.VoiceTable `json:"voices"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Voices.Default(script.GenderFemale) != "en-IN-NeerjaNeural" {
		t.Fatalf("voices = %v", out.Voices)
	}
}

func TestPodcastLookupTools(t *testing.T) {
	eps := &fakeEpisodes{items: []episodes.Episode{
		{RequestID: "b", Status: string(episodes.StatusComplete), AudioURL: "/audio/b/combined_podcast.mp3", Segments: 4},
		{RequestID: "a", Status: string(episodes.StatusNoAudio)},
	}}
	h := newHandlers(&fakeAudio{}, eps)

	res, _ := h.HandleGetPodcast(context.Background(), callRequest(map[string]any{"podcast_id": "b"}))
	var got map[string]any
	json.Unmarshal([]byte(resultText(t, res)), &got)
	if got["status"] != "complete" || got["audio_url"] != "/audio/b/combined_podcast.mp3" {
		t.Fatalf("get = %v", got)
	}

	res, _ = h.HandleGetPodcast(context.Background(), callRequest(map[string]any{"podcast_id": "zzz"}))
	if !res.IsError {
		t.Fatal("missing podcast should be a tool error")
	}

	res, _ = h.HandleListPodcasts(context.Background(), callRequest(map[string]any{"limit": float64(1)}))
	var list struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	}
	json.Unmarshal([]byte(resultText(t, res)), &list)
	if list.Count != 1 || list.NextCursor != "next" {
		t.Fatalf("list = %+v", list)
	}
}

func TestNewSkipsEpisodeToolsWithoutStore(t *testing.T) {
	s := New(&fakeAudio{}, nil, nil)
	want := []string{"generate_podcast_audio", "preview_voice", "list_voices"}
	if !slices.Equal(s.Tools(), want) {
		t.Fatalf("tools = %v", s.Tools())
	}

	s = New(&fakeAudio{}, &fakeEpisodes{}, nil)
	if !slices.Contains(s.Tools(), "list_podcasts") {
		t.Fatalf("tools = %v", s.Tools())
	}
}
