package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/apresai/podcast-studio/internal/pipeline"
	"github.com/apresai/podcast-studio/internal/script"
)

var tracer = otel.Tracer("podcast-studio/mcp")

// ToolDefs returns the MCP tool definitions.
func ToolDefs() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "generate_podcast_audio",
			Description: "Synthesize a two-host script into one MP3. Lines that fail to synthesize are left out; the response reports how many failed.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"script": map[string]any{
						"type":        "array",
						"description": "Ordered dialogue lines. speaker is P1 (Priya) or P2 (Arjun); a missing speaker means P1.",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"speaker": map[string]any{"type": "string"},
								"text":    map[string]any{"type": "string"},
							},
							"required": []string{"text"},
						},
					},
					"first_host_voice": map[string]any{
						"type":        "string",
						"description": "Voice id for P1, used verbatim. Defaults to the English female voice.",
					},
					"second_host_voice": map[string]any{
						"type":        "string",
						"description": "Voice id for P2, used verbatim. Defaults to the English male voice.",
					},
				},
				Required: []string{"script"},
			},
		},
		{
			Name:        "preview_voice",
			Description: "Render a short sample sentence with one voice.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"voice_id": map[string]any{
						"type":        "string",
						"description": "Voice id from list_voices",
					},
					"text": map[string]any{
						"type":        "string",
						"description": "Sample text. Defaults to a sentence in the voice's language.",
					},
				},
				Required: []string{"voice_id"},
			},
		},
		{
			Name:        "list_voices",
			Description: "List voice ids by language and gender.",
			InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
		},
		{
			Name:        "get_podcast",
			Description: "Get the recorded details of an assembled podcast by request id.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"podcast_id": map[string]any{
						"type":        "string",
						"description": "The request_id returned from generate_podcast_audio",
					},
				},
				Required: []string{"podcast_id"},
			},
		},
		{
			Name:        "list_podcasts",
			Description: "List assembled podcasts, newest first.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default 20)",
						"default":     20,
					},
					"cursor": map[string]any{
						"type":        "string",
						"description": "Pagination cursor from a previous list_podcasts call",
					},
				},
			},
		},
	}
}

// Handlers contains tool handler implementations.
type Handlers struct {
	audio    AudioService
	episodes EpisodeReader
	log      *slog.Logger
}

func NewHandlers(audio AudioService, eps EpisodeReader, logger *slog.Logger) *Handlers {
	return &Handlers{audio: audio, episodes: eps, log: logger}
}

// HandleGenerateAudio assembles a podcast from the supplied script.
func (h *Handlers) HandleGenerateAudio(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.generate_podcast_audio")
	defer span.End()

	lines, err := parseScript(req)
	if err != nil {
		span.SetStatus(codes.Error, "bad script")
		return mcp.NewToolResultError(err.Error()), nil
	}
	span.SetAttributes(attribute.Int("lines", len(lines)))

	resp, err := h.audio.GenerateAudio(ctx, pipeline.AudioRequest{
		Script:          lines,
		FirstHostVoice:  mcp.ParseString(req, "first_host_voice", ""),
		SecondHostVoice: mcp.ParseString(req, "second_host_voice", ""),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate audio: %v", err)), nil
	}

	span.SetAttributes(
		attribute.String("request_id", resp.RequestID),
		attribute.Int("failed_lines", resp.FailedLines),
	)
	h.log.InfoContext(ctx, "podcast audio generated via mcp",
		"request_id", resp.RequestID, "segments", len(resp.AudioSegments), "failed_lines", resp.FailedLines)

	return jsonResult(resp)
}

// parseScript decodes the script argument through the same JSON path the
// HTTP API uses, so speaker labels normalize identically.
func parseScript(req mcp.CallToolRequest) ([]script.Line, error) {
	raw, ok := req.GetArguments()["script"]
	if !ok {
		return nil, fmt.Errorf("script is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	var lines []script.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("script must be an array of {speaker, text}: %w", err)
	}
	return lines, nil
}

func (h *Handlers) HandlePreviewVoice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.preview_voice")
	defer span.End()

	voiceID := mcp.ParseString(req, "voice_id", "")
	span.SetAttributes(attribute.String("voice", voiceID))

	resp, err := h.audio.Preview(ctx, voiceID, mcp.ParseString(req, "text", ""))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "preview failed")
		return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", err)), nil
	}
	return jsonResult(resp)
}

func (h *Handlers) HandleListVoices(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"voices": h.audio.Voices()})
}

// HandleGetPodcast returns the recorded episode.
func (h *Handlers) HandleGetPodcast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.get_podcast")
	defer span.End()

	id := mcp.ParseString(req, "podcast_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing podcast_id")
		return mcp.NewToolResultError("podcast_id is required"), nil
	}
	span.SetAttributes(attribute.String("podcast_id", id))

	ep, err := h.episodes.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get podcast failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get podcast: %v", err)), nil
	}
	if ep == nil {
		span.SetStatus(codes.Error, "not found")
		return mcp.NewToolResultError(fmt.Sprintf("podcast %s not found", id)), nil
	}

	result := map[string]any{
		"podcast_id":   ep.RequestID,
		"status":       ep.Status,
		"segments":     ep.Segments,
		"failed_lines": ep.FailedLines,
		"created_at":   ep.CreatedAt,
	}
	if ep.AudioURL != "" {
		result["audio_url"] = ep.AudioURL
	}
	if ep.MirrorURL != "" {
		result["mirror_url"] = ep.MirrorURL
	}
	if ep.DurationSec > 0 {
		result["duration_seconds"] = ep.DurationSec
	}
	if ep.FileSizeMB > 0 {
		result["file_size_mb"] = ep.FileSizeMB
	}
	if ep.TTSProvider != "" {
		result["tts_provider"] = ep.TTSProvider
	}
	return jsonResult(result)
}

// HandleListPodcasts returns a page of episodes.
func (h *Handlers) HandleListPodcasts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.list_podcasts")
	defer span.End()

	limit := parseIntParam(req, "limit", 20)
	cursor := mcp.ParseString(req, "cursor", "")
	span.SetAttributes(attribute.Int("limit", limit))

	items, next, err := h.episodes.List(ctx, limit, cursor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list podcasts failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list podcasts: %v", err)), nil
	}

	podcasts := make([]map[string]any, 0, len(items))
	for _, ep := range items {
		p := map[string]any{
			"podcast_id": ep.RequestID,
			"status":     ep.Status,
			"created_at": ep.CreatedAt,
		}
		if ep.AudioURL != "" {
			p["audio_url"] = ep.AudioURL
		}
		podcasts = append(podcasts, p)
	}

	result := map[string]any{
		"podcasts": podcasts,
		"count":    len(podcasts),
	}
	if next != "" {
		result["next_cursor"] = next
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parseIntParam(req mcp.CallToolRequest, key string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultVal
	}
}
