package script

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/apresai/podcast-studio/internal/llm"
)

const (
	temperature = 0.7
	maxTokens   = 3000
)

// responseSchema accepts the envelopes models actually return: a bare array
// of lines, or an object holding the lines under one of several keys. Speakers
// are reassigned by Alternate, so their shape is not checked; a missing text
// becomes a blank line that assembly skips.
const responseSchema = `{
  "$defs": {
    "lines": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "text": {"type": ["string", "null"]}
        }
      }
    }
  },
  "oneOf": [
    {"$ref": "#/$defs/lines"},
    {
      "type": "object",
      "properties": {
        "script": {"$ref": "#/$defs/lines"},
        "conversation": {"$ref": "#/$defs/lines"},
        "dialog": {"$ref": "#/$defs/lines"}
      }
    }
  ]
}`

var compiledSchema = jsonschema.MustCompileString("script-response.json", responseSchema)

// Generator drafts a two-host dialogue with a completion backend.
type Generator struct {
	llm llm.Completer
}

func NewGenerator(c llm.Completer) *Generator {
	return &Generator{llm: c}
}

// Generate asks the model for a dialogue and force-alternates the speakers.
func (g *Generator) Generate(ctx context.Context, content string) ([]Line, error) {
	text, err := g.llm.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserPrompt(content),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	lines, err := ParseResponse(text)
	if err != nil {
		return nil, err
	}
	return Alternate(lines), nil
}

// ParseResponse extracts dialogue lines from raw model output.
func ParseResponse(text string) ([]Line, error) {
	text = strings.TrimSpace(extractJSON(stripMarkdownFences(text)))
	if text == "" {
		return nil, fmt.Errorf("no JSON content found in response")
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w\nRaw text (first 500 chars): %s", err, truncate(text, 500))
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("unexpected script shape: %w", err)
	}

	var envelope struct {
		Script       []Line `json:"script"`
		Conversation []Line `json:"conversation"`
		Dialog       []Line `json:"dialog"`
	}
	if _, ok := doc.([]any); ok {
		if err := json.Unmarshal([]byte(text), &envelope.Script); err != nil {
			return nil, fmt.Errorf("decode lines: %w", err)
		}
		if len(envelope.Script) == 0 {
			return nil, fmt.Errorf("response contained no script lines")
		}
		return envelope.Script, nil
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("decode lines: %w", err)
	}
	var lines []Line
	switch {
	case envelope.Script != nil:
		lines = envelope.Script
	case envelope.Conversation != nil:
		lines = envelope.Conversation
	default:
		lines = envelope.Dialog
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("response contained no script lines")
	}
	return lines, nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

func stripMarkdownFences(text string) string {
	if matches := fenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}

// extractJSON trims prose around the outermost object or array.
func extractJSON(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end > start {
		return text[start : end+1]
	}
	return text
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
