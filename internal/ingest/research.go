package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/apresai/podcast-studio/internal/llm"
)

const researchSystem = "You are a knowledgeable research assistant."

const researchPrompt = `Provide a comprehensive, well-researched article about: %s

Include:
1. Overview and introduction
2. Key concepts and explanations
3. Important facts and details
4. Real-world examples or applications
5. Current state and future trends

Write in a clear, informative style suitable for a podcast discussion.
Length: 800-1200 words.`

const summarySystem = "You are a helpful summarizer."

const summaryPrompt = `Summarize the following content in a clear, concise way.
Highlight the main topics, key points, and interesting facts.
Keep it under 300 words.

Content:
%s

Summary:`

const (
	maxSummarySource = 4000
	fallbackWords    = 300
)

// Researcher uses a completion backend to write or condense source material.
type Researcher struct {
	llm llm.Completer
}

func NewResearcher(c llm.Completer) *Researcher {
	return &Researcher{llm: c}
}

// Search asks the model for an article on query.
func (r *Researcher) Search(ctx context.Context, query string) (*Content, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, collaboratorErr("search", http.StatusBadRequest, "query must not be empty")
	}
	text, err := r.llm.Complete(ctx, llm.Request{
		System:      researchSystem,
		Prompt:      fmt.Sprintf(researchPrompt, query),
		Temperature: 0.7,
		MaxTokens:   2500,
	})
	if err != nil {
		return nil, &CollaboratorError{Source: "search", Status: http.StatusInternalServerError, Err: err}
	}
	return newContent(text, query, "AI Research: "+query, ""), nil
}

// Summarize condenses content. When the model fails it falls back to the
// first 300 words, so it never returns an error.
func (r *Researcher) Summarize(ctx context.Context, content string) (summary string, fromModel bool) {
	text, err := r.llm.Complete(ctx, llm.Request{
		System:      summarySystem,
		Prompt:      fmt.Sprintf(summaryPrompt, truncateRunes(content, maxSummarySource)),
		Temperature: 0.5,
		MaxTokens:   500,
	})
	if err != nil {
		return FallbackSummary(content), false
	}
	return text, true
}

// FallbackSummary returns the first 300 words of content followed by "...".
func FallbackSummary(content string) string {
	words := strings.Fields(content)
	if len(words) > fallbackWords {
		words = words[:fallbackWords]
	}
	return strings.Join(words, " ") + "..."
}
