// Package llm wraps the hosted completion endpoints used for research,
// summaries and dialogue drafting.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Request is a single-turn completion.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks the backend to return a JSON object when it supports it.
	JSON bool
}

// Completer returns the text of one model completion.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Keys carries API credentials for the HTTP-based backends.
type Keys struct {
	Groq      string
	Anthropic string
	Gemini    string
}

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	backoffMult    = 2
)

// New creates a completer by backend name. model may be empty to use the
// backend default. awsCfg is only needed for nova.
func New(backend, model string, keys Keys, awsCfg *aws.Config) (Completer, error) {
	switch backend {
	case "", "groq":
		return NewGroq(model, keys.Groq), nil
	case "claude":
		return NewClaude(model, keys.Anthropic), nil
	case "gemini":
		return NewGemini(model, keys.Gemini), nil
	case "nova":
		if awsCfg == nil {
			return nil, fmt.Errorf("nova backend requires AWS configuration")
		}
		return NewNova(model, *awsCfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q: choose groq, claude, gemini, or nova", backend)
	}
}

// withRetries runs call up to maxRetries times with exponential backoff.
// An empty completion counts as a failure.
func withRetries(ctx context.Context, name string, call func() (string, error)) (string, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		text, err := call()
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%s API error (attempt %d/%d): %w", name, attempt, maxRetries, err)
		case text == "":
			lastErr = fmt.Errorf("empty response from %s (attempt %d/%d)", name, attempt, maxRetries)
		default:
			return text, nil
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= time.Duration(backoffMult)
		}
	}

	return "", lastErr
}
