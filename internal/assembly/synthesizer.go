package assembly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/storage"
	"github.com/apresai/podcast-studio/internal/tts"
)

var tracer = otel.Tracer("podcast-studio/assembly")

// Segment is one synthesized line, kept on disk as a standalone file.
type Segment struct {
	Index    int         `json:"-"`
	Speaker  script.Role `json:"speaker"`
	Name     string      `json:"name"`
	Gender   string      `json:"gender"`
	Text     string      `json:"text"`
	AudioURL string      `json:"audio_url"`
	Filename string      `json:"filename"`
	Voice    string      `json:"voice"`
}

// SegmentFilename names the file for the line at index.
func SegmentFilename(index int, name string) string {
	return fmt.Sprintf("audio_%d_%s.mp3", index, name)
}

// Synthesizer turns one line into one MP3 file via a TTS provider.
type Synthesizer struct {
	provider tts.Provider
	// timeout bounds a single provider call; zero waits forever.
	timeout time.Duration
}

func NewSynthesizer(provider tts.Provider, timeout time.Duration) *Synthesizer {
	return &Synthesizer{provider: provider, timeout: timeout}
}

func (s *Synthesizer) Provider() tts.Provider { return s.provider }

// Synthesize calls the provider for text and writes the result into ws.
// Any failure is returned as a *SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, ws *storage.Workspace, text string, index int, sel tts.Selection) (*Segment, error) {
	ctx, span := tracer.Start(ctx, "tts.synthesize", trace.WithAttributes(
		attribute.String("tts.provider", s.provider.Name()),
		attribute.String("tts.voice", sel.VoiceID),
		attribute.Int("line.index", index),
		attribute.Int("line.chars", len(text)),
	))
	defer span.End()

	fail := func(err error) (*Segment, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "synthesis failed")
		return nil, &SynthesisError{Index: index, Speaker: sel.Role, Voice: sel.VoiceID, Err: err}
	}

	data, err := s.Render(ctx, text, tts.Voice{ID: sel.VoiceID, Name: sel.Name})
	if err != nil {
		return fail(err)
	}

	filename := SegmentFilename(index, sel.Name)
	if err := ws.WriteFile(filename, data); err != nil {
		return fail(err)
	}

	span.SetAttributes(attribute.Int("audio.bytes", len(data)))
	return &Segment{
		Index:    index,
		Speaker:  sel.Role,
		Name:     sel.Name,
		Gender:   sel.Gender,
		Text:     text,
		AudioURL: ws.URL(filename),
		Filename: filename,
		Voice:    sel.VoiceID,
	}, nil
}

// Render returns the MP3 bytes for text without touching disk. It applies
// the per-call timeout and retries retryable provider errors.
func (s *Synthesizer) Render(ctx context.Context, text string, voice tts.Voice) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var res tts.AudioResult
	err := tts.WithRetry(ctx, func() error {
		r, err := s.provider.Synthesize(ctx, text, voice)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && s.timeout > 0 {
			err = fmt.Errorf("timed out after %s: %w", s.timeout, err)
		}
		return nil, err
	}
	if res.Format != tts.FormatMP3 {
		return nil, fmt.Errorf("provider %s returned %s audio, need mp3", s.provider.Name(), res.Format)
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("provider %s returned no audio", s.provider.Name())
	}
	return res.Data, nil
}
