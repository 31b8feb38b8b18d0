// Package pipeline ties the assembler to the output directory, the
// optional S3 mirror and the optional episode log.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/apresai/podcast-studio/internal/assembly"
	"github.com/apresai/podcast-studio/internal/episodes"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/storage"
	"github.com/apresai/podcast-studio/internal/tts"
)

// Version is reported by the health endpoint and the CLI.
var Version = "3.0.0"

// PipelineError reports an infrastructure failure outside per-line synthesis.
type PipelineError struct {
	Stage   string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Mirror uploads a finished combined file and returns its public URL.
type Mirror interface {
	Upload(ctx context.Context, key, localPath string) (string, error)
}

// Recorder persists a summary of each assembled podcast.
type Recorder interface {
	Record(ctx context.Context, ep episodes.Episode) error
}

// AudioRequest is the input of GenerateAudio.
type AudioRequest struct {
	Script          []script.Line
	FirstHostVoice  string
	SecondHostVoice string
}

// AudioResponse is the wire shape of an assembled podcast.
type AudioResponse struct {
	AudioSegments           []*assembly.Segment `json:"audio_segments"`
	CombinedAudioURL        *string             `json:"combined_audio_url"`
	CombinedDurationSeconds float64             `json:"combined_duration_seconds"`
	CombinedSizeMB          float64             `json:"combined_size_mb"`
	Message                 string              `json:"message"`
	RequestID               string              `json:"request_id"`
	FailedLines             int                 `json:"failed_lines"`
	MirrorURL               string              `json:"mirror_url,omitempty"`
}

// PreviewResponse describes a voice sample.
type PreviewResponse struct {
	AudioURL string `json:"audio_url"`
	Voice    string `json:"voice"`
	Text     string `json:"text"`
}

type Option func(*Service)

func WithMirror(m Mirror) Option { return func(s *Service) { s.mirror = m } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// Service runs audio requests end to end.
type Service struct {
	assembler *assembly.Assembler
	output    *storage.Output
	mirror    Mirror
	recorder  Recorder
	log       *slog.Logger
}

func NewService(a *assembly.Assembler, out *storage.Output, opts ...Option) *Service {
	s := &Service{assembler: a, output: out, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProviderName is the TTS provider in use.
func (s *Service) ProviderName() string {
	return s.assembler.Synthesizer().Provider().Name()
}

// Voices returns the provider's catalog as language -> gender -> voice id.
func (s *Service) Voices() tts.VoiceTable {
	return s.assembler.Voices()
}

// GenerateAudio assembles a podcast. Per-line failures only shorten the
// segment list; an error is returned only when the workspace cannot be
// created or ctx is cancelled.
func (s *Service) GenerateAudio(ctx context.Context, req AudioRequest) (*AudioResponse, error) {
	start := time.Now()

	ws, err := s.output.NewWorkspace()
	if err != nil {
		return nil, &PipelineError{Stage: "output", Message: "failed to create workspace", Err: err}
	}

	log := s.log.With("request_id", ws.ID)
	log.InfoContext(ctx, "generating audio",
		"lines", len(req.Script),
		"first_host_voice", req.FirstHostVoice,
		"second_host_voice", req.SecondHostVoice,
	)

	res, err := s.assembler.Assemble(ctx, assembly.Request{
		Script:          req.Script,
		FirstHostVoice:  req.FirstHostVoice,
		SecondHostVoice: req.SecondHostVoice,
		Workspace:       ws,
	})
	if err != nil {
		return nil, &PipelineError{Stage: "assembly", Message: "assembly aborted", Err: err}
	}

	resp := &AudioResponse{
		AudioSegments: res.Segments,
		Message:       "Audio generation complete",
		RequestID:     ws.ID,
		FailedLines:   res.Failed(),
	}
	if resp.AudioSegments == nil {
		resp.AudioSegments = []*assembly.Segment{}
	}
	if c := res.Combined; c != nil {
		url := c.URL
		resp.CombinedAudioURL = &url
		resp.CombinedDurationSeconds = c.Duration
		resp.CombinedSizeMB = c.SizeMB()
		resp.MirrorURL = s.mirrorCombined(ctx, log, ws.ID, c)
	}

	s.record(ctx, log, req, res, resp)

	log.InfoContext(ctx, "audio request done",
		"segments", len(resp.AudioSegments),
		"failed", resp.FailedLines,
		"size_mb", resp.CombinedSizeMB,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return resp, nil
}

func (s *Service) mirrorCombined(ctx context.Context, log *slog.Logger, requestID string, c *assembly.Artifact) string {
	if s.mirror == nil {
		return ""
	}
	url, err := s.mirror.Upload(ctx, storage.Key(requestID, c.Filename), c.Path)
	if err != nil {
		log.WarnContext(ctx, "mirror upload failed", "error", err)
		return ""
	}
	return url
}

func (s *Service) record(ctx context.Context, log *slog.Logger, req AudioRequest, res *assembly.Result, resp *AudioResponse) {
	if s.recorder == nil {
		return
	}
	scriptJSON, _ := json.Marshal(script.Script{Lines: req.Script})
	ep := episodes.Episode{
		RequestID:       resp.RequestID,
		Status:          string(episodes.StatusFor(len(res.Segments), res.Failed(), res.Combined != nil)),
		Segments:        len(res.Segments),
		FailedLines:     res.Failed(),
		MirrorURL:       resp.MirrorURL,
		DurationSec:     resp.CombinedDurationSeconds,
		FileSizeMB:      resp.CombinedSizeMB,
		TTSProvider:     s.ProviderName(),
		FirstHostVoice:  req.FirstHostVoice,
		SecondHostVoice: req.SecondHostVoice,
		ScriptJSON:      string(scriptJSON),
	}
	if resp.CombinedAudioURL != nil {
		ep.AudioURL = *resp.CombinedAudioURL
		ep.AudioKey = storage.Key(resp.RequestID, res.Combined.Filename)
	}
	if err := s.recorder.Record(ctx, ep); err != nil {
		log.WarnContext(ctx, "record episode failed", "error", err)
	}
}

// ErrInvalidVoice is returned for voice ids that cannot name a preview file.
var ErrInvalidVoice = errors.New("invalid voice id")

var voiceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// PreviewFilename names the shared preview file for a voice.
func PreviewFilename(voiceID string) string {
	return "preview_" + strings.ReplaceAll(voiceID, "-", "_") + ".mp3"
}

// Preview synthesizes a short sample for voiceID into the shared output
// root. Previews for the same voice overwrite each other.
func (s *Service) Preview(ctx context.Context, voiceID, text string) (*PreviewResponse, error) {
	if strings.TrimSpace(voiceID) == "" {
		return nil, &PipelineError{Stage: "preview", Message: "voice_id is required", Err: ErrInvalidVoice}
	}
	if !voiceIDPattern.MatchString(voiceID) {
		return nil, &PipelineError{Stage: "preview", Message: fmt.Sprintf("voice_id %q may only contain letters, digits, - and _", voiceID), Err: ErrInvalidVoice}
	}
	if text == "" {
		text = tts.PreviewText(voiceID)
	}

	data, err := s.assembler.Synthesizer().Render(ctx, text, tts.Voice{ID: voiceID})
	if err != nil {
		return nil, fmt.Errorf("synthesize preview: %w", err)
	}

	ws := s.output.Shared()
	name := PreviewFilename(voiceID)
	if err := ws.WriteFile(name, data); err != nil {
		return nil, fmt.Errorf("write preview: %w", err)
	}
	return &PreviewResponse{AudioURL: ws.URL(name), Voice: voiceID, Text: text}, nil
}
