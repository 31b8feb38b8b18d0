package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/apresai/podcast-studio/internal/progress"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/storage"
	"github.com/apresai/podcast-studio/internal/tts"
)

// DefaultCombinedName is the well-known filename of the combined podcast
// inside a workspace.
const DefaultCombinedName = "combined_podcast.mp3"

// bytesPerSecond is the assumed bitrate (128 kbit/s) used to estimate
// duration from file size.
const bytesPerSecond = 16 * 1024

// EstimateDuration approximates playback seconds from the byte size of an
// MP3 file. It does not decode frames.
func EstimateDuration(size int64) float64 {
	return float64(size) / bytesPerSecond
}

// SizeMB converts bytes to megabytes rounded to two decimals.
func SizeMB(size int64) float64 {
	return math.Round(float64(size)/(1024*1024)*100) / 100
}

// Request is one assembly job.
type Request struct {
	Script []script.Line
	// FirstHostVoice and SecondHostVoice override the default voices when
	// non-blank.
	FirstHostVoice  string
	SecondHostVoice string
	Workspace       *storage.Workspace
}

// LineResult is the outcome for one non-blank script line. Exactly one of
// Segment and Err is set.
type LineResult struct {
	Index   int
	Segment *Segment
	Err     error
}

// Artifact describes the combined podcast file.
type Artifact struct {
	Filename string
	Path     string
	URL      string
	Size     int64
	Duration float64
}

func (a *Artifact) SizeMB() float64 { return SizeMB(a.Size) }

// Result is the outcome of an assembly job. Combined is nil when no line
// succeeded or when writing the combined file failed.
type Result struct {
	Segments []*Segment
	Lines    []LineResult
	Combined *Artifact
	// CombineErr is set when segments existed but the combined file could
	// not be written.
	CombineErr error
}

// Failed counts lines whose synthesis failed.
func (r *Result) Failed() int {
	n := 0
	for _, l := range r.Lines {
		if l.Err != nil {
			n++
		}
	}
	return n
}

type Option func(*Assembler)

// WithCombinedName overrides DefaultCombinedName.
func WithCombinedName(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.combinedName = name
		}
	}
}

// WithLogger sets the logger used for per-line failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

// WithProgress sets the progress callback.
func WithProgress(cb progress.Callback) Option {
	return func(a *Assembler) { a.onProgress = cb }
}

// Assembler synthesizes a script line by line and concatenates the results.
type Assembler struct {
	synth        *Synthesizer
	voices       tts.VoiceTable
	combinedName string
	log          *slog.Logger
	onProgress   progress.Callback
}

func NewAssembler(synth *Synthesizer, voices tts.VoiceTable, opts ...Option) *Assembler {
	a := &Assembler{
		synth:        synth,
		voices:       voices,
		combinedName: DefaultCombinedName,
		log:          slog.Default(),
		onProgress:   progress.NopCallback,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Assembler) CombinedName() string { return a.combinedName }

// Assemble runs synthesis strictly in script order, one call at a time.
// Per-line synthesis failures are recorded in Result.Lines and skipped.
// The only error returned is cancellation of ctx.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ws := req.Workspace

	ctx, span := tracer.Start(ctx, "podcast.assemble", trace.WithAttributes(
		attribute.Int("script.lines", len(req.Script)),
		attribute.String("request.id", ws.ID),
	))
	defer span.End()

	selections := map[script.Role]tts.Selection{
		script.FirstHost:  tts.Resolve(script.FirstHost, req.FirstHostVoice, a.voices),
		script.SecondHost: tts.Resolve(script.SecondHost, req.SecondHostVoice, a.voices),
	}

	total := len(req.Script)
	res := &Result{}
	for i, line := range req.Script {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line.Blank() {
			continue
		}

		sel := selections[script.ParseRole(string(line.Speaker))]
		ev := progress.NewEvent(progress.StageSynthesis,
			fmt.Sprintf("Synthesizing line %d/%d (%s)", i+1, total, sel.Name),
			float64(i)/float64(total), start)
		ev.LineNum, ev.LineTotal, ev.Failed = i+1, total, res.Failed()
		a.onProgress(ev)

		seg, err := a.synth.Synthesize(ctx, ws, line.Text, i, sel)
		if err != nil {
			a.log.WarnContext(ctx, "line synthesis failed",
				"request_id", ws.ID,
				"index", i,
				"speaker", sel.Role,
				"voice", sel.VoiceID,
				"error", err,
			)
			res.Lines = append(res.Lines, LineResult{Index: i, Err: err})
			continue
		}
		res.Lines = append(res.Lines, LineResult{Index: i, Segment: seg})
		res.Segments = append(res.Segments, seg)
	}

	span.SetAttributes(
		attribute.Int("segments.ok", len(res.Segments)),
		attribute.Int("segments.failed", res.Failed()),
	)

	if len(res.Segments) == 0 {
		// A combined file left by an earlier run would be served as if it
		// belonged to this one.
		if err := ws.Remove(a.combinedName); err != nil {
			a.log.WarnContext(ctx, "remove stale combined file", "request_id", ws.ID, "error", err)
		}
		a.log.WarnContext(ctx, "no segments synthesized", "request_id", ws.ID, "lines", total)
		a.complete(res, start)
		return res, nil
	}

	ev := progress.NewEvent(progress.StageCombine, "Combining segments", 1, start)
	ev.LineNum, ev.LineTotal, ev.Failed = total, total, res.Failed()
	a.onProgress(ev)

	artifact, err := a.combine(ctx, ws, res.Segments)
	if err != nil {
		a.log.ErrorContext(ctx, "combine segments failed", "request_id", ws.ID, "error", err)
		span.RecordError(err)
		res.CombineErr = err
	} else {
		res.Combined = artifact
		a.log.InfoContext(ctx, "podcast assembled",
			"request_id", ws.ID,
			"segments", len(res.Segments),
			"failed", res.Failed(),
			"bytes", artifact.Size,
			"duration_s", artifact.Duration,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}
	a.complete(res, start)
	return res, nil
}

func (a *Assembler) complete(res *Result, start time.Time) {
	ev := progress.NewEvent(progress.StageComplete, "Done", 1, start)
	ev.LineNum = len(res.Segments)
	ev.LineTotal = len(res.Lines)
	ev.Failed = res.Failed()
	ev.Error = res.CombineErr
	if res.Combined != nil {
		ev.OutputFile = res.Combined.Path
		ev.SizeMB = res.Combined.SizeMB()
		ev.DurationSec = res.Combined.Duration
	}
	a.onProgress(ev)
}

// combine overwrites the combined file with the normalized segment bytes in
// order. A segment file that has gone missing is skipped.
func (a *Assembler) combine(ctx context.Context, ws *storage.Workspace, segments []*Segment) (*Artifact, error) {
	dst := ws.Path(a.combinedName)
	out, err := ws.Create(a.combinedName)
	if err != nil {
		return nil, &CombineError{Path: dst, Err: err}
	}

	var size int64
	for _, seg := range segments {
		data, err := ws.ReadFile(seg.Filename)
		if err != nil {
			if os.IsNotExist(err) {
				a.log.WarnContext(ctx, "segment file missing, skipping", "request_id", ws.ID, "file", seg.Filename)
				continue
			}
			out.Close()
			return nil, &CombineError{Path: dst, Err: err}
		}
		n, err := out.Write(StripContainerMetadata(data))
		size += int64(n)
		if err != nil {
			out.Close()
			return nil, &CombineError{Path: dst, Err: err}
		}
	}
	if err := out.Close(); err != nil {
		return nil, &CombineError{Path: dst, Err: err}
	}

	return &Artifact{
		Filename: a.combinedName,
		Path:     dst,
		URL:      ws.URL(a.combinedName),
		Size:     size,
		Duration: EstimateDuration(size),
	}, nil
}

func (a *Assembler) Synthesizer() *Synthesizer { return a.synth }

func (a *Assembler) Voices() tts.VoiceTable { return a.voices }
