package progress

import "time"

// Stage identifies which assembly stage is active.
type Stage string

const (
	StageSynthesis Stage = "synthesis"
	StageCombine   Stage = "combine"
	StageComplete  Stage = "complete"
)

// Event carries progress information from the assembler to a renderer.
type Event struct {
	Stage     Stage
	Message   string
	Percent   float64 // 0.0–1.0
	LineNum   int
	LineTotal int
	// Failed counts lines whose synthesis failed so far.
	Failed  int
	Elapsed time.Duration
	Error   error
	// OutputFile, SizeMB and DurationSec are set on StageComplete when a
	// combined file was written.
	OutputFile  string
	SizeMB      float64
	DurationSec float64
}

// Callback is the function signature for progress event handlers.
type Callback func(Event)

// NopCallback is a no-op progress callback for tests and silent mode.
func NopCallback(Event) {}

// NewEvent creates an Event with common fields populated.
func NewEvent(stage Stage, msg string, pct float64, start time.Time) Event {
	return Event{
		Stage:   stage,
		Message: msg,
		Percent: pct,
		Elapsed: time.Since(start),
	}
}
