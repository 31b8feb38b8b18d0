package assembly

import (
	"fmt"

	"github.com/apresai/podcast-studio/internal/script"
)

// SynthesisError reports a failed line. The assembler records it in the
// line's result and moves on.
type SynthesisError struct {
	Index   int
	Speaker script.Role
	Voice   string
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize line %d (%s, voice %s): %v", e.Index, e.Speaker, e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// CombineError reports a disk failure while writing the combined file.
type CombineError struct {
	Path string
	Err  error
}

func (e *CombineError) Error() string {
	return fmt.Sprintf("combine into %s: %v", e.Path, e.Err)
}

func (e *CombineError) Unwrap() error { return e.Err }
