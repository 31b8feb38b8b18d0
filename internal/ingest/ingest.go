// Package ingest gathers source material for a podcast: model research,
// Wikipedia articles, web pages, uploaded files and pasted text.
package ingest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxInputSize is the maximum allowed size for fetched or uploaded content (25 MB).
const maxInputSize = 25 * 1024 * 1024

// Content is normalized source material ready for summarizing or scripting.
type Content struct {
	Text      string `json:"content"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	URL       string `json:"url,omitempty"`
	WordCount int    `json:"-"`
}

func newContent(text, title, source, url string) *Content {
	return &Content{Text: text, Title: title, Source: source, URL: url, WordCount: wordCount(text)}
}

// CollaboratorError is a failure of an outside content or generation
// service. Status is the HTTP status the API should answer with.
type CollaboratorError struct {
	Source string
	Status int
	Err    error
}

func (e *CollaboratorError) Error() string { return e.Err.Error() }

func (e *CollaboratorError) Unwrap() error { return e.Err }

func collaboratorErr(source string, status int, format string, args ...any) error {
	return &CollaboratorError{Source: source, Status: status, Err: fmt.Errorf(format, args...)}
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var ce *CollaboratorError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// cleanLines trims every line and drops blank ones.
func cleanLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
