package ingest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// maxPageChars caps the text kept from a web page.
const maxPageChars = 5000

// Fetcher extracts the readable text of web pages.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// NormalizeURL prepends https:// when the scheme is missing.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	return raw
}

func (f *Fetcher) Fetch(ctx context.Context, raw string) (*Content, error) {
	source := NormalizeURL(raw)
	parsed, err := url.Parse(source)
	if err != nil {
		return nil, collaboratorErr("url", http.StatusInternalServerError, "Failed to fetch URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, collaboratorErr("url", http.StatusInternalServerError, "Failed to fetch URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, collaboratorErr("url", http.StatusInternalServerError, "Failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, collaboratorErr("url", http.StatusInternalServerError, "Failed to fetch URL: HTTP %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxInputSize)
	article, err := readability.FromReader(limited, parsed)
	if err != nil {
		return nil, collaboratorErr("url", http.StatusInternalServerError, "Failed to fetch URL: %w", err)
	}

	text := truncateRunes(cleanLines(article.TextContent), maxPageChars)
	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = source
	}
	return newContent(text, title, "URL: "+source, source), nil
}
