package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const wikipediaAPI = "https://en.wikipedia.org/w/api.php"

const (
	summarySentences  = 10
	maxArticleChars   = 3000
	maxDisambiguation = 5
)

// Wikipedia reads articles through the MediaWiki action API.
type Wikipedia struct {
	baseURL    string
	httpClient *http.Client
}

func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		baseURL:    wikipediaAPI,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type wikiPage struct {
	Title     string            `json:"title"`
	Missing   bool              `json:"missing"`
	Invalid   bool              `json:"invalid"`
	Extract   string            `json:"extract"`
	FullURL   string            `json:"fullurl"`
	PageProps map[string]string `json:"pageprops"`
	Links     []struct {
		Title string `json:"title"`
	} `json:"links"`
}

type wikiResponse struct {
	Query struct {
		Pages []wikiPage `json:"pages"`
	} `json:"query"`
	Error *struct {
		Info string `json:"info"`
	} `json:"error"`
}

// ArticleTitle accepts a title or a /wiki/ URL and returns the title.
func ArticleTitle(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "http") && !strings.Contains(input, "wikipedia.org") {
		return input
	}
	u, err := url.Parse(input)
	if err != nil {
		return input
	}
	idx := strings.LastIndex(u.Path, "/wiki/")
	if idx < 0 {
		return input
	}
	// Path is already unescaped by url.Parse.
	return strings.ReplaceAll(u.Path[idx+len("/wiki/"):], "_", " ")
}

// Article fetches an article and formats it as a title, a ten-sentence
// summary and the start of the full text.
func (w *Wikipedia) Article(ctx context.Context, input string) (*Content, error) {
	title := ArticleTitle(input)
	if title == "" {
		return nil, collaboratorErr("wikipedia", http.StatusBadRequest, "article title must not be empty")
	}

	page, err := w.query(ctx, url.Values{
		"titles":      {title},
		"prop":        {"extracts|info|pageprops"},
		"inprop":      {"url"},
		"ppprop":      {"disambiguation"},
		"explaintext": {"1"},
	})
	if err != nil {
		return nil, err
	}
	if page.Missing || page.Invalid {
		return nil, collaboratorErr("wikipedia", http.StatusNotFound, "Article not found")
	}
	if _, ok := page.PageProps["disambiguation"]; ok {
		options, err := w.options(ctx, page.Title)
		if err != nil {
			return nil, err
		}
		return nil, collaboratorErr("wikipedia", http.StatusBadRequest, "Multiple matches found: %s", formatOptions(options))
	}

	intro, err := w.query(ctx, url.Values{
		"titles":      {page.Title},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"exsentences": {fmt.Sprint(summarySentences)},
		"explaintext": {"1"},
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("# %s\n\n%s\n\n## Full Article\n\n%s...",
		page.Title, intro.Extract, truncateRunes(page.Extract, maxArticleChars))
	return newContent(text, page.Title, "Wikipedia: "+page.Title, page.FullURL), nil
}

func (w *Wikipedia) options(ctx context.Context, title string) ([]string, error) {
	page, err := w.query(ctx, url.Values{
		"titles":      {title},
		"prop":        {"links"},
		"plnamespace": {"0"},
		"pllimit":     {fmt.Sprint(maxDisambiguation)},
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(page.Links))
	for _, l := range page.Links {
		out = append(out, l.Title)
	}
	return out, nil
}

func formatOptions(options []string) string {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = "'" + o + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (w *Wikipedia) query(ctx context.Context, params url.Values) (*wikiPage, error) {
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, collaboratorErr("wikipedia", http.StatusInternalServerError, "create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, collaboratorErr("wikipedia", http.StatusInternalServerError, "query wikipedia: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, collaboratorErr("wikipedia", http.StatusInternalServerError, "query wikipedia: HTTP %d", resp.StatusCode)
	}

	var body wikiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, collaboratorErr("wikipedia", http.StatusInternalServerError, "parse wikipedia response: %w", err)
	}
	if body.Error != nil {
		return nil, collaboratorErr("wikipedia", http.StatusInternalServerError, "wikipedia: %s", body.Error.Info)
	}
	if len(body.Query.Pages) == 0 {
		return nil, collaboratorErr("wikipedia", http.StatusNotFound, "Article not found")
	}
	return &body.Query.Pages[0], nil
}
