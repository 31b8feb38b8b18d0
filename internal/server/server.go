// Package server exposes the podcast studio HTTP API: content ingestion,
// script drafting, audio assembly, voice previews and the static mount
// generated audio is served from.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/apresai/podcast-studio/internal/ingest"
	"github.com/apresai/podcast-studio/internal/pipeline"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/tts"

	_ "github.com/apresai/podcast-studio/internal/server/docs"
)

// Researcher writes or condenses source material with a model.
type Researcher interface {
	Search(ctx context.Context, query string) (*ingest.Content, error)
	Summarize(ctx context.Context, content string) (string, bool)
}

// Encyclopedia looks up articles.
type Encyclopedia interface {
	Article(ctx context.Context, input string) (*ingest.Content, error)
}

// PageFetcher extracts readable text from a web page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*ingest.Content, error)
}

// ScriptWriter drafts an alternating two-host dialogue.
type ScriptWriter interface {
	Generate(ctx context.Context, content string) ([]script.Line, error)
}

// AudioService assembles podcasts and voice previews.
type AudioService interface {
	GenerateAudio(ctx context.Context, req pipeline.AudioRequest) (*pipeline.AudioResponse, error)
	Preview(ctx context.Context, voiceID, text string) (*pipeline.PreviewResponse, error)
	Voices() tts.VoiceTable
	ProviderName() string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Research  Researcher
	Wikipedia Encyclopedia
	Fetcher   PageFetcher
	Scripts   ScriptWriter
	Audio     AudioService
	// AudioDir is the output root served under /audio/.
	AudioDir    string
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	deps    Deps
	log     *slog.Logger
	server  *http.Server
	baseCtx context.Context
}

func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, log: log, baseCtx: context.Background()}
}

// Handler returns the routed, CORS-wrapped API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/content/search", s.handleSearch)
	mux.HandleFunc("POST /api/content/wikipedia", s.handleWikipedia)
	mux.HandleFunc("POST /api/content/url", s.handleURL)
	mux.HandleFunc("POST /api/content/upload", s.handleUpload)
	mux.HandleFunc("POST /api/content/paste", s.handlePaste)
	mux.HandleFunc("POST /api/content/summarize", s.handleSummarize)

	mux.HandleFunc("POST /api/script/generate", s.handleScript)

	mux.HandleFunc("POST /api/audio/generate", s.handleAudio)
	mux.HandleFunc("POST /api/audio/preview", s.handlePreview)

	mux.HandleFunc("GET /api/voices", s.handleVoices)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.Handle("GET /audio/", http.StripPrefix("/audio/", http.FileServer(fileOnlyFS{http.Dir(s.deps.AudioDir)})))

	// Swagger UI for the API docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return s.accessLog(cors(s.deps.CORSOrigins, mux))
}

// ListenAndServe serves on port until ctx is cancelled. Audio assembly
// runs on a context derived from ctx, not from the request, so a client
// that disconnects mid-assembly does not leave a half-written podcast.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	s.baseCtx = ctx
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("http server listening", "port", port)

	go func() {
		<-ctx.Done()
		s.log.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// fileOnlyFS refuses directory listings under /audio/.
type fileOnlyFS struct {
	fs http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
