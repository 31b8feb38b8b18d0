package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/apresai/podcast-studio/internal/ingest"
	"github.com/apresai/podcast-studio/internal/observability"
	"github.com/apresai/podcast-studio/internal/pipeline"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/tts"
)

type searchRequest struct {
	Query string `json:"query"`
}

type wikipediaRequest struct {
	ArticleTitle string `json:"article_title"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type pasteRequest struct {
	Text  string  `json:"text"`
	Title *string `json:"title"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type scriptResponse struct {
	Script []script.Line `json:"script"`
}

// audioRequest accepts both the current voice field names and the p1/p2
// names older clients send.
type audioRequest struct {
	Script          []script.Line `json:"script"`
	FirstHostVoice  string        `json:"first_host_voice"`
	SecondHostVoice string        `json:"second_host_voice"`
	P1Voice         string        `json:"p1_voice"`
	P2Voice         string        `json:"p2_voice"`
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type previewRequest struct {
	VoiceID string `json:"voice_id"`
	Text    string `json:"text"`
}

type voicesResponse struct {
	Voices tts.VoiceTable `json:"voices"`
}

type healthFeatures struct {
	ContentSources []string          `json:"content_sources"`
	Characters     map[string]string `json:"characters"`
	TTS            string            `json:"tts"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Features healthFeatures `json:"features"`
}

// collaboratorFailed answers with the status and message carried by err.
func (s *Server) collaboratorFailed(w http.ResponseWriter, r *http.Request, err error) {
	status := ingest.StatusOf(err)
	source := "unknown"
	var ce *ingest.CollaboratorError
	if errors.As(err, &ce) {
		source = ce.Source
	}
	s.log.WarnContext(r.Context(), "collaborator failed", "source", source, "status", status, "error", err)
	writeError(w, status, err.Error())
}

// handleSearch writes an article about a topic with the model.
//
// @Summary  Research a topic
// @Tags     content
// @Accept   json
// @Produce  json
// @Param    request  body      searchRequest  true  "Topic"
// @Success  200      {object}  ingest.Content
// @Failure  500      {object}  errorBody
// @Router   /api/content/search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.deps.Research.Search(r.Context(), req.Query)
	if err != nil {
		s.collaboratorFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleWikipedia fetches an article by title or /wiki/ URL.
//
// @Summary  Fetch a Wikipedia article
// @Tags     content
// @Accept   json
// @Produce  json
// @Param    request  body      wikipediaRequest  true  "Title or URL"
// @Success  200      {object}  ingest.Content
// @Failure  400      {object}  errorBody  "Ambiguous title"
// @Failure  404      {object}  errorBody  "Article not found"
// @Router   /api/content/wikipedia [post]
func (s *Server) handleWikipedia(w http.ResponseWriter, r *http.Request) {
	var req wikipediaRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.deps.Wikipedia.Article(r.Context(), req.ArticleTitle)
	if err != nil {
		s.collaboratorFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary  Extract a web page
// @Tags     content
// @Accept   json
// @Produce  json
// @Param    request  body      urlRequest  true  "Page URL"
// @Success  200      {object}  ingest.Content
// @Failure  500      {object}  errorBody
// @Router   /api/content/url [post]
func (s *Server) handleURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.deps.Fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.collaboratorFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary  Upload a text or PDF file
// @Tags     content
// @Accept   mpfd
// @Produce  json
// @Param    file  formData  file  true  "Source file"
// @Success  200   {object}  ingest.Content
// @Router   /api/content/upload [post]
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 26<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "file is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("read upload: %v", err))
		return
	}
	c, err := ingest.DecodeUpload(header.Filename, data)
	if err != nil {
		s.collaboratorFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary  Use pasted text
// @Tags     content
// @Accept   json
// @Produce  json
// @Param    request  body      pasteRequest  true  "Text and optional title"
// @Success  200      {object}  ingest.Content
// @Router   /api/content/paste [post]
func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if !decode(w, r, &req) {
		return
	}
	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	writeJSON(w, http.StatusOK, ingest.Paste(req.Text, title))
}

// handleSummarize never fails on the model's account: it falls back to
// the first 300 words.
//
// @Summary  Summarize content
// @Tags     content
// @Accept   json
// @Produce  json
// @Param    request  body      contentRequest  true  "Content"
// @Success  200      {object}  summaryResponse
// @Router   /api/content/summarize [post]
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decode(w, r, &req) {
		return
	}
	summary, fromModel := s.deps.Research.Summarize(r.Context(), req.Content)
	if !fromModel {
		s.log.WarnContext(r.Context(), "summary fell back to truncation")
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

// @Summary  Draft a two-host script
// @Tags     script
// @Accept   json
// @Produce  json
// @Param    request  body      contentRequest  true  "Source content"
// @Success  200      {object}  scriptResponse
// @Failure  500      {object}  errorBody
// @Router   /api/script/generate [post]
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decode(w, r, &req) {
		return
	}
	lines, err := s.deps.Scripts.Generate(r.Context(), req.Content)
	if err != nil {
		s.log.ErrorContext(r.Context(), "script generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scriptResponse{Script: lines})
}

// handleAudio assembles a podcast. Lines that fail to synthesize are left
// out; a request where every line fails still answers 200 with a null
// combined_audio_url.
//
// @Summary      Generate podcast audio
// @Description  Synthesizes each line in order and concatenates the results into one MP3.
// @Tags         audio
// @Accept       json
// @Produce      json
// @Param        request  body      audioRequest  true  "Script and optional voice overrides"
// @Success      200      {object}  pipeline.AudioResponse
// @Failure      500      {object}  errorBody
// @Router       /api/audio/generate [post]
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	var req audioRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := observability.DetachTraceContextFrom(r.Context(), s.baseCtx)
	resp, err := s.deps.Audio.GenerateAudio(ctx, pipeline.AudioRequest{
		Script:          req.Script,
		FirstHostVoice:  firstNonBlank(req.FirstHostVoice, req.P1Voice),
		SecondHostVoice: firstNonBlank(req.SecondHostVoice, req.P2Voice),
	})
	if err != nil {
		s.log.ErrorContext(r.Context(), "audio generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary  Preview a voice
// @Tags     audio
// @Accept   json
// @Produce  json
// @Param    request  body      previewRequest  true  "Voice id and optional text"
// @Success  200      {object}  pipeline.PreviewResponse
// @Failure  400      {object}  errorBody  "Invalid voice id"
// @Failure  500      {object}  errorBody
// @Router   /api/audio/preview [post]
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.deps.Audio.Preview(r.Context(), req.VoiceID, req.Text)
	if errors.Is(err, pipeline.ErrInvalidVoice) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.WarnContext(r.Context(), "preview failed", "voice", req.VoiceID, "error", err)
		writeError(w, http.StatusInternalServerError, "Preview failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary  List voices by language and gender
// @Tags     audio
// @Produce  json
// @Success  200  {object}  voicesResponse
// @Router   /api/voices [get]
func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, voicesResponse{Voices: s.deps.Audio.Voices()})
}

// @Summary  Service capabilities
// @Tags     meta
// @Produce  json
// @Success  200  {object}  healthResponse
// @Router   /api/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	first := script.HostFor(script.FirstHost)
	second := script.HostFor(script.SecondHost)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Version: pipeline.Version,
		Features: healthFeatures{
			ContentSources: []string{"search", "wikipedia", "url", "upload", "paste"},
			Characters: map[string]string{
				string(first.Role):  fmt.Sprintf("%s (%s)", first.Name, first.Gender),
				string(second.Role): fmt.Sprintf("%s (%s)", second.Name, second.Gender),
			},
			TTS: s.deps.Audio.ProviderName(),
		},
	})
}
