// Package mcpserver exposes podcast assembly to MCP clients over
// streamable HTTP.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/apresai/podcast-studio/internal/episodes"
	"github.com/apresai/podcast-studio/internal/pipeline"
	"github.com/apresai/podcast-studio/internal/tts"
)

// AudioService assembles podcasts and voice previews.
type AudioService interface {
	GenerateAudio(ctx context.Context, req pipeline.AudioRequest) (*pipeline.AudioResponse, error)
	Preview(ctx context.Context, voiceID, text string) (*pipeline.PreviewResponse, error)
	Voices() tts.VoiceTable
}

// EpisodeReader looks up recorded podcasts.
type EpisodeReader interface {
	Get(ctx context.Context, id string) (*episodes.Episode, error)
	List(ctx context.Context, limit int, cursor string) ([]episodes.Episode, string, error)
}

// Server is the MCP server for podcast assembly.
type Server struct {
	mcp      *server.MCPServer
	handlers *Handlers
	tools    []string
	log      *slog.Logger
}

// New registers the tools. episodes may be nil, in which case the
// get_podcast and list_podcasts tools are not offered.
func New(audio AudioService, eps EpisodeReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	handlers := NewHandlers(audio, eps, logger)

	mcpServer := server.NewMCPServer(
		"podcast-studio",
		pipeline.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{mcp: mcpServer, handlers: handlers, log: logger}

	tools := ToolDefs()
	s.addTool(tools[0], handlers.HandleGenerateAudio)
	s.addTool(tools[1], handlers.HandlePreviewVoice)
	s.addTool(tools[2], handlers.HandleListVoices)
	if eps != nil {
		s.addTool(tools[3], handlers.HandleGetPodcast)
		s.addTool(tools[4], handlers.HandleListPodcasts)
	}
	return s
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

// Tools lists the registered tool names.
func (s *Server) Tools() []string { return s.tools }

// Start serves MCP over streamable HTTP until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.Info("starting MCP server", "addr", addr)

	httpServer := server.NewStreamableHTTPServer(s.mcp,
		server.WithStateLess(true),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.Start(addr); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp listen: %w", err)
	}
	return nil
}
