package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/apresai/podcast-studio/internal/ingest"
	"github.com/apresai/podcast-studio/internal/mcpserver"
	"github.com/apresai/podcast-studio/internal/server"
)

var flagPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over streamable HTTP",
	RunE:  runMCP,
}

func init() {
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Listen port (overrides server.port)")
	mcpCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Listen port (overrides mcp.port)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeApp(a)

	srv := server.New(server.Deps{
		Research:    a.researcher(),
		Wikipedia:   ingest.NewWikipedia(),
		Fetcher:     ingest.NewFetcher(),
		Scripts:     a.scripts(),
		Audio:       a.audio,
		AudioDir:    cfg.Output.Dir,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	port := cfg.Server.Port
	if flagPort > 0 {
		port = flagPort
	}
	return srv.ListenAndServe(ctx, port)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeApp(a)

	// A nil *episodes.Store must not become a non-nil interface.
	var eps mcpserver.EpisodeReader
	if a.episodes != nil {
		eps = a.episodes
	}

	port := cfg.MCP.Port
	if flagPort > 0 {
		port = flagPort
	}
	return mcpserver.New(a.audio, eps, logger).Start(ctx, port)
}

func closeApp(a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.close(ctx)
}
