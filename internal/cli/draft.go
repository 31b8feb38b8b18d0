package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apresai/podcast-studio/internal/config"
	"github.com/apresai/podcast-studio/internal/ingest"
	"github.com/apresai/podcast-studio/internal/llm"
	"github.com/apresai/podcast-studio/internal/script"
)

var (
	flagTopic     string
	flagWikipedia string
	flagURL       string
	flagFile      string
	flagSummarize bool
	flagDraftOut  string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Gather content and draft a two-host script file",
	Long:  "Pulls content from exactly one source, optionally summarizes it, and writes a script JSON file that assemble can read.",
	RunE:  runDraft,
}

func init() {
	draftCmd.Flags().StringVar(&flagTopic, "topic", "", "Research a topic with the model")
	draftCmd.Flags().StringVar(&flagWikipedia, "wikipedia", "", "Wikipedia article title or URL")
	draftCmd.Flags().StringVar(&flagURL, "url", "", "Web page URL")
	draftCmd.Flags().StringVar(&flagFile, "file", "", "Text or PDF file")
	draftCmd.Flags().BoolVar(&flagSummarize, "summarize", false, "Summarize the content before drafting")
	draftCmd.Flags().StringVarP(&flagDraftOut, "out", "o", "script.json", "Script file to write")
	draftCmd.MarkFlagsOneRequired("topic", "wikipedia", "url", "file")
	draftCmd.MarkFlagsMutuallyExclusive("topic", "wikipedia", "url", "file")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a := &app{cfg: cfg, log: logger}
	if err := setupAWS(ctx, a); err != nil {
		return err
	}
	keys := config.KeysFromEnv()
	completer, err := llm.New(cfg.LLM.Backend, cfg.LLM.Model, llm.Keys{
		Groq:      keys.Groq,
		Anthropic: keys.Anthropic,
		Gemini:    keys.Gemini,
	}, a.aws)
	if err != nil {
		return err
	}
	research := ingest.NewResearcher(completer)

	var content *ingest.Content
	switch {
	case flagTopic != "":
		content, err = research.Search(ctx, flagTopic)
	case flagWikipedia != "":
		content, err = ingest.NewWikipedia().Article(ctx, flagWikipedia)
	case flagURL != "":
		content, err = ingest.NewFetcher().Fetch(ctx, flagURL)
	default:
		var data []byte
		data, err = os.ReadFile(flagFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", flagFile, err)
		}
		content, err = ingest.DecodeUpload(flagFile, data)
	}
	if err != nil {
		return err
	}
	logger.Info("content gathered", "title", content.Title, "source", content.Source, "words", content.WordCount)

	text := content.Text
	if flagSummarize {
		var fromModel bool
		text, fromModel = research.Summarize(ctx, text)
		if !fromModel {
			logger.Warn("summary fell back to truncation")
		}
	}

	lines, err := script.NewGenerator(completer).Generate(ctx, text)
	if err != nil {
		return err
	}
	if err := script.SaveScript(&script.Script{Lines: lines}, flagDraftOut); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d lines to %s\n", len(lines), flagDraftOut)
	return nil
}
