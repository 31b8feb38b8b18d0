package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apresai/podcast-studio/internal/assembly"
	"github.com/apresai/podcast-studio/internal/observability"
	"github.com/apresai/podcast-studio/internal/progress"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/storage"
)

var (
	flagScript      string
	flagOut         string
	flagFirstVoice  string
	flagSecondVoice string
	flagVerbose     bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Synthesize a script file into a podcast MP3",
	Long:  "Reads a script JSON file ({\"script\": [{\"speaker\": \"P1\", \"text\": \"...\"}]}) and writes one segment per line plus the combined podcast into --out.",
	RunE:  runAssemble,
}

func init() {
	assembleCmd.Flags().StringVarP(&flagScript, "script", "s", "", "Script JSON file (required)")
	assembleCmd.Flags().StringVarP(&flagOut, "out", "o", "podcast-output", "Output directory")
	assembleCmd.Flags().StringVar(&flagFirstVoice, "first-voice", "", "Voice id for the first host (default: English female)")
	assembleCmd.Flags().StringVar(&flagSecondVoice, "second-voice", "", "Voice id for the second host (default: English male)")
	assembleCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every line instead of drawing a progress bar")
	_ = assembleCmd.MarkFlagRequired("script")
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	s, err := script.LoadScript(flagScript)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, log: logger}
	if err := setupAWS(ctx, a); err != nil {
		return err
	}
	provider, err := newProvider(ctx, cfg, a.aws)
	if err != nil {
		return fmt.Errorf("tts provider: %w", err)
	}
	defer provider.Close()

	var onProgress progress.Callback
	if !flagVerbose {
		// Warnings would tear the bar; the summary reports failures instead.
		logger = observability.InitLogger(os.Stderr, "error")
		r := progress.NewBarRenderer(os.Stdout)
		defer r.Finish()
		onProgress = r.Handle
	}

	out, err := storage.NewOutput(flagOut, "", false)
	if err != nil {
		return err
	}
	ws, err := out.NewWorkspace()
	if err != nil {
		return err
	}

	res, err := newAssembler(cfg, provider, logger, onProgress).Assemble(ctx, assembly.Request{
		Script:          s.Lines,
		FirstHostVoice:  flagFirstVoice,
		SecondHostVoice: flagSecondVoice,
		Workspace:       ws,
	})
	if err != nil {
		return err
	}
	if res.Combined == nil {
		if res.CombineErr != nil {
			return res.CombineErr
		}
		return fmt.Errorf("no lines were synthesized (%d failed)", res.Failed())
	}
	if flagVerbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Podcast saved to %s (%.2f MB, ~%.0fs, %d lines failed)\n",
			res.Combined.Path, res.Combined.SizeMB(), res.Combined.Duration, res.Failed())
	}
	return nil
}
