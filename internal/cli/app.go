package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/apresai/podcast-studio/internal/assembly"
	"github.com/apresai/podcast-studio/internal/config"
	"github.com/apresai/podcast-studio/internal/episodes"
	"github.com/apresai/podcast-studio/internal/ingest"
	"github.com/apresai/podcast-studio/internal/llm"
	"github.com/apresai/podcast-studio/internal/observability"
	"github.com/apresai/podcast-studio/internal/pipeline"
	"github.com/apresai/podcast-studio/internal/progress"
	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/storage"
	"github.com/apresai/podcast-studio/internal/tts"
)

// app is every collaborator a long-running command needs, built once from
// config.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	aws      *aws.Config
	provider tts.Provider
	llm      llm.Completer
	audio    *pipeline.Service
	episodes *episodes.Store
	shutdown []func(context.Context) error
}

// setupTracing starts the OTLP exporter when enabled.
func setupTracing(ctx context.Context, a *app) {
	if !a.cfg.Tracing.Enabled {
		return
	}
	tp, err := observability.InitTracer(ctx, "podcast-studio", Version, a.cfg.Tracing.Environment)
	if err != nil {
		a.log.Warn("tracing disabled", "error", err)
		return
	}
	a.shutdown = append(a.shutdown, tp.Shutdown)
}

// setupAWS loads AWS config and pulls missing API keys from Secrets
// Manager. It runs before any key is read from the environment.
func setupAWS(ctx context.Context, a *app) error {
	if !a.cfg.NeedsAWS() {
		return nil
	}
	awsCfg, err := config.LoadAWS(ctx, a.cfg.AWS.Region)
	if err != nil {
		return err
	}
	a.aws = &awsCfg
	if a.cfg.Secrets.Prefix != "" {
		config.LoadSecrets(ctx, config.NewSecretsClient(awsCfg), a.cfg.Secrets.Prefix, a.log)
	}
	return nil
}

func newProvider(ctx context.Context, cfg *config.Config, awsCfg *aws.Config) (tts.Provider, error) {
	keys := config.KeysFromEnv()
	return tts.NewProvider(ctx, cfg.TTS.Provider, tts.ProviderConfig{
		AzureKey:      keys.AzureSpeech,
		AzureRegion:   cfg.TTS.Azure.Region,
		ElevenLabsKey: keys.ElevenLabs,
		AWS:           awsCfg,
		Speed:         cfg.TTS.Speed,
		Pitch:         cfg.TTS.Pitch,
	})
}

func newAssembler(cfg *config.Config, p tts.Provider, logger *slog.Logger, onProgress progress.Callback) *assembly.Assembler {
	opts := []assembly.Option{
		assembly.WithCombinedName(cfg.Output.CombinedName),
		assembly.WithLogger(logger),
	}
	if onProgress != nil {
		opts = append(opts, assembly.WithProgress(onProgress))
	}
	return assembly.NewAssembler(
		assembly.NewSynthesizer(p, cfg.TTS.SynthesisTimeout),
		tts.NewVoiceTable(p.Voices()),
		opts...,
	)
}

// buildApp wires config into the audio service and the content
// collaborators.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: logger}
	setupTracing(ctx, a)

	if err := setupAWS(ctx, a); err != nil {
		return nil, err
	}

	provider, err := newProvider(ctx, cfg, a.aws)
	if err != nil {
		return nil, fmt.Errorf("tts provider: %w", err)
	}
	a.provider = provider
	a.shutdown = append(a.shutdown, func(context.Context) error { return provider.Close() })

	keys := config.KeysFromEnv()
	completer, err := llm.New(cfg.LLM.Backend, cfg.LLM.Model, llm.Keys{
		Groq:      keys.Groq,
		Anthropic: keys.Anthropic,
		Gemini:    keys.Gemini,
	}, a.aws)
	if err != nil {
		return nil, fmt.Errorf("llm backend: %w", err)
	}
	a.llm = completer

	out, err := storage.NewOutput(cfg.Output.Dir, "/audio", cfg.Output.NamespaceRequests)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.Storage.S3Bucket != "" {
		opts = append(opts, pipeline.WithMirror(storage.NewS3Mirror(s3.NewFromConfig(*a.aws), cfg.Storage.S3Bucket, cfg.Storage.CDNBaseURL)))
	}
	if cfg.Episodes.Table != "" {
		a.episodes = episodes.NewStore(dynamodb.NewFromConfig(*a.aws), cfg.Episodes.Table)
		opts = append(opts, pipeline.WithRecorder(a.episodes))
	}

	a.audio = pipeline.NewService(newAssembler(cfg, provider, logger, nil), out, opts...)

	logger.Info("podcast studio configured",
		"tts", provider.Name(),
		"llm", completer.Name(),
		"output_dir", cfg.Output.Dir,
		"namespaced", cfg.Output.NamespaceRequests,
		"s3_mirror", cfg.Storage.S3Bucket != "",
		"episodes", cfg.Episodes.Table != "",
	)
	return a, nil
}

func (a *app) researcher() *ingest.Researcher { return ingest.NewResearcher(a.llm) }

func (a *app) scripts() *script.Generator { return script.NewGenerator(a.llm) }

func (a *app) close(ctx context.Context) {
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil {
			a.log.Warn("shutdown", "error", err)
		}
	}
}
