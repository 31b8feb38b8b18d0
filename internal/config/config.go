// Package config loads the podcast-studio configuration from defaults, an
// optional YAML file, PODCAST_STUDIO_* environment variables and a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every config key when read from the environment.
const EnvPrefix = "PODCAST_STUDIO"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Output   OutputConfig   `mapstructure:"output"`
	TTS      TTSConfig      `mapstructure:"tts"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Episodes EpisodesConfig `mapstructure:"episodes"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	MCP      MCPConfig      `mapstructure:"mcp"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// OutputConfig controls where audio is written and served from.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
	// NamespaceRequests gives each request its own subdirectory. When false
	// all requests share Dir and race on the combined file.
	NamespaceRequests bool   `mapstructure:"namespace_requests"`
	CombinedName      string `mapstructure:"combined_name"`
}

type TTSConfig struct {
	Provider string `mapstructure:"provider"` // azure, google, polly, elevenlabs
	// SynthesisTimeout bounds each provider call. Zero waits forever.
	SynthesisTimeout time.Duration `mapstructure:"synthesis_timeout"`
	Speed            float64       `mapstructure:"speed"`
	Pitch            float64       `mapstructure:"pitch"`
	Azure            AzureConfig   `mapstructure:"azure"`
}

type AzureConfig struct {
	Region string `mapstructure:"region"`
}

type LLMConfig struct {
	Backend string `mapstructure:"backend"` // groq, claude, gemini, nova
	Model   string `mapstructure:"model"`
}

// StorageConfig enables the S3 mirror of combined podcasts when S3Bucket is set.
type StorageConfig struct {
	S3Bucket   string `mapstructure:"s3_bucket"`
	CDNBaseURL string `mapstructure:"cdn_base_url"`
}

// EpisodesConfig enables DynamoDB episode records when Table is set.
type EpisodesConfig struct {
	Table string `mapstructure:"table"`
}

// SecretsConfig enables fetching missing API keys from Secrets Manager when
// Prefix is set, e.g. "/podcast-studio/".
type SecretsConfig struct {
	Prefix string `mapstructure:"prefix"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Environment string `mapstructure:"environment"`
}

type MCPConfig struct {
	Port int `mapstructure:"port"`
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.TTS.Provider == "polly" ||
		c.LLM.Backend == "nova" ||
		c.Storage.S3Bucket != "" ||
		c.Episodes.Table != "" ||
		c.Secrets.Prefix != ""
}

// Load reads the configuration. If configFile is empty, podcast-studio.yaml
// is searched in ./, ./configs and /etc/podcast-studio; a missing file is
// not an error.
func Load(configFile string) (*Config, error) {
	// .env is a convenience for local runs.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("output.dir", "audio_output")
	v.SetDefault("output.namespace_requests", true)
	v.SetDefault("output.combined_name", "combined_podcast.mp3")
	v.SetDefault("tts.provider", "azure")
	v.SetDefault("tts.synthesis_timeout", time.Duration(0))
	v.SetDefault("tts.speed", 0.0)
	v.SetDefault("tts.pitch", 0.0)
	v.SetDefault("tts.azure.region", "centralindia")
	v.SetDefault("llm.backend", "groq")
	v.SetDefault("llm.model", "")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.cdn_base_url", "")
	v.SetDefault("episodes.table", "")
	v.SetDefault("secrets.prefix", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.environment", "production")
	v.SetDefault("mcp.port", 8001)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("podcast-studio")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/podcast-studio")
	}

	// PODCAST_STUDIO_SERVER_PORT, PODCAST_STUDIO_TTS_PROVIDER, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if c.TTS.SynthesisTimeout < 0 {
		return fmt.Errorf("tts.synthesis_timeout must not be negative")
	}
	return nil
}

// Keys holds collaborator API keys. They are read from plain environment
// variables, not PODCAST_STUDIO_*, so existing deployments keep working.
type Keys struct {
	Groq        string
	Anthropic   string
	Gemini      string
	AzureSpeech string
	ElevenLabs  string
}

// KeyEnvVars lists the environment variables Keys is read from.
var KeyEnvVars = []string{
	"GROQ_API_KEY",
	"ANTHROPIC_API_KEY",
	"GEMINI_API_KEY",
	"AZURE_SPEECH_KEY",
	"ELEVENLABS_API_KEY",
}

func KeysFromEnv() Keys {
	return Keys{
		Groq:        os.Getenv("GROQ_API_KEY"),
		Anthropic:   os.Getenv("ANTHROPIC_API_KEY"),
		Gemini:      os.Getenv("GEMINI_API_KEY"),
		AzureSpeech: os.Getenv("AZURE_SPEECH_KEY"),
		ElevenLabs:  os.Getenv("ELEVENLABS_API_KEY"),
	}
}
