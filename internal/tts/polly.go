package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"github.com/apresai/podcast-studio/internal/script"
)

// pollyVoiceLang maps voice IDs to their language codes.
var pollyVoiceLang = map[string]types.LanguageCode{
	"Kajal":   types.LanguageCodeEnIn,
	"Matthew": types.LanguageCodeEnUs,
	"Ruth":    types.LanguageCodeEnUs,
	"Stephen": types.LanguageCodeEnUs,
	"Amy":     types.LanguageCodeEnGb,
}

// PollyProvider implements Provider using AWS Polly.
type PollyProvider struct {
	client *polly.Client
}

func NewPollyProvider(cfg aws.Config) *PollyProvider {
	return &PollyProvider{client: polly.NewFromConfig(cfg)}
}

func (p *PollyProvider) Name() string { return "polly" }

func (p *PollyProvider) Voices() []VoiceInfo { return pollyAvailableVoices() }

func (p *PollyProvider) Synthesize(ctx context.Context, text string, voice Voice) (AudioResult, error) {
	lang, ok := pollyVoiceLang[voice.ID]
	if !ok {
		lang = types.LanguageCodeEnUs
	}

	input := &polly.SynthesizeSpeechInput{
		Engine:       types.EngineGenerative,
		OutputFormat: types.OutputFormatMp3,
		SampleRate:   aws.String("24000"),
		Text:         aws.String(text),
		TextType:     types.TextTypeText,
		VoiceId:      types.VoiceId(voice.ID),
		LanguageCode: lang,
	}

	resp, err := p.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return AudioResult{}, fmt.Errorf("Polly synthesize: %w", err)
	}
	defer resp.AudioStream.Close()

	data, err := io.ReadAll(resp.AudioStream)
	if err != nil {
		return AudioResult{}, fmt.Errorf("Polly read audio: %w", err)
	}

	return AudioResult{Data: data, Format: FormatMP3}, nil
}

func (p *PollyProvider) Close() error { return nil }

func pollyAvailableVoices() []VoiceInfo {
	f, m := script.GenderFemale, script.GenderMale
	return []VoiceInfo{
		{ID: "Kajal", Name: "Kajal", Gender: f, Language: "English", Description: "en-IN, Generative"},
		{ID: "Matthew", Name: "Matthew", Gender: m, Language: "English", Description: "en-US, Generative"},
		{ID: "Ruth", Name: "Ruth", Gender: f, Language: "English", Description: "en-US, Generative"},
		{ID: "Stephen", Name: "Stephen", Gender: m, Language: "English", Description: "en-US, Generative"},
		{ID: "Amy", Name: "Amy", Gender: f, Language: "English", Description: "en-GB, Generative"},
	}
}
