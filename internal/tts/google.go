package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/apresai/podcast-studio/internal/script"
)

// GoogleProvider implements Provider using Google Cloud TTS.
type GoogleProvider struct {
	client *texttospeech.Client
	speed  float64
	pitch  float64
}

func NewGoogleProvider(ctx context.Context, cfg ProviderConfig) (*GoogleProvider, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create Google TTS client: %w", err)
	}
	return &GoogleProvider{
		client: client,
		speed:  cfg.Speed,
		pitch:  cfg.Pitch,
	}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Voices() []VoiceInfo { return googleAvailableVoices() }

func (p *GoogleProvider) Synthesize(ctx context.Context, text string, voice Voice) (AudioResult, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageCode(voice.ID, "en-IN"),
			Name:         voice.ID,
		},
		AudioConfig: p.audioConfig(),
	}

	resp, err := p.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return AudioResult{}, fmt.Errorf("Google TTS synthesize: %w", err)
	}
	return AudioResult{Data: resp.AudioContent, Format: FormatMP3}, nil
}

func (p *GoogleProvider) audioConfig() *texttospeechpb.AudioConfig {
	cfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	if p.speed != 0 {
		cfg.SpeakingRate = p.speed
	}
	if p.pitch != 0 {
		cfg.Pitch = p.pitch
	}
	return cfg
}

func (p *GoogleProvider) Close() error { return p.client.Close() }

func googleAvailableVoices() []VoiceInfo {
	f, m := script.GenderFemale, script.GenderMale
	return []VoiceInfo{
		{ID: "en-IN-Wavenet-A", Name: "Wavenet A", Gender: f, Language: "English"},
		{ID: "en-IN-Wavenet-B", Name: "Wavenet B", Gender: m, Language: "English"},
		{ID: "en-IN-Chirp3-HD-Leda", Name: "Leda", Gender: f, Language: "English", Description: "Youthful, bright female voice"},
		{ID: "en-IN-Chirp3-HD-Charon", Name: "Charon", Gender: m, Language: "English", Description: "Informative, clear male narrator"},
		{ID: "hi-IN-Wavenet-A", Name: "Wavenet A", Gender: f, Language: "Hindi"},
		{ID: "hi-IN-Wavenet-B", Name: "Wavenet B", Gender: m, Language: "Hindi"},
		{ID: "ta-IN-Wavenet-A", Name: "Wavenet A", Gender: f, Language: "Tamil"},
		{ID: "ta-IN-Wavenet-B", Name: "Wavenet B", Gender: m, Language: "Tamil"},
		{ID: "te-IN-Standard-A", Name: "Standard A", Gender: f, Language: "Telugu"},
		{ID: "te-IN-Standard-B", Name: "Standard B", Gender: m, Language: "Telugu"},
	}
}
